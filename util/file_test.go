package util_test

import (
	"os"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/upcheckio/upcheck/util"
)

func TestUtil(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Util Suite")
}

var _ = Describe("Config", func() {

	var (
		tmpDir string
	)

	type TestConfig struct {
		SomeMap   map[string]string
		SomeArray []string
		SomeField int
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "upcheck_util_test_tmp_*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		err := os.RemoveAll(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Context("in JSON format", func() {
		It("should be written and read successfully", func() {

			m := make(map[string]string)
			m["key1"] = "value1"
			m["key2"] = "value2"

			arr := []string{"value1", "value2"}

			written := &TestConfig{
				SomeMap:   m,
				SomeArray: arr,
				SomeField: 99,
			}

			err := util.WriteJson(tmpDir+"/testconfig.json", written)
			Expect(err).NotTo(HaveOccurred())

			read, err := util.ReadJson(tmpDir+"/testconfig.json", &TestConfig{})
			Expect(err).NotTo(HaveOccurred())
			Expect(read).NotTo(BeNil())
			Expect(read.(*TestConfig).SomeMap["key1"]).To(BeEquivalentTo(written.SomeMap["key1"]))
			Expect(read.(*TestConfig).SomeMap["key2"]).To(BeEquivalentTo(written.SomeMap["key2"]))
			Expect(read.(*TestConfig).SomeArray).To(ContainElements(arr))
			Expect(read.(*TestConfig).SomeField).To(BeEquivalentTo(written.SomeField))

		})

		It("should create missing parent directories", func() {
			nested := tmpDir + "/a/b/testconfig.json"

			err := util.WriteJson(nested, &TestConfig{SomeField: 7})
			Expect(err).NotTo(HaveOccurred())

			read, err := util.ReadJson(nested, &TestConfig{})
			Expect(err).NotTo(HaveOccurred())
			Expect(read.(*TestConfig).SomeField).To(BeEquivalentTo(7))
		})

		It("should not leave temp files behind", func() {
			err := util.WriteJson(tmpDir+"/testconfig.json", &TestConfig{SomeField: 1})
			Expect(err).NotTo(HaveOccurred())

			entries, err := os.ReadDir(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
		})
	})

	Context("handling a config file without full path", func() {
		It("should be successful", func() {
			written := &TestConfig{
				SomeField: 123,
			}
			cfgFile := "test_cfg.json"
			defer os.Remove(cfgFile)

			err := util.WriteJson(cfgFile, written)
			Expect(err).NotTo(HaveOccurred())

			read, err := util.ReadJson(cfgFile, &TestConfig{})
			Expect(err).NotTo(HaveOccurred())
			Expect(read).NotTo(BeNil())
		})
	})

	Context("removing config files", func() {
		It("should remove existing files and ignore missing ones", func() {
			cfgFile := tmpDir + "/removeme.json"

			err := util.WriteJson(cfgFile, &TestConfig{})
			Expect(err).NotTo(HaveOccurred())

			Expect(util.RemoveJson(cfgFile)).To(Succeed())
			_, err = os.Stat(cfgFile)
			Expect(os.IsNotExist(err)).To(BeTrue())

			Expect(util.RemoveJson(cfgFile)).To(Succeed())
		})
	})
})
