package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	testMatrix := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "shorter form is older", a: "3", b: "3.1", want: -1},
		{name: "identical single segment", a: "3", b: "3", want: 0},
		{name: "missing segments count as zero", a: "3", b: "3.0", want: 0},
		{name: "newer minor", a: "3.1", b: "3", want: 1},
		{name: "newer patch", a: "1.2.3", b: "1.2.2", want: 1},
		{name: "major beats minor", a: "2.0", b: "1.9.9", want: 1},
		{name: "equal three segments", a: "0.55.0", b: "0.55.0", want: 0},
		{name: "garbage treated as zero", a: "not-a-version", b: "0.0.1", want: -1},
		{name: "garbage equals zero", a: "not-a-version", b: "0", want: 0},
		{name: "both garbage compare equal", a: "abc", b: "???", want: 0},
		{name: "empty string treated as zero", a: "", b: "1", want: -1},
	}

	for _, c := range testMatrix {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Compare(c.a, c.b))
		})
	}
}

func TestNewer(t *testing.T) {
	assert.True(t, Newer("3.1", "3"))
	assert.False(t, Newer("3", "3"))
	assert.False(t, Newer("3", "3.1"))
	assert.False(t, Newer("garbage", "3"), "unparsable candidate must never win")
}

func TestParseOrZeroNeverNil(t *testing.T) {
	assert.NotNil(t, ParseOrZero("4.5.6"))
	assert.NotNil(t, ParseOrZero(""))
	assert.Equal(t, "0.0.0", ParseOrZero("bogus").String())
}

func TestVersionDefault(t *testing.T) {
	assert.Equal(t, "development", Version())
}
