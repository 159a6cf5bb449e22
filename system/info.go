package system

import (
	"bufio"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Environment supplies the platform facts reported to the update server.
type Environment interface {
	Platform() string
	PlatformVersion() string
}

var (
	hostVersion string
	once        sync.Once
)

// Env returns the Environment of the host the process runs on. The
// platform version is detected once and cached for the process lifetime.
func Env() Environment {
	return hostEnv{}
}

// Static returns an Environment with fixed values, for hosts that already
// know their platform facts and for tests.
func Static(platform, platformVersion string) Environment {
	return staticEnv{platform: platform, version: platformVersion}
}

type hostEnv struct{}

func (hostEnv) Platform() string { return runtime.GOOS }

func (hostEnv) PlatformVersion() string {
	once.Do(func() {
		hostVersion = detectPlatformVersion()
	})
	return hostVersion
}

func detectPlatformVersion() string {
	switch runtime.GOOS {
	case "linux", "freebsd":
		if ver := readOsReleaseVersion(); ver != "" {
			return ver
		}
	case "darwin":
		out, err := exec.Command("sw_vers", "-productVersion").Output()
		if err != nil {
			log.Warnf("failed to retrieve macOS version with sw_vers: %v", err)
			break
		}
		return strings.TrimSpace(string(out))
	case "windows":
		out, err := exec.Command("cmd", "/c", "ver").Output()
		if err != nil {
			log.Warnf("failed to retrieve Windows version: %v", err)
			break
		}
		osStr := strings.TrimSpace(string(out))
		start := strings.Index(osStr, "[Version ")
		end := strings.Index(osStr, "]")
		if start == -1 || end <= start+9 {
			break
		}
		return osStr[start+9 : end]
	}
	return "unknown"
}

func readOsReleaseVersion() string {
	file, err := os.Open("/etc/os-release")
	if err != nil {
		log.Warnf("failed to open /etc/os-release: %v", err)
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "VERSION_ID=") {
			return strings.ReplaceAll(strings.Split(line, "=")[1], "\"", "")
		}
	}
	return ""
}

type staticEnv struct {
	platform string
	version  string
}

func (s staticEnv) Platform() string        { return s.platform }
func (s staticEnv) PlatformVersion() string { return s.version }
