package system

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_EnvPlatform(t *testing.T) {
	got := Env().Platform()
	assert.Equal(t, runtime.GOOS, got)
}

func Test_EnvPlatformVersion(t *testing.T) {
	got := Env().PlatformVersion()
	assert.NotEmpty(t, got)
	// detection is cached, repeated calls agree
	assert.Equal(t, got, Env().PlatformVersion())
}

func Test_StaticEnv(t *testing.T) {
	env := Static("gecko", "1.9.1")
	assert.Equal(t, "gecko", env.Platform())
	assert.Equal(t, "1.9.1", env.PlatformVersion())
}
