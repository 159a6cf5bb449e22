package version

import (
	goversion "github.com/hashicorp/go-version"
	log "github.com/sirupsen/logrus"
)

// version is set at build time via ldflags when cutting a release.
var version = "development"

// Version returns the build version of the upcheck library.
func Version() string {
	return version
}

var zero = goversion.Must(goversion.NewVersion("0.0.0"))

// ParseOrZero parses a dotted version string. Server-supplied data must
// never make a comparison fail, so anything go-version cannot parse is
// treated as 0.0.0.
func ParseOrZero(s string) *goversion.Version {
	v, err := goversion.NewVersion(s)
	if err != nil {
		log.Debugf("unparsable version %q treated as 0.0.0: %v", s, err)
		return zero
	}
	return v
}

// Compare returns -1, 0 or 1 when a is older than, equal to or newer than b.
// Missing segments count as zero, so "3" equals "3.0" and is older than "3.1".
func Compare(a, b string) int {
	return ParseOrZero(a).Compare(ParseOrZero(b))
}

// Newer reports whether candidate is strictly newer than current.
func Newer(candidate, current string) bool {
	return Compare(candidate, current) > 0
}
