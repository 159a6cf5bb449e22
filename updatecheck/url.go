package updatecheck

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/upcheckio/upcheck/prefs"
	"github.com/upcheckio/upcheck/system"
)

// buildCheckURL renders the manifest request URL for a single check. The
// template's %NAME% and %TYPE% markers are substituted first, then the
// identity and counter parameters are appended in the fixed order the
// update servers expect. Pure string work, a malformed template yields a
// malformed URL.
func buildCheckURL(tmpl string, app AppInfo, typ CheckType, env system.Environment, st prefs.Prefs) string {
	base := strings.ReplaceAll(tmpl, "%NAME%", url.QueryEscape(app.Name))
	base = strings.ReplaceAll(base, "%TYPE%", typ.code())

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}

	params := []struct{ key, value string }{
		{"addonName", app.Name},
		{"addonVersion", app.Version},
		{"application", app.Application},
		{"applicationVersion", app.ApplicationVersion},
		{"platform", env.Platform()},
		{"platformVersion", env.PlatformVersion()},
		{"lastVersion", st.LastVersion},
		{"downloadCount", strconv.Itoa(st.DownloadCount)},
	}

	var sb strings.Builder
	sb.WriteString(base)
	for _, p := range params {
		sb.WriteString(sep)
		sb.WriteString(p.key)
		sb.WriteString("=")
		sb.WriteString(url.QueryEscape(p.value))
		sep = "&"
	}
	return sb.String()
}
