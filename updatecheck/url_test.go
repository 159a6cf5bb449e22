package updatecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/upcheckio/upcheck/prefs"
	"github.com/upcheckio/upcheck/system"
)

func TestBuildCheckURL(t *testing.T) {
	app := AppInfo{
		Name:               "1",
		Version:            "3",
		Application:        "4",
		ApplicationVersion: "2",
	}
	env := system.Static("gecko", "1.9.1")

	testMatrix := []struct {
		name string
		tmpl string
		app  AppInfo
		typ  CheckType
		st   prefs.Prefs
		want string
	}{
		{
			name: "manual check against a template with query",
			tmpl: "https://update.example.com/%NAME%/update.json?type=%TYPE%",
			app:  app,
			typ:  CheckTypeManual,
			st:   prefs.Prefs{LastVersion: "0"},
			want: "https://update.example.com/1/update.json?type=1" +
				"&addonName=1&addonVersion=3&application=4&applicationVersion=2" +
				"&platform=gecko&platformVersion=1.9.1&lastVersion=0&downloadCount=0",
		},
		{
			name: "automatic check uses type 0",
			tmpl: "https://update.example.com/%NAME%/update.json?type=%TYPE%",
			app:  app,
			typ:  CheckTypeAutomatic,
			st:   prefs.Prefs{LastVersion: "0"},
			want: "https://update.example.com/1/update.json?type=0" +
				"&addonName=1&addonVersion=3&application=4&applicationVersion=2" +
				"&platform=gecko&platformVersion=1.9.1&lastVersion=0&downloadCount=0",
		},
		{
			name: "template without query starts parameters with a question mark",
			tmpl: "https://update.example.com/update.json",
			app:  app,
			typ:  CheckTypeManual,
			st:   prefs.Prefs{LastVersion: "0"},
			want: "https://update.example.com/update.json" +
				"?addonName=1&addonVersion=3&application=4&applicationVersion=2" +
				"&platform=gecko&platformVersion=1.9.1&lastVersion=0&downloadCount=0",
		},
		{
			name: "stored counters are reported verbatim",
			tmpl: "https://update.example.com/%NAME%/update.json?type=%TYPE%",
			app:  app,
			typ:  CheckTypeAutomatic,
			st:   prefs.Prefs{LastVersion: "3.1", DownloadCount: 7},
			want: "https://update.example.com/1/update.json?type=0" +
				"&addonName=1&addonVersion=3&application=4&applicationVersion=2" +
				"&platform=gecko&platformVersion=1.9.1&lastVersion=3.1&downloadCount=7",
		},
		{
			name: "name and values are query escaped",
			tmpl: "https://update.example.com/%NAME%/update.json?type=%TYPE%",
			app: AppInfo{
				Name:               "my addon/beta",
				Version:            "1.0 rc",
				Application:        "4",
				ApplicationVersion: "2",
			},
			typ: CheckTypeManual,
			st:  prefs.Prefs{LastVersion: "0"},
			want: "https://update.example.com/my+addon%2Fbeta/update.json?type=1" +
				"&addonName=my+addon%2Fbeta&addonVersion=1.0+rc&application=4&applicationVersion=2" +
				"&platform=gecko&platformVersion=1.9.1&lastVersion=0&downloadCount=0",
		},
	}

	for _, c := range testMatrix {
		got := buildCheckURL(c.tmpl, c.app, c.typ, env, c.st)
		assert.Equal(t, c.want, got, c.name)
	}
}
