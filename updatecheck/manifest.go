package updatecheck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/upcheckio/upcheck/version"
)

// entryKey is the parsed form of a manifest key, either "name" or
// "name/application".
type entryKey struct {
	Name           string
	Application    string
	HasApplication bool
}

func parseEntryKey(raw string) entryKey {
	if name, app, found := strings.Cut(raw, "/"); found {
		return entryKey{Name: name, Application: app, HasApplication: true}
	}
	return entryKey{Name: raw}
}

// manifestEntry is one key/value pair of the server manifest. Entries
// never outlive the processing of one response.
type manifestEntry struct {
	key     entryKey
	Version string
	URL     string
}

// parseManifest decodes the response body walking the decoder token by
// token, which preserves document order so that "first entry wins" stays
// well defined.
func parseManifest(body []byte) ([]manifestEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("manifest: expected a JSON object, got %v", tok)
	}

	var entries []manifestEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("manifest: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("manifest: unexpected key token %v", tok)
		}

		var value struct {
			Version string `json:"version"`
			URL     string `json:"url"`
		}
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("manifest entry %q: %w", key, err)
		}
		entries = append(entries, manifestEntry{
			key:     parseEntryKey(key),
			Version: value.Version,
			URL:     value.URL,
		})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("manifest: trailing data after object")
	}
	return entries, nil
}

// matchManifest returns the first entry in document order that addresses
// app and announces a version newer than the one installed on the
// matched axis. Name-only keys compare against the component version,
// name/application keys against the host application version.
func matchManifest(entries []manifestEntry, app AppInfo) (manifestEntry, bool) {
	for _, entry := range entries {
		if entry.key.Name != app.Name {
			continue
		}
		current := app.Version
		if entry.key.HasApplication {
			if entry.key.Application != app.Application {
				continue
			}
			current = app.ApplicationVersion
		}
		if version.Newer(entry.Version, current) {
			return entry, true
		}
	}
	return manifestEntry{}, false
}
