package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/upcheckio/upcheck/util"
)

const (
	// DefaultUpdateURLRelease is the manifest endpoint queried for release builds.
	DefaultUpdateURLRelease = "https://update.upcheck.io/%NAME%/update.json?type=%TYPE%"
	// DefaultUpdateURLDevbuild is the manifest endpoint queried for development builds.
	DefaultUpdateURLDevbuild = "https://devbuilds.upcheck.io/%NAME%/update.json?type=%TYPE%"
)

// Prefs holds the update endpoint templates and the check bookkeeping
// persisted between runs.
type Prefs struct {
	UpdateURLRelease  string `json:"update_url_release"`
	UpdateURLDevbuild string `json:"update_url_devbuild"`
	// LastVersion is the version most recently announced by the update
	// server, "0" until a server ever announced one.
	LastVersion string `json:"update_last_version"`
	// DownloadCount counts update notifications delivered to the listener.
	DownloadCount int `json:"update_download_count"`
	// LastCheck and LastError are unix second stamps of the latest
	// performed check and the latest failed one.
	LastCheck int64 `json:"update_last_check"`
	LastError int64 `json:"update_last_error"`
}

// Default returns the Prefs used when no stored value exists.
func Default() Prefs {
	return Prefs{
		UpdateURLRelease:  DefaultUpdateURLRelease,
		UpdateURLDevbuild: DefaultUpdateURLDevbuild,
		LastVersion:       "0",
	}
}

// Store gives the update manager serialized access to persisted Prefs.
type Store interface {
	// Prefs returns a snapshot of the current preferences.
	Prefs() Prefs
	// Update applies fn to the preferences under the store lock and
	// persists the result.
	Update(fn func(*Prefs)) error
}

// FileStore persists preferences as a JSON file.
type FileStore struct {
	mu    sync.Mutex
	path  string
	prefs Prefs
}

// NewFileStore loads preferences from the JSON file at path. A missing
// file yields the defaults, an unreadable one is an error. Keys absent
// from the file keep their default values.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, prefs: Default()}
	if _, err := util.ReadJson(path, &s.prefs); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load preferences file %s: %w", path, err)
		}
		log.Debugf("preferences file %s does not exist, using defaults", path)
	}
	return s, nil
}

// Prefs returns a snapshot of the current preferences.
func (s *FileStore) Prefs() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// Update applies fn under the store lock and writes the result to disk.
// The in-memory state moves only when the write succeeds.
func (s *FileStore) Update(fn func(*Prefs)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := s.prefs
	fn(&updated)
	if err := util.WriteJson(s.path, &updated); err != nil {
		return fmt.Errorf("persist preferences file %s: %w", s.path, err)
	}
	s.prefs = updated
	return nil
}

// MemoryStore keeps preferences in process memory, for embedding hosts
// that persist elsewhere and for tests.
type MemoryStore struct {
	mu    sync.Mutex
	prefs Prefs
}

// NewMemoryStore returns a MemoryStore seeded with the defaults.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: Default()}
}

// Prefs returns a snapshot of the current preferences.
func (s *MemoryStore) Prefs() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// Update applies fn under the store lock.
func (s *MemoryStore) Update(fn func(*Prefs)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.prefs)
	return nil
}
