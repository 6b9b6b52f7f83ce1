// Package store persists rendered reports as HTML files, one file per report kind.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/driftdash/internal/report"
	"github.com/KaramelBytes/driftdash/internal/utils"
)

// DefaultDir is the directory reports are written to unless configured otherwise.
const DefaultDir = "Metrics"

// ErrInvalidKey is returned for keys that are empty or contain a path separator.
var ErrInvalidKey = errors.New("invalid report key")

// StoreIOError indicates a report file could not be written or read.
type StoreIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreIOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreIOError) Unwrap() error { return e.Err }

// Store writes reports to <Dir>/<key>.html. Each Persist overwrites the
// previous file for the key.
type Store struct {
	Dir string
}

// New returns a store rooted at dir; an empty dir means DefaultDir.
func New(dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{Dir: dir}
}

// Init creates the report directory if it does not exist.
func (s *Store) Init() error {
	if err := utils.EnsureDir(s.Dir); err != nil {
		return &StoreIOError{Op: "create", Path: s.Dir, Err: err}
	}
	return nil
}

// Path returns the file a report with the given key is written to.
func (s *Store) Path(key string) string {
	return filepath.Join(s.Dir, key+".html")
}

// Persist renders a into the file for key, replacing any earlier version, and
// returns the file path. The directory must already exist.
func (s *Store) Persist(a report.Artifact, key string) (string, error) {
	path := s.Path(key)
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", &StoreIOError{Op: "write", Path: path, Err: fmt.Errorf("%w: %q", ErrInvalidKey, key)}
	}
	info, err := os.Stat(s.Dir)
	if err != nil {
		return "", &StoreIOError{Op: "write", Path: path, Err: err}
	}
	if !info.IsDir() {
		return "", &StoreIOError{Op: "write", Path: path, Err: fmt.Errorf("%s is not a directory", s.Dir)}
	}
	if err := utils.SafeWrite(path, a.Render); err != nil {
		return "", &StoreIOError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}

// Load returns the content of a persisted report verbatim.
func (s *Store) Load(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &StoreIOError{Op: "read", Path: path, Err: err}
	}
	return b, nil
}
