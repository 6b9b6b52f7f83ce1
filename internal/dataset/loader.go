package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Loader reads one kind of tabular file.
type Loader interface {
	CanLoad(path string) bool
	Load(path string) (*Table, error)
}

// ErrUnsupported indicates no loader handles the file's extension.
var ErrUnsupported = errors.New("unsupported dataset format")

// Loaders tries each loader in order and uses the first that accepts the path.
type Loaders []Loader

// CanLoad reports whether any loader accepts the path.
func (ls Loaders) CanLoad(path string) bool {
	for _, l := range ls {
		if l.CanLoad(path) {
			return true
		}
	}
	return false
}

// Load reads path with the first matching loader. Every failure is a *LoadError.
func (ls Loaders) Load(path string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	for _, l := range ls {
		if !l.CanLoad(path) {
			continue
		}
		t, err := l.Load(path)
		if err != nil {
			var le *LoadError
			if errors.As(err, &le) {
				return nil, err
			}
			return nil, &LoadError{Path: path, Err: err}
		}
		return t, nil
	}
	return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))}
}

// DefaultLoaders returns the loaders implemented in this package (CSV/TSV and XLSX).
func DefaultLoaders(opt Options) Loaders {
	return Loaders{CSVLoader{Options: opt}, XLSXLoader{Options: opt}}
}
