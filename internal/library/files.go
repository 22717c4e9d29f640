package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a stored relative URL escapes the library
// root after cleaning.
var ErrOutsideRoot = errors.New("path escapes library root")

// Files resolves stored media URLs to files on disk. Relative URLs are
// resolved under the configured library root; absolute URLs are used as-is.
type Files struct {
	root string
}

// NewFiles returns a Files resolver rooted at root.
func NewFiles(root string) *Files {
	return &Files{root: root}
}

// Resolve returns the absolute filesystem path for a stored URL. Relative
// paths must stay within the library root once cleaned.
func (f *Files) Resolve(url string) (string, error) {
	if filepath.IsAbs(url) {
		return filepath.Clean(url), nil
	}
	abs := filepath.Join(f.root, url)
	root := filepath.Clean(f.root)
	if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, url)
	}
	return abs, nil
}

// Open resolves url and opens the file for reading. The caller owns the
// returned file.
func (f *Files) Open(url string) (*os.File, error) {
	path, err := f.Resolve(url)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return file, nil
}
