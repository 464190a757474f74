package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrAssetNotFound is returned when a path resolves to no file in any search root.
var ErrAssetNotFound = errors.New("asset not found")

// SearchPath resolves relative asset paths against an ordered list of root directories. The
// first root holding the file wins, so a mod directory listed before the base game directory
// overrides its assets.
type SearchPath struct {
	roots []string
}

// NewSearchPath creates a search path. Empty roots are dropped.
func NewSearchPath(roots ...string) SearchPath {
	sp := SearchPath{}
	for _, r := range roots {
		if r != "" {
			sp.roots = append(sp.roots, filepath.Clean(r))
		}
	}
	return sp
}

// Roots returns the root directories in lookup order.
func (s SearchPath) Roots() []string {
	return append([]string(nil), s.roots...)
}

// Resolve finds the file a path names.
//
// Parameters:
//   - path: an absolute path, or a slash separated path relative to a root
//
// Returns:
//   - string: the path of the existing file
//   - error: ErrAssetNotFound if no root holds the file
func (s SearchPath) Resolve(path string) (string, error) {
	local := filepath.FromSlash(path)
	if filepath.IsAbs(local) {
		if isFile(local) {
			return local, nil
		}
		return "", fmt.Errorf("%w: %s", ErrAssetNotFound, path)
	}
	for _, root := range s.roots {
		candidate := filepath.Join(root, local)
		if isFile(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrAssetNotFound, path)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
