package manifest

import (
	"path/filepath"
	"strings"
)

// IsAncestor reports whether path lies strictly below dir.
func IsAncestor(dir, path string) bool {
	dir, path = filepath.Clean(dir), filepath.Clean(path)
	if dir == path {
		return false
	}
	if dir == string(filepath.Separator) {
		return true
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}
