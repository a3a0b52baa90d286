package hashutil

import (
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

// Opener is the subset of filesystem.FS needed to hash a file.
type Opener interface {
	Open(name string) (io.ReadCloser, error)
}

// Checksum returns the BLAKE3 checksum of everything read from r.
func Checksum(r io.Reader) (string, error) {
	hasher := blake3.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return "", err
	}
	return fmt.Sprintf("blake3:%x", hasher.Sum(nil)), nil
}

// FileChecksum calculates the BLAKE3 checksum of a file
func FileChecksum(fsys Opener, path string) (string, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	return Checksum(file)
}

// SameContent reports whether two files hash to the same value.
func SameContent(fsys Opener, a, b string) (bool, error) {
	left, err := FileChecksum(fsys, a)
	if err != nil {
		return false, err
	}
	right, err := FileChecksum(fsys, b)
	if err != nil {
		return false, err
	}
	return left == right, nil
}
