package filesystem

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// FS is the set of filesystem calls fsmanifest needs.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	Open(name string) (io.ReadCloser, error)
	ReadFile(name string) ([]byte, error)
	MkdirAll(path string, perm fs.FileMode) error
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)
	EvalSymlinks(path string) (string, error)
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
	Chmod(name string, mode fs.FileMode) error

	// Lchown changes ownership without following a final symlink.
	// A value of -1 leaves that id unchanged.
	Lchown(name string, uid, gid int) error

	// Owner returns the uid and gid of name without following symlinks.
	Owner(name string) (uid, gid uint32, err error)

	// CreateTemp creates a new file in dir, see os.CreateTemp.
	CreateTemp(dir, pattern string) (*os.File, error)

	// AtomicWrite writes data to path atomically using temp file + rename.
	AtomicWrite(path string, data []byte, perm fs.FileMode) error
}

// osFS implements FS using the OS filesystem
type osFS struct{}

// NewOS creates a new OS filesystem implementation
func NewOS() FS {
	return &osFS{}
}

func (o *osFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (o *osFS) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(name)
}

func (o *osFS) Open(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

func (o *osFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (o *osFS) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (o *osFS) Symlink(oldname, newname string) error {
	return os.Symlink(oldname, newname)
}

func (o *osFS) Readlink(name string) (string, error) {
	return os.Readlink(name)
}

func (o *osFS) EvalSymlinks(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}

func (o *osFS) Remove(name string) error {
	return os.Remove(name)
}

func (o *osFS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

func (o *osFS) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

func (o *osFS) Chmod(name string, mode fs.FileMode) error {
	return os.Chmod(name, mode)
}

func (o *osFS) Lchown(name string, uid, gid int) error {
	if err := unix.Lchown(name, uid, gid); err != nil {
		return &fs.PathError{Op: "lchown", Path: name, Err: err}
	}
	return nil
}

func (o *osFS) Owner(name string) (uint32, uint32, error) {
	var st unix.Stat_t
	if err := unix.Lstat(name, &st); err != nil {
		return 0, 0, &fs.PathError{Op: "lstat", Path: name, Err: err}
	}
	return st.Uid, st.Gid, nil
}

func (o *osFS) CreateTemp(dir, pattern string) (*os.File, error) {
	return os.CreateTemp(dir, pattern)
}

func (o *osFS) AtomicWrite(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	// The temp file must live in the target directory for rename to be atomic.
	tmpFile, err := os.CreateTemp(dir, ".fsmanifest-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	tmpFile = nil
	return nil
}

// Exists reports whether anything, including a dangling symlink, is at path.
func Exists(fsys FS, path string) (bool, error) {
	_, err := fsys.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// IsNotEmpty reports whether err is the failure to remove a non-empty
// directory.
func IsNotEmpty(err error) bool {
	return errors.Is(err, unix.ENOTEMPTY) || errors.Is(err, unix.EEXIST)
}
