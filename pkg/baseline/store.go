package baseline

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/fsmanifest/pkg/errors"
	"github.com/arthur-debert/fsmanifest/pkg/filesystem"
	"github.com/arthur-debert/fsmanifest/pkg/logging"
	"github.com/arthur-debert/fsmanifest/pkg/manifest"
)

// Store holds the previously applied manifest.
type Store interface {
	// Load returns the stored manifest, or an empty manifest when nothing
	// has been applied yet.
	Load() (*manifest.Manifest, error)

	// Save replaces the stored manifest.
	Save(m *manifest.Manifest) error

	// Clear forgets the stored manifest. Clearing an empty store is not an
	// error.
	Clear() error
}

// FileStore keeps the baseline in a single JSON file.
type FileStore struct {
	fs   filesystem.FS
	path string
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(fs filesystem.FS, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

// Path returns the baseline file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (*manifest.Manifest, error) {
	logger := logging.GetLogger("baseline")

	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("path", s.path).Msg("No baseline yet, starting from an empty manifest")
			return manifest.Empty(), nil
		}
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to read baseline %s", s.path).
			WithDetail("path", s.path)
	}

	m, err := manifest.Parse(data)
	if err != nil {
		// Keep the loader's code: a baseline written by a newer program is
		// a version mismatch, a corrupt one a deserialization failure.
		return nil, errors.Wrapf(err, errors.GetErrorCode(err), "invalid baseline %s", s.path).
			WithDetail("path", s.path)
	}

	logger.Debug().Str("path", s.path).Int("entries", len(m.Files)).Msg("Loaded baseline")
	return m, nil
}

func (s *FileStore) Save(m *manifest.Manifest) error {
	data, err := manifest.Encode(m)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode baseline")
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to create baseline directory for %s", s.path)
	}

	if err := s.fs.AtomicWrite(s.path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to write baseline %s", s.path).
			WithDetail("path", s.path)
	}

	logger := logging.GetLogger("baseline")
	logger.Info().Str("path", s.path).Int("entries", len(m.Files)).Msg("Saved baseline")
	return nil
}

func (s *FileStore) Clear() error {
	if err := s.fs.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to remove baseline %s", s.path)
	}
	return nil
}

// MemoryStore keeps the baseline in memory. Load hands out the stored
// manifest itself; callers must not modify it.
type MemoryStore struct {
	current *manifest.Manifest
	saves   int
}

// NewMemoryStore returns a store holding initial, or nothing when initial
// is nil.
func NewMemoryStore(initial *manifest.Manifest) *MemoryStore {
	return &MemoryStore{current: initial}
}

func (s *MemoryStore) Load() (*manifest.Manifest, error) {
	if s.current == nil {
		return manifest.Empty(), nil
	}
	return s.current, nil
}

func (s *MemoryStore) Save(m *manifest.Manifest) error {
	s.current = m
	s.saves++
	return nil
}

func (s *MemoryStore) Clear() error {
	s.current = nil
	return nil
}

// Saves reports how many times Save was called.
func (s *MemoryStore) Saves() int {
	return s.saves
}
