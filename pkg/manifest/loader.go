package manifest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/arthur-debert/fsmanifest/pkg/errors"
	"github.com/arthur-debert/fsmanifest/pkg/logging"
	"github.com/tidwall/jsonc"
)

// fileRecord is the wire shape of one entry, shared by every schema
// version. Which fields are allowed depends on Type and is checked in
// toEntry.
type fileRecord struct {
	Type               Kind    `json:"type"`
	Source             *string `json:"source,omitempty"`
	Target             string  `json:"target"`
	Permissions        *Mode   `json:"permissions,omitempty"`
	UID                *uint32 `json:"uid,omitempty"`
	GID                *uint32 `json:"gid,omitempty"`
	Clobber            *bool   `json:"clobber,omitempty"`
	Deactivate         *bool   `json:"deactivate,omitempty"`
	FollowSymlinks     *bool   `json:"follow_symlinks,omitempty"`
	IgnoreModification *bool   `json:"ignore_modification,omitempty"`
}

type versionHeader struct {
	Version *int `json:"version"`
}

// documentV2 has no manifest-wide clobber default.
type documentV2 struct {
	Files *[]fileRecord `json:"files"`
}

type documentV3 struct {
	Version          int           `json:"version"`
	ClobberByDefault *bool         `json:"clobber_by_default"`
	Files            *[]fileRecord `json:"files"`
}

// ReadFile reads and parses the manifest at path.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to read manifest %s", path).
			WithDetail("path", path)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, err
	}

	logger := logging.GetLogger("manifest")
	logger.Info().
		Str("path", path).
		Int("entries", len(m.Files)).
		Msg("Deserialized manifest")
	return m, nil
}

// Parse turns manifest bytes into a validated Manifest.
//
// The version is checked before any entry is interpreted: a document that
// is valid JSON but declares an unknown version fails with
// ErrVersionMismatch. Every other problem, syntactic or structural, is
// ErrDeserialization. JSON comments and trailing commas are tolerated.
func Parse(data []byte) (*Manifest, error) {
	clean := jsonc.ToJSON(data)

	var header versionHeader
	if err := json.Unmarshal(clean, &header); err != nil {
		return nil, errors.Wrap(err, errors.ErrDeserialization, "failed to deserialize manifest")
	}
	if header.Version == nil {
		return nil, errors.New(errors.ErrDeserialization, "manifest has no version")
	}

	version := *header.Version
	if !IsSupportedVersion(version) {
		return nil, errors.Newf(errors.ErrVersionMismatch,
			"manifest version %d is not supported (supported: %v)", version, SupportedVersions).
			WithDetail("version", version)
	}

	var (
		records          *[]fileRecord
		clobberByDefault bool
	)
	switch version {
	case 2:
		var doc documentV2
		if err := decode(clean, &doc); err != nil {
			return nil, err
		}
		records = doc.Files
	default:
		var doc documentV3
		if err := decode(clean, &doc); err != nil {
			return nil, err
		}
		if doc.ClobberByDefault == nil {
			return nil, errors.Newf(errors.ErrDeserialization,
				"version %d manifest requires clobber_by_default", version)
		}
		records = doc.Files
		clobberByDefault = *doc.ClobberByDefault
	}

	if records == nil {
		return nil, errors.New(errors.ErrDeserialization, "manifest has no files list")
	}

	m := &Manifest{
		Version:          CurrentVersion,
		ClobberByDefault: clobberByDefault,
		Files:            make([]Entry, 0, len(*records)),
	}

	seen := make(map[string]int, len(*records))
	for i, rec := range *records {
		entry, err := toEntry(rec)
		if err != nil {
			return nil, err.WithDetail("index", i)
		}
		target := entry.TargetPath()
		if first, dup := seen[target]; dup {
			return nil, errors.Newf(errors.ErrDeserialization,
				"entries %d and %d both target %s", first, i, target).
				WithDetail("target", target)
		}
		seen[target] = i
		m.Files = append(m.Files, entry)
	}

	if err := checkDeletes(m.Files, seen); err != nil {
		return nil, err
	}

	return m, nil
}

// checkDeletes rejects a Delete whose target contains another entry's
// target: removing it would undo or break the nested entry.
func checkDeletes(files []Entry, index map[string]int) error {
	for i, e := range files {
		if e.Kind() != KindDelete {
			continue
		}
		dir := e.TargetPath()
		for _, other := range files {
			if target := other.TargetPath(); IsAncestor(dir, target) {
				return errors.Newf(errors.ErrDeserialization,
					"entry %d deletes %s, which contains entry %d's target %s", i, dir, index[target], target).
					WithDetail("target", dir)
			}
		}
	}
	return nil
}

func decode(data []byte, v interface{}) error {
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return errors.Wrap(err, errors.ErrDeserialization, "failed to deserialize manifest")
	}
	return nil
}

func toEntry(rec fileRecord) (Entry, *errors.Error) {
	if rec.Target == "" {
		return nil, errors.Newf(errors.ErrDeserialization, "%s entry has no target", rec.Type)
	}
	if !filepath.IsAbs(rec.Target) {
		return nil, errors.Newf(errors.ErrDeserialization, "target %q is not absolute", rec.Target)
	}
	target := filepath.Clean(rec.Target)

	fail := func(format string, args ...interface{}) *errors.Error {
		return errors.Newf(errors.ErrDeserialization, format, args...).WithDetail("target", target)
	}

	attrs := Attrs{Permissions: rec.Permissions, UID: rec.UID, GID: rec.GID}

	var source string
	switch rec.Type {
	case KindCopy, KindSymlink:
		if rec.Source == nil || *rec.Source == "" {
			return nil, fail("%s entry for %s requires a source", rec.Type, target)
		}
		if !filepath.IsAbs(*rec.Source) {
			return nil, fail("source %q of %s is not absolute", *rec.Source, target)
		}
		source = filepath.Clean(*rec.Source)
	case KindModify, KindDirectory, KindDelete:
		if rec.Source != nil {
			return nil, fail("%s entry for %s must not have a source", rec.Type, target)
		}
	default:
		return nil, fail("unknown entry type %q for %s", rec.Type, target)
	}

	switch rec.Type {
	case KindModify, KindDelete:
		if rec.Clobber != nil {
			return nil, fail("%s entry for %s must not set clobber", rec.Type, target)
		}
	}
	if rec.FollowSymlinks != nil && rec.Type != KindSymlink {
		return nil, fail("follow_symlinks is only valid on symlink entries (%s)", target)
	}
	if rec.IgnoreModification != nil && rec.Type != KindCopy {
		return nil, fail("ignore_modification is only valid on copy entries (%s)", target)
	}

	switch rec.Type {
	case KindCopy:
		return Copy{
			Source:             source,
			Target:             target,
			Attrs:              attrs,
			Clobber:            rec.Clobber,
			IgnoreModification: rec.IgnoreModification != nil && *rec.IgnoreModification,
			Deactivate:         rec.Deactivate,
		}, nil
	case KindSymlink:
		return Symlink{
			Source:         source,
			Target:         target,
			Attrs:          attrs,
			Clobber:        rec.Clobber,
			FollowSymlinks: rec.FollowSymlinks != nil && *rec.FollowSymlinks,
			Deactivate:     rec.Deactivate,
		}, nil
	case KindModify:
		if rec.Deactivate != nil {
			return nil, fail("modify entry for %s must not set deactivate", target)
		}
		return Modify{Target: target, Attrs: attrs}, nil
	case KindDirectory:
		return Directory{Target: target, Attrs: attrs, Clobber: rec.Clobber, Deactivate: rec.Deactivate}, nil
	default:
		if !attrs.IsZero() || rec.Deactivate != nil {
			return nil, fail("delete entry for %s only takes a target", target)
		}
		return Delete{Target: target}, nil
	}
}
