package manifest

import (
	"encoding/json"
)

func boolPtr(b bool) *bool { return &b }

func toRecord(e Entry) fileRecord {
	rec := fileRecord{Type: e.Kind(), Target: e.TargetPath()}
	attrs := AttrsOf(e)
	rec.Permissions, rec.UID, rec.GID = attrs.Permissions, attrs.UID, attrs.GID

	switch v := e.(type) {
	case Copy:
		source := v.Source
		rec.Source = &source
		rec.Clobber = v.Clobber
		rec.Deactivate = v.Deactivate
		if v.IgnoreModification {
			rec.IgnoreModification = boolPtr(true)
		}
	case Symlink:
		source := v.Source
		rec.Source = &source
		rec.Clobber = v.Clobber
		rec.Deactivate = v.Deactivate
		if v.FollowSymlinks {
			rec.FollowSymlinks = boolPtr(true)
		}
	case Directory:
		rec.Clobber = v.Clobber
		rec.Deactivate = v.Deactivate
	}
	return rec
}

// MarshalJSON writes the manifest as a current-version document, which
// Parse reads back into an equal Manifest.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	records := make([]fileRecord, 0, len(m.Files))
	for _, e := range m.Files {
		records = append(records, toRecord(e))
	}
	return json.Marshal(documentV3{
		Version:          CurrentVersion,
		ClobberByDefault: boolPtr(m.ClobberByDefault),
		Files:            &records,
	})
}

// Encode returns the indented JSON form of m.
func Encode(m *Manifest) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
