package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/fsmanifest/pkg/manifest"
)

// ManifestBuilder declares a manifest inline.
//
//	m := testutil.NewManifest().
//		Symlink(src, dst).
//		Directory(dir).
//		Build()
type ManifestBuilder struct {
	m *manifest.Manifest
}

// NewManifest starts a current-version manifest with clobber_by_default
// false.
func NewManifest() *ManifestBuilder {
	return &ManifestBuilder{m: manifest.Empty()}
}

// ClobberByDefault sets the manifest-wide clobber default.
func (b *ManifestBuilder) ClobberByDefault(v bool) *ManifestBuilder {
	b.m.ClobberByDefault = v
	return b
}

// Add appends an arbitrary entry.
func (b *ManifestBuilder) Add(e manifest.Entry) *ManifestBuilder {
	b.m.Files = append(b.m.Files, e)
	return b
}

func (b *ManifestBuilder) Copy(source, target string) *ManifestBuilder {
	return b.Add(manifest.Copy{Source: source, Target: target})
}

func (b *ManifestBuilder) Symlink(source, target string) *ManifestBuilder {
	return b.Add(manifest.Symlink{Source: source, Target: target})
}

func (b *ManifestBuilder) Directory(target string) *ManifestBuilder {
	return b.Add(manifest.Directory{Target: target})
}

func (b *ManifestBuilder) Modify(target string, attrs manifest.Attrs) *ManifestBuilder {
	return b.Add(manifest.Modify{Target: target, Attrs: attrs})
}

func (b *ManifestBuilder) Delete(target string) *ManifestBuilder {
	return b.Add(manifest.Delete{Target: target})
}

// Build returns the manifest.
func (b *ManifestBuilder) Build() *manifest.Manifest {
	return b.m
}

// WriteManifest encodes m into dir/name and returns the path.
func WriteManifest(t *testing.T, dir, name string, m *manifest.Manifest) string {
	t.Helper()

	data, err := manifest.Encode(m)
	if err != nil {
		t.Fatalf("Failed to encode manifest: %v", err)
	}
	return CreateFile(t, dir, name, string(data))
}

// WriteRawManifest writes manifest text as-is, for documents the encoder
// would never produce (old versions, malformed input).
func WriteRawManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	return CreateFile(t, dir, name, content)
}

// Perm returns a manifest permission value.
func Perm(mode os.FileMode) *manifest.Mode {
	m := manifest.ModeOf(mode)
	return &m
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}

// Abs joins elem onto dir. It exists so tests read as paths, not joins.
func Abs(dir string, elem ...string) string {
	return filepath.Join(append([]string{dir}, elem...)...)
}
