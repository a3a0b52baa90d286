// Package manifest defines the declarative description of a file tree and
// turns raw manifest bytes into that description.
//
// A Manifest is a schema version, a default clobber policy, and a list of
// entries. Each entry is one of five kinds (Copy, Symlink, Modify,
// Directory, Delete). Entry is a closed interface: only the variant types in
// this package implement it, and each variant carries only the fields that
// make sense for its kind.
//
// Manifests are produced by Parse or ReadFile, which normalize every
// supported schema version into the same in-memory shape. Nothing outside
// the loader needs to know which version a document was written in.
package manifest

// CurrentVersion is the schema version this program writes.
const CurrentVersion = 3

// SupportedVersions lists every schema version the loader accepts.
var SupportedVersions = []int{2, 3}

// IsSupportedVersion reports whether v is in SupportedVersions.
func IsSupportedVersion(v int) bool {
	for _, supported := range SupportedVersions {
		if v == supported {
			return true
		}
	}
	return false
}

// Kind names an entry variant. The values are the manifest "type" strings.
type Kind string

const (
	KindCopy      Kind = "copy"
	KindSymlink   Kind = "symlink"
	KindModify    Kind = "modify"
	KindDirectory Kind = "directory"
	KindDelete    Kind = "delete"
)

// Attrs are the optional metadata an entry may set on its target.
// A nil field means "leave as created" or "do not change".
type Attrs struct {
	Permissions *Mode
	UID         *uint32
	GID         *uint32
}

// IsZero reports whether no attribute is set.
func (a Attrs) IsZero() bool {
	return a.Permissions == nil && a.UID == nil && a.GID == nil
}

// Entry is one desired filesystem object.
type Entry interface {
	Kind() Kind
	TargetPath() string
	isEntry()
}

// Copy writes the content of Source to Target.
type Copy struct {
	Source  string
	Target  string
	Attrs   Attrs
	Clobber *bool
	// IgnoreModification treats any existing regular file at Target as
	// correct, whatever its content.
	IgnoreModification bool
	Deactivate         *bool
}

// Symlink makes Target a symbolic link to Source.
type Symlink struct {
	Source  string
	Target  string
	Attrs   Attrs
	Clobber *bool
	// FollowSymlinks links to the fully resolved Source instead of its
	// absolute path.
	FollowSymlinks bool
	Deactivate     *bool
}

// Modify changes metadata of an existing Target. Content is untouched.
type Modify struct {
	Target string
	Attrs  Attrs
}

// Directory ensures Target is a directory.
type Directory struct {
	Target     string
	Attrs      Attrs
	Clobber    *bool
	Deactivate *bool
}

// Delete removes whatever exists at Target.
type Delete struct {
	Target string
}

func (Copy) Kind() Kind      { return KindCopy }
func (Symlink) Kind() Kind   { return KindSymlink }
func (Modify) Kind() Kind    { return KindModify }
func (Directory) Kind() Kind { return KindDirectory }
func (Delete) Kind() Kind    { return KindDelete }

func (e Copy) TargetPath() string      { return e.Target }
func (e Symlink) TargetPath() string   { return e.Target }
func (e Modify) TargetPath() string    { return e.Target }
func (e Directory) TargetPath() string { return e.Target }
func (e Delete) TargetPath() string    { return e.Target }

func (Copy) isEntry()      {}
func (Symlink) isEntry()   {}
func (Modify) isEntry()    {}
func (Directory) isEntry() {}
func (Delete) isEntry()    {}

// Manifest is the canonical in-memory form of a manifest document.
type Manifest struct {
	Version          int
	ClobberByDefault bool
	Files            []Entry
}

// Empty returns a manifest with no entries, the baseline of a first run.
func Empty() *Manifest {
	return &Manifest{Version: CurrentVersion, Files: []Entry{}}
}

// Lookup returns the entry targeting path, if any.
func (m *Manifest) Lookup(path string) (Entry, bool) {
	for _, e := range m.Files {
		if e.TargetPath() == path {
			return e, true
		}
	}
	return nil, false
}

// Targets returns the set of target paths in the manifest.
func (m *Manifest) Targets() map[string]struct{} {
	set := make(map[string]struct{}, len(m.Files))
	for _, e := range m.Files {
		set[e.TargetPath()] = struct{}{}
	}
	return set
}

// EffectiveClobber resolves the clobber flag for e: the entry's own value
// when set, otherwise the manifest default. Modify and Delete never clobber.
func EffectiveClobber(e Entry, clobberByDefault bool) bool {
	var override *bool
	switch v := e.(type) {
	case Copy:
		override = v.Clobber
	case Symlink:
		override = v.Clobber
	case Directory:
		override = v.Clobber
	default:
		return false
	}
	if override != nil {
		return *override
	}
	return clobberByDefault
}

// AttrsOf returns the attributes of e. Delete has none.
func AttrsOf(e Entry) Attrs {
	switch v := e.(type) {
	case Copy:
		return v.Attrs
	case Symlink:
		return v.Attrs
	case Modify:
		return v.Attrs
	case Directory:
		return v.Attrs
	default:
		return Attrs{}
	}
}

// SourceOf returns the source path of Copy and Symlink entries.
func SourceOf(e Entry) (string, bool) {
	switch v := e.(type) {
	case Copy:
		return v.Source, true
	case Symlink:
		return v.Source, true
	default:
		return "", false
	}
}

// Creates reports whether applying e brings a new object into existence,
// as opposed to editing or removing one. Only such entries are undone when
// they disappear from a manifest.
func Creates(e Entry) bool {
	switch e.(type) {
	case Copy, Symlink, Directory:
		return true
	default:
		return false
	}
}

// Deactivatable reports whether the deactivate command may remove e.
func Deactivatable(e Entry) bool {
	var flag *bool
	switch v := e.(type) {
	case Copy:
		flag = v.Deactivate
	case Symlink:
		flag = v.Deactivate
	case Directory:
		flag = v.Deactivate
	default:
		return false
	}
	return flag == nil || *flag
}
