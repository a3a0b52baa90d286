package executor

import (
	"io/fs"
	"os"

	"github.com/arthur-debert/fsmanifest/pkg/errors"
	"github.com/arthur-debert/fsmanifest/pkg/internal/hashutil"
	"github.com/arthur-debert/fsmanifest/pkg/manifest"
)

// checkSource fails with ErrIOFailure when a Copy or Symlink source is
// missing, or a Copy source is not a regular file.
func (e *Executor) checkSource(entry manifest.Entry) error {
	source, ok := manifest.SourceOf(entry)
	if !ok {
		return nil
	}

	var (
		info fs.FileInfo
		err  error
	)
	if entry.Kind() == manifest.KindCopy {
		info, err = e.fs.Stat(source)
	} else {
		info, err = e.fs.Lstat(source)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrIOFailure, "source %s does not exist", source).
				WithDetail("source", source).
				WithDetail("target", entry.TargetPath())
		}
		return ioFailure(err, "inspect source", source)
	}

	if entry.Kind() == manifest.KindCopy && !info.Mode().IsRegular() {
		return errors.Newf(errors.ErrIOFailure, "source %s is not a regular file", source).
			WithDetail("source", source)
	}
	return nil
}

// IsCorrect reports whether the target of entry already is what applying
// entry would produce: same kind of object, same content (Copy) or link
// value (Symlink), and every attribute the entry sets. A Delete is correct
// when nothing exists at its target.
func (e *Executor) IsCorrect(entry manifest.Entry) (bool, error) {
	shapeOK, attrsOK, err := e.inspect(entry)
	return shapeOK && attrsOK, err
}

// inspect splits IsCorrect in two. shapeOK means the right kind of object
// with the right content or link value is in place; attrsOK is only
// meaningful when shapeOK is true.
func (e *Executor) inspect(entry manifest.Entry) (shapeOK, attrsOK bool, err error) {
	target := entry.TargetPath()

	info, err := e.fs.Lstat(target)
	if err != nil {
		if os.IsNotExist(err) {
			done := entry.Kind() == manifest.KindDelete
			return done, done, nil
		}
		return false, false, ioFailure(err, "inspect", target)
	}

	withMode := true
	switch v := entry.(type) {
	case manifest.Copy:
		if !info.Mode().IsRegular() {
			return false, false, nil
		}
		if !v.IgnoreModification {
			same, err := e.sameContent(v.Source, target)
			if err != nil || !same {
				return false, false, err
			}
		}
	case manifest.Symlink:
		if !isSymlink(info) {
			return false, false, nil
		}
		same, err := e.sameLink(v)
		if err != nil || !same {
			return false, false, err
		}
		withMode = false
	case manifest.Modify:
	case manifest.Directory:
		if !info.IsDir() {
			return false, false, nil
		}
	default:
		return false, false, nil
	}

	attrsOK, err = e.attrsMatch(target, info, manifest.AttrsOf(entry), withMode)
	return true, attrsOK, err
}

func (e *Executor) sameContent(source, target string) (bool, error) {
	same, err := hashutil.SameContent(e.fs, source, target)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, ioFailure(err, "hash", target)
	}
	return same, nil
}

func (e *Executor) sameLink(v manifest.Symlink) (bool, error) {
	want, err := e.linkValue(v)
	if err != nil {
		return false, err
	}
	got, err := e.fs.Readlink(v.Target)
	if err != nil {
		return false, ioFailure(err, "read link", v.Target)
	}
	return got == want, nil
}

// linkValue is what the symlink for v must contain: the absolute source
// path, or its fully resolved form when FollowSymlinks is set.
func (e *Executor) linkValue(v manifest.Symlink) (string, error) {
	if !v.FollowSymlinks {
		return v.Source, nil
	}
	resolved, err := e.fs.EvalSymlinks(v.Source)
	if err != nil {
		return "", ioFailure(err, "resolve", v.Source)
	}
	return resolved, nil
}

// attrsMatch compares the attributes attrs sets against target. Mode bits
// are skipped when withMode is false (symlinks have none of their own).
func (e *Executor) attrsMatch(target string, info fs.FileInfo, attrs manifest.Attrs, withMode bool) (bool, error) {
	if withMode && attrs.Permissions != nil && manifest.ModeOf(info.Mode()) != *attrs.Permissions {
		return false, nil
	}

	if attrs.UID == nil && attrs.GID == nil {
		return true, nil
	}

	uid, gid, err := e.fs.Owner(target)
	if err != nil {
		return false, ioFailure(err, "read owner of", target)
	}
	if attrs.UID != nil && uid != *attrs.UID {
		return false, nil
	}
	if attrs.GID != nil && gid != *attrs.GID {
		return false, nil
	}
	return true, nil
}

func isSymlink(info fs.FileInfo) bool {
	return info.Mode()&fs.ModeSymlink != 0
}
