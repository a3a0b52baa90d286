package executor

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/fsmanifest/pkg/errors"
	"github.com/arthur-debert/fsmanifest/pkg/manifest"
	"github.com/arthur-debert/fsmanifest/pkg/plan"
)

const tempPattern = ".fsmanifest-tmp-*"

// preflight reports the error materialize would hit on conflicts, without
// changing anything.
func (e *Executor) preflight(op plan.Operation) error {
	switch v := op.Entry.(type) {
	case manifest.Modify:
		return e.requireTarget(v.Target)
	case manifest.Directory:
		_, err := e.conflict(v.Target, op.Clobber, true)
		return err
	case manifest.Copy, manifest.Symlink:
		_, err := e.conflict(op.Target, op.Clobber, false)
		return err
	default:
		return nil
	}
}

func (e *Executor) materialize(op plan.Operation) (Outcome, error) {
	var err error
	switch v := op.Entry.(type) {
	case manifest.Copy:
		err = e.copyFile(v, op.Clobber)
	case manifest.Symlink:
		err = e.link(v, op.Clobber)
	case manifest.Modify:
		err = e.modify(v)
	case manifest.Directory:
		err = e.directory(v, op.Clobber)
	case manifest.Delete:
		if err := e.fs.RemoveAll(v.Target); err != nil {
			return OutcomeFailed, ioFailure(err, "delete", v.Target)
		}
		return OutcomeRemoved, nil
	default:
		err = errors.Newf(errors.ErrInternal, "unknown entry kind %q", op.Entry.Kind())
	}

	if err != nil {
		return OutcomeFailed, err
	}
	return OutcomeApplied, nil
}

// conflict inspects what currently sits at target. It returns its info
// (nil when nothing is there) and ErrClobberDenied when something is in the
// way and clobber is false. An existing directory is not in the way when
// dirOK is set.
func (e *Executor) conflict(target string, clobber, dirOK bool) (fs.FileInfo, error) {
	info, err := e.fs.Lstat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, ioFailure(err, "inspect", target)
	}
	if dirOK && info.IsDir() {
		return info, nil
	}
	if !clobber {
		return info, clobberDenied(target)
	}
	return info, nil
}

func (e *Executor) requireTarget(target string) error {
	if _, err := e.fs.Lstat(target); err != nil {
		if os.IsNotExist(err) {
			return errors.Newf(errors.ErrMissingTarget, "%s does not exist, nothing to modify", target).
				WithDetail("target", target)
		}
		return ioFailure(err, "inspect", target)
	}
	return nil
}

func (e *Executor) copyFile(v manifest.Copy, clobber bool) error {
	existing, err := e.conflict(v.Target, clobber, false)
	if err != nil {
		return err
	}

	srcInfo, err := e.fs.Stat(v.Source)
	if err != nil {
		return ioFailure(err, "inspect source", v.Source)
	}

	dir := filepath.Dir(v.Target)
	if err := e.fs.MkdirAll(dir, 0755); err != nil {
		return ioFailure(err, "create parent directory of", v.Target)
	}

	tmp, err := e.fs.CreateTemp(dir, tempPattern)
	if err != nil {
		return ioFailure(err, "create temp file for", v.Target)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = e.fs.Remove(tmpPath)
		}
	}()

	src, err := e.fs.Open(v.Source)
	if err != nil {
		return ioFailure(err, "open source", v.Source)
	}
	_, err = io.Copy(tmp, src)
	_ = src.Close()
	if err != nil {
		return ioFailure(err, "copy", v.Source)
	}
	if err := tmp.Sync(); err != nil {
		return ioFailure(err, "sync", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		return ioFailure(err, "close", tmpPath)
	}

	attrs := v.Attrs
	if attrs.Permissions == nil {
		mode := manifest.ModeOf(srcInfo.Mode())
		attrs.Permissions = &mode
	}
	if err := e.applyAttrs(tmpPath, attrs, true); err != nil {
		return err
	}

	if err := e.clearDir(v.Target, existing); err != nil {
		return err
	}
	if err := e.fs.Rename(tmpPath, v.Target); err != nil {
		return ioFailure(err, "move into place", v.Target)
	}
	committed = true

	e.logger.Debug().Str("source", v.Source).Str("target", v.Target).Msg("Copied file")
	return nil
}

func (e *Executor) link(v manifest.Symlink, clobber bool) error {
	existing, err := e.conflict(v.Target, clobber, false)
	if err != nil {
		return err
	}

	value, err := e.linkValue(v)
	if err != nil {
		return err
	}

	dir := filepath.Dir(v.Target)
	if err := e.fs.MkdirAll(dir, 0755); err != nil {
		return ioFailure(err, "create parent directory of", v.Target)
	}

	tmpPath, err := e.tempName(dir)
	if err != nil {
		return ioFailure(err, "reserve temp name for", v.Target)
	}
	if err := e.fs.Symlink(value, tmpPath); err != nil {
		return ioFailure(err, "create link", tmpPath)
	}
	committed := false
	defer func() {
		if !committed {
			_ = e.fs.Remove(tmpPath)
		}
	}()

	if err := e.applyAttrs(tmpPath, v.Attrs, false); err != nil {
		return err
	}

	if err := e.clearDir(v.Target, existing); err != nil {
		return err
	}
	if err := e.fs.Rename(tmpPath, v.Target); err != nil {
		return ioFailure(err, "move into place", v.Target)
	}
	committed = true

	e.logger.Debug().Str("target", v.Target).Str("value", value).Msg("Linked")
	return nil
}

func (e *Executor) modify(v manifest.Modify) error {
	if err := e.requireTarget(v.Target); err != nil {
		return err
	}
	return e.applyAttrs(v.Target, v.Attrs, true)
}

func (e *Executor) directory(v manifest.Directory, clobber bool) error {
	existing, err := e.conflict(v.Target, clobber, true)
	if err != nil {
		return err
	}

	if existing != nil && !existing.IsDir() {
		if err := e.fs.Remove(v.Target); err != nil {
			return ioFailure(err, "remove", v.Target)
		}
	}

	if err := e.fs.MkdirAll(v.Target, 0755); err != nil {
		return ioFailure(err, "create directory", v.Target)
	}
	return e.applyAttrs(v.Target, v.Attrs, true)
}

// clearDir removes a directory that a file or link is about to replace.
// rename(2) cannot put a non-directory over a directory.
func (e *Executor) clearDir(target string, existing fs.FileInfo) error {
	if existing == nil || !existing.IsDir() {
		return nil
	}
	if err := e.fs.RemoveAll(target); err != nil {
		return ioFailure(err, "remove directory", target)
	}
	return nil
}

// applyAttrs sets ownership, then mode bits (chown may clear setuid and
// setgid). Mode bits are skipped when withMode is false.
func (e *Executor) applyAttrs(path string, attrs manifest.Attrs, withMode bool) error {
	if attrs.UID != nil || attrs.GID != nil {
		uid, gid := -1, -1
		if attrs.UID != nil {
			uid = int(*attrs.UID)
		}
		if attrs.GID != nil {
			gid = int(*attrs.GID)
		}
		if err := e.fs.Lchown(path, uid, gid); err != nil {
			return ioFailure(err, "change owner of", path)
		}
	}

	if withMode && attrs.Permissions != nil {
		if err := e.fs.Chmod(path, attrs.Permissions.FileMode()); err != nil {
			return ioFailure(err, "change mode of", path)
		}
	}
	return nil
}

// tempName returns an unused path in dir for staging a link.
func (e *Executor) tempName(dir string) (string, error) {
	f, err := e.fs.CreateTemp(dir, tempPattern)
	if err != nil {
		return "", err
	}
	name := f.Name()
	_ = f.Close()
	if err := e.fs.Remove(name); err != nil {
		return "", err
	}
	return name, nil
}
