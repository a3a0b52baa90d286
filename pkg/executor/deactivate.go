package executor

import (
	"os"

	"github.com/arthur-debert/fsmanifest/pkg/filesystem"
	"github.com/arthur-debert/fsmanifest/pkg/manifest"
)

// Deactivate removes the target of an entry if it still is what the entry
// created. Modify and Delete entries, entries with deactivate set to false,
// targets that no longer match, and non-empty directories are skipped.
func (e *Executor) Deactivate(entry manifest.Entry) (Outcome, error) {
	target := entry.TargetPath()
	logger := e.logger.With().
		Str("kind", string(entry.Kind())).
		Str("target", target).
		Bool("dry_run", e.dryRun).
		Logger()

	if !manifest.Deactivatable(entry) {
		logger.Debug().Msg("Entry is not deactivatable, skipping")
		return OutcomeSkipped, nil
	}

	info, err := e.fs.Lstat(target)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Msg("Target already gone")
			return OutcomeSkipped, nil
		}
		return OutcomeFailed, ioFailure(err, "inspect", target)
	}

	owned, err := e.owns(entry, info)
	if err != nil {
		return OutcomeFailed, err
	}
	if !owned {
		logger.Warn().Msg("Target no longer matches the manifest, leaving it in place")
		return OutcomeSkipped, nil
	}

	if e.dryRun {
		return OutcomeRemoved, nil
	}

	if err := e.fs.Remove(target); err != nil {
		if info.IsDir() && filesystem.IsNotEmpty(err) {
			logger.Warn().Msg("Directory is not empty, leaving it in place")
			return OutcomeSkipped, nil
		}
		return OutcomeFailed, ioFailure(err, "remove", target)
	}

	logger.Info().Msg("Deactivated")
	return OutcomeRemoved, nil
}

// owns reports whether the object at the target is still the one entry
// produces. Attributes are not compared: a file whose mode was changed
// afterwards is still ours.
func (e *Executor) owns(entry manifest.Entry, info os.FileInfo) (bool, error) {
	switch v := entry.(type) {
	case manifest.Copy:
		if !info.Mode().IsRegular() {
			return false, nil
		}
		if v.IgnoreModification {
			return true, nil
		}
		return e.sameContent(v.Source, v.Target)
	case manifest.Symlink:
		if !isSymlink(info) {
			return false, nil
		}
		if v.FollowSymlinks {
			if _, err := e.fs.Stat(v.Source); err != nil {
				return false, nil
			}
		}
		return e.sameLink(v)
	case manifest.Directory:
		return info.IsDir(), nil
	default:
		return false, nil
	}
}
