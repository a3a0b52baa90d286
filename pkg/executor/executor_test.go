// pkg/executor/executor_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem under t.TempDir()
// PURPOSE: Test per-kind apply semantics, clobber policy and idempotence

package executor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/fsmanifest/pkg/errors"
	"github.com/arthur-debert/fsmanifest/pkg/executor"
	"github.com/arthur-debert/fsmanifest/pkg/manifest"
	"github.com/arthur-debert/fsmanifest/pkg/plan"
	"github.com/arthur-debert/fsmanifest/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apply(e manifest.Entry, clobber bool) plan.Operation {
	return plan.Operation{Action: plan.ActionApply, Target: e.TargetPath(), Entry: e, Clobber: clobber}
}

func run(t *testing.T, x *executor.Executor, op plan.Operation) executor.Result {
	t.Helper()
	return x.Execute(op)
}

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	src := testutil.CreateFile(t, dir, "src/bashrc", "export A=1\n")
	x := executor.New(executor.Options{})

	t.Run("creates_file_and_parents", func(t *testing.T) {
		target := filepath.Join(dir, "home/.config/deep/bashrc")
		res := run(t, x, apply(manifest.Copy{Source: src, Target: target}, false))
		require.NoError(t, res.Error)
		assert.Equal(t, executor.OutcomeApplied, res.Outcome)
		testutil.AssertFileContent(t, target, "export A=1\n")

		// Second run is a no-op even without clobber.
		res = run(t, x, apply(manifest.Copy{Source: src, Target: target}, false))
		require.NoError(t, res.Error)
		assert.Equal(t, executor.OutcomeUnchanged, res.Outcome)
	})

	t.Run("missing_source", func(t *testing.T) {
		target := filepath.Join(dir, "home/missing")
		res := run(t, x, apply(manifest.Copy{Source: filepath.Join(dir, "nope"), Target: target}, true))
		assert.True(t, errors.IsErrorCode(res.Error, errors.ErrIOFailure))
		assert.Equal(t, executor.OutcomeFailed, res.Outcome)
		testutil.AssertNoFile(t, target)
	})

	t.Run("source_is_directory", func(t *testing.T) {
		res := run(t, x, apply(manifest.Copy{Source: dir, Target: filepath.Join(dir, "home/d")}, true))
		assert.True(t, errors.IsErrorCode(res.Error, errors.ErrIOFailure))
	})

	t.Run("clobber_denied", func(t *testing.T) {
		target := testutil.CreateFile(t, dir, "home/existing", "user content")
		res := run(t, x, apply(manifest.Copy{Source: src, Target: target}, false))
		assert.True(t, errors.IsErrorCode(res.Error, errors.ErrClobberDenied))
		testutil.AssertFileContent(t, target, "user content")
	})

	t.Run("clobber_replaces", func(t *testing.T) {
		target := testutil.CreateFile(t, dir, "home/replace", "user content")
		res := run(t, x, apply(manifest.Copy{Source: src, Target: target}, true))
		require.NoError(t, res.Error)
		testutil.AssertFileContent(t, target, "export A=1\n")
	})

	t.Run("clobber_replaces_directory", func(t *testing.T) {
		target := testutil.CreateDir(t, dir, "home/was-dir")
		testutil.CreateFile(t, target, "inner", "x")
		res := run(t, x, apply(manifest.Copy{Source: src, Target: target}, true))
		require.NoError(t, res.Error)
		testutil.AssertFileContent(t, target, "export A=1\n")
	})

	t.Run("permissions", func(t *testing.T) {
		target := filepath.Join(dir, "home/secret")
		entry := manifest.Copy{Source: src, Target: target, Attrs: manifest.Attrs{Permissions: testutil.Perm(0600)}}
		require.NoError(t, run(t, x, apply(entry, false)).Error)
		testutil.AssertMode(t, target, 0600)

		// A mode changed behind our back is a conflict.
		require.NoError(t, os.Chmod(target, 0644))
		res := run(t, x, apply(entry, false))
		assert.True(t, errors.IsErrorCode(res.Error, errors.ErrClobberDenied))
		testutil.AssertMode(t, target, 0644)

		res = run(t, x, apply(entry, true))
		require.NoError(t, res.Error)
		assert.Equal(t, executor.OutcomeApplied, res.Outcome)
		testutil.AssertMode(t, target, 0600)
		testutil.AssertFileContent(t, target, "export A=1\n")
	})

	t.Run("permissions_drift_dry_run", func(t *testing.T) {
		target := filepath.Join(dir, "home/secret-dry")
		entry := manifest.Copy{Source: src, Target: target, Attrs: manifest.Attrs{Permissions: testutil.Perm(0600)}}
		require.NoError(t, run(t, x, apply(entry, false)).Error)
		require.NoError(t, os.Chmod(target, 0644))

		dry := executor.New(executor.Options{DryRun: true})
		res := run(t, dry, apply(entry, false))
		assert.True(t, errors.IsErrorCode(res.Error, errors.ErrClobberDenied))
		testutil.AssertMode(t, target, 0644)
	})

	t.Run("ignore_modification", func(t *testing.T) {
		target := testutil.CreateFile(t, dir, "home/edited", "edited by user")
		entry := manifest.Copy{Source: src, Target: target, IgnoreModification: true}
		res := run(t, x, apply(entry, false))
		require.NoError(t, res.Error)
		assert.Equal(t, executor.OutcomeUnchanged, res.Outcome)
		testutil.AssertFileContent(t, target, "edited by user")
	})

	t.Run("no_temp_files_left", func(t *testing.T) {
		entries, err := os.ReadDir(filepath.Join(dir, "home"))
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".fsmanifest-tmp-")
		}
	})
}

func TestSymlink(t *testing.T) {
	dir := t.TempDir()
	src := testutil.CreateFile(t, dir, "source/file", "content")
	other := testutil.CreateFile(t, dir, "source/other", "other")
	x := executor.New(executor.Options{})

	t.Run("creates_link_to_absolute_source", func(t *testing.T) {
		target := filepath.Join(dir, "output/symlink")
		res := run(t, x, apply(manifest.Symlink{Source: src, Target: target}, false))
		require.NoError(t, res.Error)
		testutil.AssertSymlink(t, target, src)

		res = run(t, x, apply(manifest.Symlink{Source: src, Target: target}, false))
		require.NoError(t, res.Error)
		assert.Equal(t, executor.OutcomeUnchanged, res.Outcome)
	})

	t.Run("missing_source", func(t *testing.T) {
		target := filepath.Join(dir, "output/dangling")
		res := run(t, x, apply(manifest.Symlink{Source: filepath.Join(dir, "nope"), Target: target}, true))
		assert.True(t, errors.IsErrorCode(res.Error, errors.ErrIOFailure))
		testutil.AssertNoFile(t, target)
	})

	t.Run("wrong_link_clobber_denied", func(t *testing.T) {
		target := filepath.Join(dir, "output/wrong")
		testutil.CreateSymlink(t, other, target)
		res := run(t, x, apply(manifest.Symlink{Source: src, Target: target}, false))
		assert.True(t, errors.IsErrorCode(res.Error, errors.ErrClobberDenied))
		testutil.AssertSymlink(t, target, other)
	})

	t.Run("wrong_link_clobbered", func(t *testing.T) {
		target := filepath.Join(dir, "output/wrong2")
		testutil.CreateSymlink(t, other, target)
		res := run(t, x, apply(manifest.Symlink{Source: src, Target: target}, true))
		require.NoError(t, res.Error)
		testutil.AssertSymlink(t, target, src)
	})

	t.Run("follow_symlinks", func(t *testing.T) {
		indirect := filepath.Join(dir, "source/indirect")
		testutil.CreateSymlink(t, src, indirect)
		resolved, err := filepath.EvalSymlinks(src)
		require.NoError(t, err)

		target := filepath.Join(dir, "output/followed")
		res := run(t, x, apply(manifest.Symlink{Source: indirect, Target: target, FollowSymlinks: true}, false))
		require.NoError(t, res.Error)
		testutil.AssertSymlink(t, target, resolved)
	})
}

func TestModify(t *testing.T) {
	dir := t.TempDir()
	x := executor.New(executor.Options{})

	t.Run("missing_target", func(t *testing.T) {
		target := filepath.Join(dir, "absent")
		res := run(t, x, apply(manifest.Modify{Target: target, Attrs: manifest.Attrs{Permissions: testutil.Perm(0600)}}, false))
		assert.True(t, errors.IsErrorCode(res.Error, errors.ErrMissingTarget))
		testutil.AssertNoFile(t, target)
	})

	t.Run("changes_mode_only", func(t *testing.T) {
		target := testutil.CreateFile(t, dir, "present", "keep me")
		entry := manifest.Modify{Target: target, Attrs: manifest.Attrs{Permissions: testutil.Perm(0600)}}

		res := run(t, x, apply(entry, false))
		require.NoError(t, res.Error)
		assert.Equal(t, executor.OutcomeApplied, res.Outcome)
		testutil.AssertMode(t, target, 0600)
		testutil.AssertFileContent(t, target, "keep me")

		res = run(t, x, apply(entry, false))
		require.NoError(t, res.Error)
		assert.Equal(t, executor.OutcomeUnchanged, res.Outcome)
	})
}

func TestOwnership(t *testing.T) {
	dir := t.TempDir()
	src := testutil.CreateFile(t, dir, "src", "x")
	x := executor.New(executor.Options{})

	uid, gid := uint32(os.Getuid()), uint32(os.Getgid())
	attrs := manifest.Attrs{UID: &uid, GID: &gid}

	target := filepath.Join(dir, "owned")
	res := run(t, x, apply(manifest.Copy{Source: src, Target: target, Attrs: attrs}, false))
	require.NoError(t, res.Error)

	res = run(t, x, apply(manifest.Copy{Source: src, Target: target, Attrs: attrs}, false))
	require.NoError(t, res.Error)
	assert.Equal(t, executor.OutcomeUnchanged, res.Outcome)

	link := filepath.Join(dir, "owned-link")
	res = run(t, x, apply(manifest.Symlink{Source: src, Target: link, Attrs: attrs}, false))
	require.NoError(t, res.Error)
	testutil.AssertSymlink(t, link, src)
}

func TestDirectory(t *testing.T) {
	dir := t.TempDir()
	x := executor.New(executor.Options{})

	t.Run("creates_nested", func(t *testing.T) {
		target := filepath.Join(dir, "a/b/c")
		res := run(t, x, apply(manifest.Directory{Target: target, Attrs: manifest.Attrs{Permissions: testutil.Perm(0700)}}, false))
		require.NoError(t, res.Error)
		testutil.AssertMode(t, target, 0700)
	})

	t.Run("existing_directory_is_kept", func(t *testing.T) {
		target := testutil.CreateDir(t, dir, "kept")
		testutil.CreateFile(t, target, "inner", "x")
		res := run(t, x, apply(manifest.Directory{Target: target}, false))
		require.NoError(t, res.Error)
		assert.Equal(t, executor.OutcomeUnchanged, res.Outcome)
		testutil.AssertFileContent(t, filepath.Join(target, "inner"), "x")
	})

	t.Run("file_in_the_way_denied", func(t *testing.T) {
		target := testutil.CreateFile(t, dir, "blocker", "x")
		res := run(t, x, apply(manifest.Directory{Target: target}, false))
		assert.True(t, errors.IsErrorCode(res.Error, errors.ErrClobberDenied))
		testutil.AssertFileContent(t, target, "x")
	})

	t.Run("file_in_the_way_clobbered", func(t *testing.T) {
		target := testutil.CreateFile(t, dir, "blocker2", "x")
		res := run(t, x, apply(manifest.Directory{Target: target}, true))
		require.NoError(t, res.Error)
		info, err := os.Lstat(target)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	x := executor.New(executor.Options{})

	t.Run("missing_is_fine", func(t *testing.T) {
		res := run(t, x, apply(manifest.Delete{Target: filepath.Join(dir, "absent")}, false))
		require.NoError(t, res.Error)
		assert.Equal(t, executor.OutcomeUnchanged, res.Outcome)
	})

	t.Run("recursive", func(t *testing.T) {
		target := testutil.CreateDir(t, dir, "tree")
		testutil.CreateFile(t, target, "a/b/c", "x")
		res := run(t, x, apply(manifest.Delete{Target: target}, false))
		require.NoError(t, res.Error)
		assert.Equal(t, executor.OutcomeRemoved, res.Outcome)
		testutil.AssertNoFile(t, target)
	})

	t.Run("dangling_symlink", func(t *testing.T) {
		target := filepath.Join(dir, "dangling")
		testutil.CreateSymlink(t, filepath.Join(dir, "nowhere"), target)
		res := run(t, x, apply(manifest.Delete{Target: target}, false))
		require.NoError(t, res.Error)
		testutil.AssertNoFile(t, target)
	})
}

func TestRemoveStale(t *testing.T) {
	dir := t.TempDir()
	x := executor.New(executor.Options{})
	target := filepath.Join(dir, "stale")
	testutil.CreateSymlink(t, filepath.Join(dir, "gone"), target)

	op := plan.Operation{Action: plan.ActionRemove, Target: target, Entry: manifest.Symlink{Target: target}}

	res := x.Execute(op)
	require.NoError(t, res.Error)
	assert.Equal(t, executor.OutcomeRemoved, res.Outcome)
	testutil.AssertNoFile(t, target)

	res = x.Execute(op)
	require.NoError(t, res.Error)
	assert.Equal(t, executor.OutcomeSkipped, res.Outcome)
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()
	src := testutil.CreateFile(t, dir, "src", "x")
	blocker := testutil.CreateFile(t, dir, "blocker", "user")
	x := executor.New(executor.Options{})

	ops := []plan.Operation{
		apply(manifest.Symlink{Source: src, Target: filepath.Join(dir, "first")}, false),
		apply(manifest.Symlink{Source: src, Target: blocker}, false),
		apply(manifest.Symlink{Source: src, Target: filepath.Join(dir, "third")}, false),
	}

	results, err := x.Run(ops)
	assert.True(t, errors.IsErrorCode(err, errors.ErrClobberDenied))
	require.Len(t, results, 2)
	assert.Equal(t, executor.OutcomeApplied, results[0].Outcome)
	assert.Equal(t, executor.OutcomeFailed, results[1].Outcome)

	testutil.AssertSymlink(t, filepath.Join(dir, "first"), src)
	testutil.AssertNoFile(t, filepath.Join(dir, "third"))
}

func TestDryRun(t *testing.T) {
	dir := t.TempDir()
	src := testutil.CreateFile(t, dir, "src", "x")
	stale := testutil.CreateFile(t, dir, "stale", "x")
	blocker := testutil.CreateFile(t, dir, "blocker", "user")
	x := executor.New(executor.Options{DryRun: true})
	assert.True(t, x.DryRun())

	target := filepath.Join(dir, "new")
	res := x.Execute(apply(manifest.Symlink{Source: src, Target: target}, false))
	require.NoError(t, res.Error)
	assert.Equal(t, executor.OutcomeApplied, res.Outcome)
	testutil.AssertNoFile(t, target)

	res = x.Execute(plan.Operation{Action: plan.ActionRemove, Target: stale, Entry: manifest.Copy{Target: stale}})
	require.NoError(t, res.Error)
	assert.Equal(t, executor.OutcomeRemoved, res.Outcome)
	testutil.AssertFileContent(t, stale, "x")

	res = x.Execute(apply(manifest.Symlink{Source: src, Target: blocker}, false))
	assert.True(t, errors.IsErrorCode(res.Error, errors.ErrClobberDenied))

	res = x.Execute(apply(manifest.Modify{Target: filepath.Join(dir, "absent")}, false))
	assert.True(t, errors.IsErrorCode(res.Error, errors.ErrMissingTarget))
}
