package executor

import (
	"time"

	"github.com/arthur-debert/fsmanifest/pkg/errors"
	"github.com/arthur-debert/fsmanifest/pkg/filesystem"
	"github.com/arthur-debert/fsmanifest/pkg/logging"
	"github.com/arthur-debert/fsmanifest/pkg/manifest"
	"github.com/arthur-debert/fsmanifest/pkg/plan"
	"github.com/rs/zerolog"
)

// Outcome describes what happened to one target.
type Outcome string

const (
	// OutcomeApplied means the target was created or changed.
	OutcomeApplied Outcome = "applied"
	// OutcomeUnchanged means the target was already correct.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeRemoved means the target was deleted.
	OutcomeRemoved Outcome = "removed"
	// OutcomeSkipped means nothing was done: the target was already gone
	// or was not ours to remove.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the operation returned an error.
	OutcomeFailed Outcome = "failed"
)

// Options contains configuration for the executor
type Options struct {
	// DryRun reports the outcome each operation would have without
	// touching the filesystem. Conflicts are still reported as errors.
	DryRun bool
	// Logger defaults to the "executor" component logger.
	Logger *zerolog.Logger
	// Filesystem operations interface for testing
	FS filesystem.FS
}

// Executor applies operations one at a time.
type Executor struct {
	dryRun bool
	logger zerolog.Logger
	fs     filesystem.FS
}

// Result is the outcome of one operation.
type Result struct {
	Operation plan.Operation
	Outcome   Outcome
	Error     error
	Duration  time.Duration
}

// New creates a new executor instance
func New(opts Options) *Executor {
	logger := logging.GetLogger("executor")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}

	return &Executor{
		dryRun: opts.DryRun,
		logger: logger,
		fs:     fs,
	}
}

// DryRun reports whether the executor only previews operations.
func (e *Executor) DryRun() bool {
	return e.dryRun
}

// Run executes ops in order and stops at the first failure. The returned
// results cover every operation attempted, the failed one included.
func (e *Executor) Run(ops []plan.Operation) ([]Result, error) {
	results := make([]Result, 0, len(ops))

	for _, op := range ops {
		result := e.Execute(op)
		results = append(results, result)
		if result.Error != nil {
			return results, result.Error
		}
	}

	return results, nil
}

// Execute performs a single operation.
func (e *Executor) Execute(op plan.Operation) Result {
	start := time.Now()

	logger := e.logger.With().
		Str("action", string(op.Action)).
		Str("kind", string(op.Entry.Kind())).
		Str("target", op.Target).
		Bool("dry_run", e.dryRun).
		Logger()
	logger.Debug().Bool("clobber", op.Clobber).Msg("Executing operation")

	var (
		outcome Outcome
		err     error
	)
	switch op.Action {
	case plan.ActionRemove:
		outcome, err = e.removeStale(op)
	case plan.ActionApply:
		outcome, err = e.apply(op)
	default:
		err = errors.Newf(errors.ErrInternal, "unknown action %q", op.Action)
	}

	if err != nil {
		logger.Error().Err(err).Msg("Operation failed")
		return Result{Operation: op, Outcome: OutcomeFailed, Error: err, Duration: time.Since(start)}
	}

	logger.Info().Str("outcome", string(outcome)).Dur("duration", time.Since(start)).Msg("Operation done")
	return Result{Operation: op, Outcome: outcome, Duration: time.Since(start)}
}

func (e *Executor) apply(op plan.Operation) (Outcome, error) {
	if err := e.checkSource(op.Entry); err != nil {
		return OutcomeFailed, err
	}

	shapeOK, attrsOK, err := e.inspect(op.Entry)
	if err != nil {
		return OutcomeFailed, err
	}
	if shapeOK && attrsOK {
		return OutcomeUnchanged, nil
	}

	// The right object is in place with the wrong attributes. Someone changed
	// a file or link we placed, so repairing it needs clobber. Directories
	// and modify entries never clobber and are fixed in place.
	if shapeOK {
		if !op.Clobber && clobbersOnDrift(op.Entry.Kind()) {
			return OutcomeFailed, clobberDenied(op.Target)
		}
		if e.dryRun {
			return OutcomeApplied, nil
		}
		withMode := op.Entry.Kind() != manifest.KindSymlink
		if err := e.applyAttrs(op.Target, manifest.AttrsOf(op.Entry), withMode); err != nil {
			return OutcomeFailed, err
		}
		return OutcomeApplied, nil
	}

	if e.dryRun {
		if err := e.preflight(op); err != nil {
			return OutcomeFailed, err
		}
		return OutcomeApplied, nil
	}
	return e.materialize(op)
}

func (e *Executor) removeStale(op plan.Operation) (Outcome, error) {
	exists, err := filesystem.Exists(e.fs, op.Target)
	if err != nil {
		return OutcomeFailed, ioFailure(err, "inspect", op.Target)
	}
	if !exists {
		return OutcomeSkipped, nil
	}
	if e.dryRun {
		return OutcomeRemoved, nil
	}
	if err := e.fs.RemoveAll(op.Target); err != nil {
		return OutcomeFailed, ioFailure(err, "remove", op.Target)
	}
	return OutcomeRemoved, nil
}

func ioFailure(err error, action, path string) error {
	return errors.Wrapf(err, errors.ErrIOFailure, "failed to %s %s", action, path).
		WithDetail("path", path)
}

func clobbersOnDrift(kind manifest.Kind) bool {
	return kind == manifest.KindCopy || kind == manifest.KindSymlink
}

func clobberDenied(target string) error {
	return errors.Newf(errors.ErrClobberDenied,
		"%s already exists and clobbering is disabled for it", target).
		WithDetail("target", target)
}
