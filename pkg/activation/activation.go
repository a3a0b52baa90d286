package activation

import (
	"bytes"

	"github.com/arthur-debert/fsmanifest/pkg/baseline"
	"github.com/arthur-debert/fsmanifest/pkg/errors"
	"github.com/arthur-debert/fsmanifest/pkg/executor"
	"github.com/arthur-debert/fsmanifest/pkg/filesystem"
	"github.com/arthur-debert/fsmanifest/pkg/logging"
	"github.com/arthur-debert/fsmanifest/pkg/manifest"
	"github.com/arthur-debert/fsmanifest/pkg/plan"
	"github.com/rs/zerolog"
)

// Options configures an Activator.
type Options struct {
	// Store holds the previously applied manifest. Required.
	Store baseline.Store
	// FS defaults to the OS filesystem.
	FS filesystem.FS
	// DryRun computes the plan and predicts outcomes without touching the
	// filesystem or the baseline.
	DryRun bool
}

// Activator reconciles the filesystem with manifests.
type Activator struct {
	store  baseline.Store
	fs     filesystem.FS
	dryRun bool
	logger zerolog.Logger
}

// Result reports what an activation did.
type Result struct {
	Plan    *plan.Plan
	Results []executor.Result
	DryRun  bool
	// Saved is true when the baseline was updated (or cleared, for
	// deactivation).
	Saved bool
}

// Count returns how many operations ended with outcome.
func (r *Result) Count(outcome executor.Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// New creates an Activator.
func New(opts Options) *Activator {
	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}
	return &Activator{
		store:  opts.Store,
		fs:     fs,
		dryRun: opts.DryRun,
		logger: logging.GetLogger("activation"),
	}
}

// Activate applies the manifest at manifestPath against the stored
// baseline.
func (a *Activator) Activate(manifestPath string) (*Result, error) {
	desired, err := manifest.ReadFile(manifestPath)
	if err != nil {
		return nil, err
	}
	return a.ActivateManifest(desired)
}

// ActivateManifest applies an already loaded manifest against the stored
// baseline.
func (a *Activator) ActivateManifest(desired *manifest.Manifest) (*Result, error) {
	old, err := a.store.Load()
	if err != nil {
		return nil, err
	}
	return a.reconcile(old, desired)
}

// Diff applies the manifest at newPath using the manifest at oldPath as the
// baseline instead of the stored one. The store is still updated on
// success.
func (a *Activator) Diff(newPath, oldPath string) (*Result, error) {
	desired, err := manifest.ReadFile(newPath)
	if err != nil {
		return nil, err
	}
	old, err := manifest.ReadFile(oldPath)
	if err != nil {
		return nil, err
	}
	return a.reconcile(old, desired)
}

func (a *Activator) reconcile(old, desired *manifest.Manifest) (*Result, error) {
	p := plan.Compute(old, desired)
	result := &Result{Plan: p, DryRun: a.dryRun}

	a.logger.Info().
		Int("operations", p.Len()).
		Bool("dry_run", a.dryRun).
		Msg("Starting activation")

	x := executor.New(executor.Options{DryRun: a.dryRun, FS: a.fs})
	results, err := x.Run(p.Operations)
	result.Results = results
	if err != nil {
		a.logger.Error().Err(err).
			Int("completed", len(results)-1).
			Int("remaining", p.Len()-len(results)).
			Msg("Activation aborted, baseline not updated")
		return result, err
	}

	if a.dryRun {
		return result, nil
	}

	if err := a.store.Save(desired); err != nil {
		return result, err
	}
	result.Saved = true

	a.logger.Info().
		Int("applied", result.Count(executor.OutcomeApplied)).
		Int("unchanged", result.Count(executor.OutcomeUnchanged)).
		Int("removed", result.Count(executor.OutcomeRemoved)).
		Msg("Activation complete")
	return result, nil
}

// Deactivate removes what the manifest at manifestPath created.
func (a *Activator) Deactivate(manifestPath string) (*Result, error) {
	m, err := manifest.ReadFile(manifestPath)
	if err != nil {
		return nil, err
	}
	return a.DeactivateManifest(m)
}

// DeactivateManifest removes the targets m created, deepest first. Only
// targets still matching m are removed and directories only when empty.
// The stored baseline is cleared when it is m.
func (a *Activator) DeactivateManifest(m *manifest.Manifest) (*Result, error) {
	applies := plan.Compute(nil, m).Operations

	p := &plan.Plan{Operations: make([]plan.Operation, 0, len(applies))}
	for i := len(applies) - 1; i >= 0; i-- {
		op := applies[i]
		p.Operations = append(p.Operations, plan.Operation{
			Action: plan.ActionRemove,
			Target: op.Target,
			Entry:  op.Entry,
		})
	}

	result := &Result{Plan: p, DryRun: a.dryRun}
	x := executor.New(executor.Options{DryRun: a.dryRun, FS: a.fs})

	for _, op := range p.Operations {
		outcome, err := x.Deactivate(op.Entry)
		result.Results = append(result.Results, executor.Result{Operation: op, Outcome: outcome, Error: err})
		if err != nil {
			a.logger.Error().Err(err).Str("target", op.Target).Msg("Deactivation aborted")
			return result, err
		}
	}

	if a.dryRun {
		return result, nil
	}

	stored, err := a.store.Load()
	if err != nil {
		return result, err
	}
	same, err := sameManifest(stored, m)
	if err != nil {
		return result, err
	}
	if same {
		if err := a.store.Clear(); err != nil {
			return result, err
		}
		result.Saved = true
	} else {
		a.logger.Warn().Msg("Deactivated manifest is not the stored baseline, leaving the baseline in place")
	}

	a.logger.Info().Int("removed", result.Count(executor.OutcomeRemoved)).Msg("Deactivation complete")
	return result, nil
}

func sameManifest(a, b *manifest.Manifest) (bool, error) {
	left, err := manifest.Encode(a)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrInternal, "failed to encode manifest")
	}
	right, err := manifest.Encode(b)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrInternal, "failed to encode manifest")
	}
	return bytes.Equal(left, right), nil
}
