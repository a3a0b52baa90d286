package display

import (
	"github.com/arthur-debert/fsmanifest/pkg/activation"
	"github.com/arthur-debert/fsmanifest/pkg/executor"
	"github.com/arthur-debert/fsmanifest/pkg/manifest"
	"github.com/arthur-debert/fsmanifest/pkg/plan"
)

// OutcomePending marks operations a failed run never reached.
const OutcomePending executor.Outcome = "pending"

// ResultView is the serializable form of an activation result.
type ResultView struct {
	Command    string          `json:"command" yaml:"command"`
	DryRun     bool            `json:"dry_run" yaml:"dry_run"`
	Saved      bool            `json:"baseline_saved" yaml:"baseline_saved"`
	Operations []OperationView `json:"operations" yaml:"operations"`
	Summary    Summary         `json:"summary" yaml:"summary"`
}

// OperationView is one plan operation with its outcome.
type OperationView struct {
	Action      plan.Action      `json:"action" yaml:"action"`
	Kind        manifest.Kind    `json:"kind" yaml:"kind"`
	Target      string           `json:"target" yaml:"target"`
	Source      string           `json:"source,omitempty" yaml:"source,omitempty"`
	Clobber     bool             `json:"clobber" yaml:"clobber"`
	Permissions *manifest.Mode   `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	UID         *uint32          `json:"uid,omitempty" yaml:"uid,omitempty"`
	GID         *uint32          `json:"gid,omitempty" yaml:"gid,omitempty"`
	Outcome     executor.Outcome `json:"outcome" yaml:"outcome"`
	Error       string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary counts outcomes.
type Summary struct {
	Applied   int `json:"applied" yaml:"applied"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`
	Removed   int `json:"removed" yaml:"removed"`
	Skipped   int `json:"skipped" yaml:"skipped"`
	Failed    int `json:"failed" yaml:"failed"`
	Pending   int `json:"pending" yaml:"pending"`
}

// NewResultView flattens result for rendering. Operations past a failure
// are reported as pending.
func NewResultView(command string, result *activation.Result) *ResultView {
	view := &ResultView{
		Command:    command,
		DryRun:     result.DryRun,
		Saved:      result.Saved,
		Operations: make([]OperationView, 0, result.Plan.Len()),
	}

	for i, op := range result.Plan.Operations {
		ov := OperationView{
			Action:  op.Action,
			Kind:    op.Entry.Kind(),
			Target:  op.Target,
			Clobber: op.Clobber,
			Outcome: OutcomePending,
		}
		if source, ok := manifest.SourceOf(op.Entry); ok {
			ov.Source = source
		}
		if op.Action == plan.ActionApply {
			attrs := manifest.AttrsOf(op.Entry)
			ov.Permissions, ov.UID, ov.GID = attrs.Permissions, attrs.UID, attrs.GID
		}
		if i < len(result.Results) {
			ov.Outcome = result.Results[i].Outcome
			if err := result.Results[i].Error; err != nil {
				ov.Error = err.Error()
			}
		}
		view.Summary.add(ov.Outcome)
		view.Operations = append(view.Operations, ov)
	}

	return view
}

func (s *Summary) add(outcome executor.Outcome) {
	switch outcome {
	case executor.OutcomeApplied:
		s.Applied++
	case executor.OutcomeUnchanged:
		s.Unchanged++
	case executor.OutcomeRemoved:
		s.Removed++
	case executor.OutcomeSkipped:
		s.Skipped++
	case executor.OutcomeFailed:
		s.Failed++
	default:
		s.Pending++
	}
}
