package plan

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/fsmanifest/pkg/logging"
	"github.com/arthur-debert/fsmanifest/pkg/manifest"
)

// Action is what an operation does to its target.
type Action string

const (
	// ActionApply brings the target in line with a desired entry.
	ActionApply Action = "apply"
	// ActionRemove deletes a target the baseline created and the desired
	// manifest no longer mentions.
	ActionRemove Action = "remove"
)

// Operation is one step of a plan.
type Operation struct {
	Action Action

	// Target is the absolute path the operation acts on.
	Target string

	// Entry is the desired entry for applies, and the baseline entry that
	// created Target for removals.
	Entry manifest.Entry

	// Clobber is the resolved clobber flag of an apply. Always false for
	// removals.
	Clobber bool
}

func (op Operation) String() string {
	if op.Action == ActionRemove {
		return fmt.Sprintf("remove %s (was %s)", op.Target, op.Entry.Kind())
	}
	return fmt.Sprintf("%s %s", op.Entry.Kind(), op.Target)
}

// Plan is an ordered list of operations.
type Plan struct {
	Operations []Operation
}

// Len returns the number of operations.
func (p *Plan) Len() int {
	return len(p.Operations)
}

// Removals returns the removal operations in plan order.
func (p *Plan) Removals() []Operation {
	return p.filter(ActionRemove)
}

// Applies returns the apply operations in plan order.
func (p *Plan) Applies() []Operation {
	return p.filter(ActionApply)
}

func (p *Plan) filter(action Action) []Operation {
	var ops []Operation
	for _, op := range p.Operations {
		if op.Action == action {
			ops = append(ops, op)
		}
	}
	return ops
}

// Compute diffs desired against baseline. A nil baseline is treated as
// empty.
func Compute(baseline, desired *manifest.Manifest) *Plan {
	logger := logging.GetLogger("plan")

	if baseline == nil {
		baseline = manifest.Empty()
	}

	wanted := desired.Targets()

	var removals []Operation
	for _, e := range baseline.Files {
		target := e.TargetPath()
		if _, still := wanted[target]; still {
			continue
		}
		if !manifest.Creates(e) {
			logger.Debug().Str("target", target).Str("kind", string(e.Kind())).
				Msg("Dropped entry created nothing, no removal")
			continue
		}
		if _, isDir := e.(manifest.Directory); isDir {
			if nested := requiredBy(target, desired); nested != "" {
				logger.Debug().Str("target", target).Str("nested", nested).
					Msg("Dropped directory is still a parent of a desired target, keeping it")
				continue
			}
		}
		removals = append(removals, Operation{Action: ActionRemove, Target: target, Entry: e})
	}
	sort.SliceStable(removals, func(i, j int) bool {
		return depth(removals[i].Target) > depth(removals[j].Target)
	})

	applies := make([]Operation, 0, len(desired.Files))
	for _, e := range desired.Files {
		applies = append(applies, Operation{
			Action:  ActionApply,
			Target:  e.TargetPath(),
			Entry:   e,
			Clobber: manifest.EffectiveClobber(e, desired.ClobberByDefault),
		})
	}
	sort.SliceStable(applies, func(i, j int) bool {
		return depth(applies[i].Target) < depth(applies[j].Target)
	})

	p := &Plan{Operations: append(removals, applies...)}

	logger.Info().
		Int("removals", len(removals)).
		Int("applies", len(applies)).
		Msg("Computed plan")
	return p
}

// requiredBy returns a desired target nested under dir, or "".
func requiredBy(dir string, desired *manifest.Manifest) string {
	for _, e := range desired.Files {
		if manifest.IsAncestor(dir, e.TargetPath()) {
			return e.TargetPath()
		}
	}
	return ""
}

func depth(path string) int {
	return strings.Count(filepath.Clean(path), string(filepath.Separator))
}
