// Package baseline persists the last successfully applied manifest.
//
// The activation orchestrator diffs every new manifest against the
// baseline to find entries that disappeared, and replaces the baseline only
// after a fully successful activation. The store is an explicit object
// handed to the orchestrator; there is no package-level state.
package baseline
