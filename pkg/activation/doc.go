// Package activation runs the end-to-end reconciliation: load the desired
// manifest, load the baseline, compute the plan, execute it, and record the
// desired manifest as the new baseline.
//
// The baseline is replaced only when every operation succeeded. A failure
// aborts the remaining operations and leaves the mutations already made in
// place; the next activation starts again from the old baseline and, since
// applies are idempotent, converges.
package activation
