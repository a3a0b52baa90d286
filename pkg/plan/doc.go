// Package plan computes the ordered operation list that moves a filesystem
// from the state described by a baseline manifest to a desired one.
//
// Every desired entry becomes an apply operation, whether or not the target
// already looks right; the executor decides what is already in place. Every
// entry the baseline created whose target is gone from the desired manifest
// becomes a removal.
//
// Ordering guarantees that nothing is removed from a directory after the
// directory itself: removals run first, deepest path first, then applies,
// shallowest path first. Ties keep manifest order.
package plan
