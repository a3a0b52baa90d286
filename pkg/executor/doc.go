// Package executor performs plan operations against the filesystem.
//
// Each apply operation first checks whether its target is already correct
// (same kind, same content or link value, matching attributes). A correct
// target is left alone whatever the clobber policy, which is what makes a
// repeated activation a no-op. Otherwise the entry is materialized: files
// and links are staged under a temporary name in the target directory and
// renamed into place.
//
// Operations run one at a time, in plan order. Run stops at the first
// failure and leaves earlier mutations in place.
package executor
