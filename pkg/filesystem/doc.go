// Package filesystem provides the filesystem seam used by fsmanifest.
//
// Every mutation the executor and the baseline store perform goes through
// the FS interface. The OS implementation talks to the real filesystem and
// uses golang.org/x/sys/unix for the ownership calls that must not follow
// symlinks.
package filesystem
