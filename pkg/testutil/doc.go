// Package testutil provides helpers for fsmanifest tests.
//
// Key components:
//   - File tree helpers (CreateFile, CreateDir, CreateSymlink) working on a
//     real directory, normally t.TempDir()
//   - Assertions on the resulting tree (AssertFileContent, AssertSymlink,
//     AssertNoFile, AssertMode)
//   - ManifestBuilder for declaring manifests inline and WriteManifest for
//     putting them on disk
//   - IsolateXDG for pointing XDG and FSMANIFEST_* variables at a temp tree
//
// All test data should be defined inline, not in external files.
package testutil
