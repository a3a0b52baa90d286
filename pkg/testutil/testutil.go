package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// CreateFile creates a file with the given content in the specified directory.
// It fails the test if the file cannot be created.
func CreateFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)

	// Create parent directories if needed
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent directories for %s: %v", path, err)
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}

	return path
}

// CreateDir creates a directory in the specified parent directory.
func CreateDir(t *testing.T, parent, name string) string {
	t.Helper()

	path := filepath.Join(parent, name)

	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", path, err)
	}

	return path
}

// CreateSymlink creates link pointing to target, creating the parent of
// link if needed.
func CreateSymlink(t *testing.T, target, link string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(link), 0755); err != nil {
		t.Fatalf("Failed to create parent directory for symlink %s: %v", link, err)
	}

	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("Failed to create symlink %s -> %s: %v", link, target, err)
	}
}

// SymlinkExists checks if a path is a symbolic link.
func SymlinkExists(t *testing.T, path string) bool {
	t.Helper()

	info, err := os.Lstat(path)
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeSymlink != 0
}

// ReadFile reads the content of a file and returns it as a string.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	return string(content)
}

// AssertFileContent checks that a regular file exists and has the expected
// content.
func AssertFileContent(t *testing.T, path, expected string) {
	t.Helper()

	info, err := os.Lstat(path)
	if err != nil {
		t.Fatalf("File %s does not exist: %v", path, err)
	}
	if !info.Mode().IsRegular() {
		t.Fatalf("%s is not a regular file (mode %s)", path, info.Mode())
	}

	actual := ReadFile(t, path)
	if actual != expected {
		t.Errorf("File %s content mismatch\nExpected: %q\nActual: %q", path, expected, actual)
	}
}

// AssertSymlink checks that a symlink exists and its link value is
// expectedTarget.
func AssertSymlink(t *testing.T, link, expectedTarget string) {
	t.Helper()

	if !SymlinkExists(t, link) {
		t.Fatalf("Symlink %s does not exist", link)
	}

	actualTarget, err := os.Readlink(link)
	if err != nil {
		t.Fatalf("Failed to read symlink %s: %v", link, err)
	}
	if actualTarget != expectedTarget {
		t.Errorf("Symlink %s target mismatch\nExpected: %s\nActual: %s", link, expectedTarget, actualTarget)
	}
}

// AssertNoFile checks that nothing exists at path, not even a dangling link.
func AssertNoFile(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Errorf("File %s exists but should not", path)
	}
}

// AssertMode checks the permission bits of path.
func AssertMode(t *testing.T, path string, expected os.FileMode) {
	t.Helper()

	info, err := os.Lstat(path)
	if err != nil {
		t.Fatalf("Failed to stat %s: %v", path, err)
	}
	if actual := info.Mode().Perm(); actual != expected {
		t.Errorf("Mode of %s mismatch\nExpected: %04o\nActual: %04o", path, expected, actual)
	}
}

// SkipIfRoot skips tests that rely on permission checks root bypasses.
func SkipIfRoot(t *testing.T) {
	t.Helper()

	if os.Geteuid() == 0 {
		t.Skip("Test relies on permission checks that root bypasses")
	}
}

// IsolateXDG points the XDG base directories at a fresh temp tree and clears
// FSMANIFEST_* variables. It returns the root of the tree.
func IsolateXDG(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))

	for _, name := range []string{
		"FSMANIFEST_CONFIG", "FSMANIFEST_CONFIG_DIR", "FSMANIFEST_STATE_DIR",
		"FSMANIFEST_STATE_BASELINE", "FSMANIFEST_LOGGING_FILE",
		"FSMANIFEST_OUTPUT_COLOR", "FSMANIFEST_ACTIVATION_DEFAULT_OUTPUT",
	} {
		// Setenv first so the original value is restored on cleanup.
		t.Setenv(name, "")
		if err := os.Unsetenv(name); err != nil {
			t.Fatalf("Failed to unset %s: %v", name, err)
		}
	}

	return root
}
