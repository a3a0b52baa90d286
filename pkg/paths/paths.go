// Package paths provides centralized path handling for fsmanifest.
// It follows the XDG Base Directory specification for the baseline
// manifest, the log file and the user configuration file.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/fsmanifest/pkg/errors"
)

// Environment variable names
const (
	// EnvStateDir overrides the XDG state directory for fsmanifest
	EnvStateDir = "FSMANIFEST_STATE_DIR"

	// EnvConfigDir overrides the XDG config directory for fsmanifest
	EnvConfigDir = "FSMANIFEST_CONFIG_DIR"

	// EnvConfigFile points at an explicit configuration file
	EnvConfigFile = "FSMANIFEST_CONFIG"
)

// Fixed names inside the fsmanifest directories. These are not
// user-configurable; the baseline location as a whole is (see pkg/config).
const (
	AppDirName       = "fsmanifest"
	BaselineFileName = "manifest.json"
	LogFileName      = "fsmanifest.log"
	ConfigFileName   = "config.toml"
)

// Paths resolves the directories fsmanifest reads and writes.
type Paths struct {
	stateDir  string
	configDir string
}

// New resolves paths from the environment. XDG variables are re-read on
// every call so that tests using t.Setenv see their own values.
func New() (*Paths, error) {
	xdg.Reload()

	p := &Paths{}

	if dir := os.Getenv(EnvStateDir); dir != "" {
		p.stateDir = expandHome(dir)
	} else {
		p.stateDir = filepath.Join(xdg.StateHome, AppDirName)
	}

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.configDir = expandHome(dir)
	} else {
		p.configDir = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	for _, dir := range []*string{&p.stateDir, &p.configDir} {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to get absolute path for %s", *dir)
		}
		*dir = abs
	}

	return p, nil
}

// StateDir is where the baseline and the log file live.
func (p *Paths) StateDir() string {
	return p.stateDir
}

// ConfigDir holds the user configuration file.
func (p *Paths) ConfigDir() string {
	return p.configDir
}

// BaselinePath is the default location of the previously applied manifest.
func (p *Paths) BaselinePath() string {
	return filepath.Join(p.stateDir, BaselineFileName)
}

// LogFilePath returns the path of the persistent log file.
func (p *Paths) LogFilePath() string {
	return filepath.Join(p.stateDir, LogFileName)
}

// ConfigFilePath returns the user configuration file, honouring
// FSMANIFEST_CONFIG when it is set.
func (p *Paths) ConfigFilePath() string {
	if file := os.Getenv(EnvConfigFile); file != "" {
		return expandHome(file)
	}
	return filepath.Join(p.configDir, ConfigFileName)
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	return expandHome(path)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.Getenv("HOME")
	}
	if home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
