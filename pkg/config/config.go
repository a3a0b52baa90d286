package config

import (
	"fmt"
	"strings"
)

// Config is the effective fsmanifest configuration.
type Config struct {
	State      StateConfig      `koanf:"state" toml:"state"`
	Logging    LoggingConfig    `koanf:"logging" toml:"logging"`
	Output     OutputConfig     `koanf:"output" toml:"output"`
	Activation ActivationConfig `koanf:"activation" toml:"activation"`
}

// StateConfig locates persisted state.
type StateConfig struct {
	// Baseline is the file holding the last successfully applied manifest.
	Baseline string `koanf:"baseline" toml:"baseline"`
}

// LoggingConfig controls the persistent log file.
type LoggingConfig struct {
	File bool `koanf:"file" toml:"file"`
}

// OutputConfig controls terminal rendering.
type OutputConfig struct {
	Color ColorMode `koanf:"color" toml:"color"`
}

// ActivationConfig holds defaults for the activation commands.
type ActivationConfig struct {
	DefaultOutput OutputFormat `koanf:"default_output" toml:"default_output"`
}

// ColorMode selects when styled output is used.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

func (c *ColorMode) UnmarshalText(text []byte) error {
	switch mode := ColorMode(strings.ToLower(string(text))); mode {
	case ColorAuto, ColorAlways, ColorNever:
		*c = mode
		return nil
	default:
		return fmt.Errorf("invalid color mode %q (want auto, always or never)", text)
	}
}

func (c ColorMode) MarshalText() ([]byte, error) {
	return []byte(c), nil
}

// OutputFormat is a plan rendering format.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// ParseOutputFormat validates a format name.
func ParseOutputFormat(s string) (OutputFormat, error) {
	var f OutputFormat
	err := f.UnmarshalText([]byte(s))
	return f, err
}

func (f *OutputFormat) UnmarshalText(text []byte) error {
	switch format := OutputFormat(strings.ToLower(string(text))); format {
	case FormatText, FormatJSON, FormatYAML:
		*f = format
		return nil
	default:
		return fmt.Errorf("invalid output format %q (want text, json or yaml)", text)
	}
}

func (f OutputFormat) MarshalText() ([]byte, error) {
	return []byte(f), nil
}
