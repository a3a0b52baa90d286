// Package config handles configuration management for fsmanifest.
// It layers the embedded defaults, the user's TOML file, FSMANIFEST_*
// environment variables and command-line overrides, in that order.
package config
