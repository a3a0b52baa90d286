// pkg/config/loader_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Temp XDG directories, environment variables
// PURPOSE: Test configuration layering (defaults, file, env, overrides)

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/fsmanifest/pkg/config"
	"github.com/arthur-debert/fsmanifest/pkg/errors"
	"github.com/arthur-debert/fsmanifest/pkg/paths"
	"github.com/arthur-debert/fsmanifest/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) (*paths.Paths, string) {
	t.Helper()
	root := testutil.IsolateXDG(t)
	p, err := paths.New()
	require.NoError(t, err)
	return p, root
}

func writeUserConfig(t *testing.T, p *paths.Paths, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(p.ConfigDir(), 0755))
	require.NoError(t, os.WriteFile(p.ConfigFilePath(), []byte(content), 0644))
}

func TestLoad_Defaults(t *testing.T) {
	p, root := isolate(t)

	cfg, err := config.Load(config.Options{Paths: p})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "state", "fsmanifest", "manifest.json"), cfg.State.Baseline)
	assert.True(t, cfg.Logging.File)
	assert.Equal(t, config.ColorAuto, cfg.Output.Color)
	assert.Equal(t, config.FormatText, cfg.Activation.DefaultOutput)
}

func TestLoad_Layering(t *testing.T) {
	p, root := isolate(t)
	writeUserConfig(t, p, `
[state]
baseline = "/from/file.json"

[output]
color = "never"

[activation]
default_output = "yaml"
`)

	t.Run("file_over_defaults", func(t *testing.T) {
		cfg, err := config.Load(config.Options{Paths: p})
		require.NoError(t, err)
		assert.Equal(t, "/from/file.json", cfg.State.Baseline)
		assert.Equal(t, config.ColorNever, cfg.Output.Color)
		assert.Equal(t, config.FormatYAML, cfg.Activation.DefaultOutput)
	})

	t.Run("env_over_file", func(t *testing.T) {
		t.Setenv("FSMANIFEST_STATE_BASELINE", "/from/env.json")
		t.Setenv("FSMANIFEST_LOGGING_FILE", "false")
		t.Setenv("FSMANIFEST_ACTIVATION_DEFAULT_OUTPUT", "json")

		cfg, err := config.Load(config.Options{Paths: p})
		require.NoError(t, err)
		assert.Equal(t, "/from/env.json", cfg.State.Baseline)
		assert.False(t, cfg.Logging.File)
		assert.Equal(t, config.FormatJSON, cfg.Activation.DefaultOutput)
	})

	t.Run("overrides_over_env", func(t *testing.T) {
		t.Setenv("FSMANIFEST_STATE_BASELINE", "/from/env.json")
		override := filepath.Join(root, "flag.json")

		cfg, err := config.Load(config.Options{
			Paths:     p,
			Overrides: map[string]interface{}{"state.baseline": override},
		})
		require.NoError(t, err)
		assert.Equal(t, override, cfg.State.Baseline)
	})
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	p, root := isolate(t)

	explicit := filepath.Join(root, "custom.toml")
	require.NoError(t, os.WriteFile(explicit, []byte("[output]\ncolor = \"always\"\n"), 0644))
	t.Setenv(paths.EnvConfigFile, explicit)

	cfg, err := config.Load(config.Options{Paths: p})
	require.NoError(t, err)
	assert.Equal(t, config.ColorAlways, cfg.Output.Color)

	t.Setenv(paths.EnvConfigFile, filepath.Join(root, "missing.toml"))
	_, err = config.Load(config.Options{Paths: p})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestLoad_UnreadableConfigPath(t *testing.T) {
	p, _ := isolate(t)

	// A regular file where the config directory should be makes the stat
	// fail with something other than "not found".
	require.NoError(t, os.MkdirAll(filepath.Dir(p.ConfigDir()), 0755))
	require.NoError(t, os.WriteFile(p.ConfigDir(), []byte("not a dir"), 0644))

	_, err := config.Load(config.Options{Paths: p})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad), "got %v", err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed_toml", "[state\nbaseline ="},
		{"bad_color", "[output]\ncolor = \"sometimes\"\n"},
		{"bad_format", "[activation]\ndefault_output = \"xml\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := isolate(t)
			writeUserConfig(t, p, tt.content)

			_, err := config.Load(config.Options{Paths: p})
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse), "got %v", err)
		})
	}
}

func TestRender(t *testing.T) {
	p, _ := isolate(t)
	cfg, err := config.Load(config.Options{Paths: p})
	require.NoError(t, err)

	out, err := config.Render(cfg)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "[state]")
	assert.Contains(t, text, cfg.State.Baseline)
	assert.Regexp(t, `color = .auto.`, text)
	assert.Regexp(t, `default_output = .text.`, text)
}

func TestParseOutputFormat(t *testing.T) {
	f, err := config.ParseOutputFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, config.FormatJSON, f)

	_, err = config.ParseOutputFormat("csv")
	assert.Error(t, err)
}
