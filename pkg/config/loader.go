package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/fsmanifest/pkg/errors"
	"github.com/arthur-debert/fsmanifest/pkg/logging"
	"github.com/arthur-debert/fsmanifest/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix of environment variables mapped onto config keys.
// The first underscore after the prefix becomes the section separator, so
// FSMANIFEST_ACTIVATION_DEFAULT_OUTPUT sets activation.default_output.
const EnvPrefix = "FSMANIFEST_"

// Options for Load.
type Options struct {
	// Paths resolves the user config file and the default baseline location.
	Paths *paths.Paths
	// Overrides are flat dotted keys applied last, typically from flags.
	Overrides map[string]interface{}
}

// Load builds the effective configuration.
func Load(opts Options) (*Config, error) {
	logger := logging.GetLogger("config")

	p := opts.Paths
	if p == nil {
		var err error
		if p, err = paths.New(); err != nil {
			return nil, err
		}
	}

	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config file if it exists
	userFile := p.ConfigFilePath()
	_, err := os.Stat(userFile)
	switch {
	case err == nil:
		if err := k.Load(file.Provider(userFile), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", userFile).
				WithDetail("path", userFile)
		}
		logger.Debug().Str("path", userFile).Msg("Loaded user config")
	case !os.IsNotExist(err):
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot access config file %s", userFile).
			WithDetail("path", userFile)
	case os.Getenv(paths.EnvConfigFile) != "":
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not found", userFile).
			WithDetail("path", userFile)
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 4. Overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.TextUnmarshallerHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := postProcess(&cfg, p); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps FSMANIFEST_STATE_BASELINE to state.baseline. The variables
// pkg/paths reads on its own are not config keys and are skipped.
func envKey(s string) string {
	switch s {
	case paths.EnvConfigFile, paths.EnvConfigDir, paths.EnvStateDir:
		return ""
	}
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}

func postProcess(cfg *Config, p *paths.Paths) error {
	if cfg.State.Baseline == "" {
		cfg.State.Baseline = p.BaselinePath()
		return nil
	}

	abs, err := filepath.Abs(paths.ExpandHome(cfg.State.Baseline))
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse, "invalid baseline path %s", cfg.State.Baseline)
	}
	cfg.State.Baseline = abs
	return nil
}

// Render serializes cfg as TOML.
func Render(cfg *Config) ([]byte, error) {
	data, err := gotoml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}
	return data, nil
}
