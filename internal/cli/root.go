package cli

import (
	"os"

	"github.com/arthur-debert/fsmanifest/internal/version"
	"github.com/arthur-debert/fsmanifest/pkg/config"
	"github.com/arthur-debert/fsmanifest/pkg/display"
	"github.com/arthur-debert/fsmanifest/pkg/errors"
	"github.com/arthur-debert/fsmanifest/pkg/logging"
	"github.com/arthur-debert/fsmanifest/pkg/paths"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app carries global flag values and the state resolved before each command.
type app struct {
	verbosity int
	dryRun    bool
	baseline  string

	paths *paths.Paths
	cfg   *config.Config
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:               "fsmanifest",
		Short:             MsgRootShort,
		Long:              MsgRootLong,
		Version:           version.Version,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			// If we get here, no subcommand was provided
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&a.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().StringVar(&a.baseline, "baseline", "", MsgFlagBaseline)

	rootCmd.AddCommand(newActivateCmd(a))
	rootCmd.AddCommand(newDeactivateCmd(a))
	rootCmd.AddCommand(newDiffCmd(a))
	rootCmd.AddCommand(newPlanCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// setup resolves paths and configuration, then configures logging.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	p, err := paths.New()
	if err != nil {
		return err
	}

	overrides := map[string]interface{}{}
	if cmd.Root().PersistentFlags().Changed("baseline") {
		overrides["state.baseline"] = a.baseline
	}

	cfg, err := config.Load(config.Options{Paths: p, Overrides: overrides})
	if err != nil {
		return err
	}
	a.paths, a.cfg = p, cfg

	logOpts := logging.Options{
		Verbosity: a.verbosity,
		Console:   cmd.ErrOrStderr(),
		NoColor:   !display.UseColor(cfg.Output.Color, os.Stderr),
	}
	if cfg.Logging.File {
		logOpts.LogFile = p.LogFilePath()
	}
	logging.SetupLogger(logOpts)

	log.Debug().
		Str("command", cmd.Name()).
		Str("baseline", cfg.State.Baseline).
		Bool("dry_run", a.dryRun).
		Msg("Command started")
	return nil
}
