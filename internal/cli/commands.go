package cli

import (
	"fmt"

	"github.com/arthur-debert/fsmanifest/internal/version"
	"github.com/arthur-debert/fsmanifest/pkg/activation"
	"github.com/arthur-debert/fsmanifest/pkg/baseline"
	"github.com/arthur-debert/fsmanifest/pkg/config"
	"github.com/arthur-debert/fsmanifest/pkg/display"
	"github.com/arthur-debert/fsmanifest/pkg/errors"
	"github.com/arthur-debert/fsmanifest/pkg/filesystem"
	"github.com/spf13/cobra"
)

func (a *app) activator(dryRun bool) *activation.Activator {
	fs := filesystem.NewOS()
	return activation.New(activation.Options{
		Store:  baseline.NewFileStore(fs, a.cfg.State.Baseline),
		FS:     fs,
		DryRun: dryRun,
	})
}

func (a *app) outputFormat(flag string) (config.OutputFormat, error) {
	if flag == "" {
		return a.cfg.Activation.DefaultOutput, nil
	}
	format, err := config.ParseOutputFormat(flag)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, MsgErrInvalidFlag, "output")
	}
	return format, nil
}

// report renders result, when there is one, and passes runErr through so a
// failed run still shows how far it got.
func (a *app) report(cmd *cobra.Command, command string, format config.OutputFormat, result *activation.Result, runErr error) error {
	if result == nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	r, err := display.NewRenderer(out, format, display.UseColor(a.cfg.Output.Color, out))
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to create renderer")
	}
	if err := r.Render(display.NewResultView(command, result)); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to render result")
	}
	return runErr
}

// runner is an Activator method taking the command's positional arguments.
type runner func(act *activation.Activator, args []string) (*activation.Result, error)

func (a *app) newActivationCmd(use string, posArgs cobra.PositionalArgs, forceDryRun bool, run runner) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:  use,
		Args: posArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat(output)
			if err != nil {
				return err
			}
			result, err := run(a.activator(a.dryRun || forceDryRun), args)
			return a.report(cmd, cmd.Name(), format, result, err)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", MsgFlagOutput)

	return cmd
}

func newActivateCmd(a *app) *cobra.Command {
	cmd := a.newActivationCmd("activate <manifest>", cobra.ExactArgs(1), false,
		func(act *activation.Activator, args []string) (*activation.Result, error) {
			return act.Activate(args[0])
		})
	cmd.Short = MsgActivateShort
	cmd.Long = MsgActivateLong
	cmd.Example = MsgActivateExample
	return cmd
}

func newDeactivateCmd(a *app) *cobra.Command {
	cmd := a.newActivationCmd("deactivate <manifest>", cobra.ExactArgs(1), false,
		func(act *activation.Activator, args []string) (*activation.Result, error) {
			return act.Deactivate(args[0])
		})
	cmd.Short = MsgDeactivateShort
	cmd.Long = MsgDeactivateLong
	return cmd
}

func newDiffCmd(a *app) *cobra.Command {
	cmd := a.newActivationCmd("diff <manifest> <old-manifest>", cobra.ExactArgs(2), false,
		func(act *activation.Activator, args []string) (*activation.Result, error) {
			return act.Diff(args[0], args[1])
		})
	cmd.Short = MsgDiffShort
	cmd.Long = MsgDiffLong
	cmd.Example = MsgDiffExample
	return cmd
}

func newPlanCmd(a *app) *cobra.Command {
	cmd := a.newActivationCmd("plan <manifest>", cobra.ExactArgs(1), true,
		func(act *activation.Activator, args []string) (*activation.Result, error) {
			return act.Activate(args[0])
		})
	cmd.Short = MsgPlanShort
	cmd.Long = MsgPlanLong
	cmd.Example = MsgPlanExample
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Render(a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Long:  MsgVersionLong,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, MsgVersionFormat, version.Version)
			fmt.Fprintf(out, MsgCommitFormat, version.Commit)
			fmt.Fprintf(out, MsgBuiltFormat, version.Date)
		},
	}
}
