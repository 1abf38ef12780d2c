package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gosom/gmaps-favorites/common/logger"
	"github.com/gosom/gmaps-favorites/runner"
	"github.com/gosom/gmaps-favorites/tlmt"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *runner.Config
	tlmt    tlmt.Telemetry
}

func newRootCmd() *cobra.Command {
	a := &app{v: runner.NewViper()}

	cmd := &cobra.Command{
		Use:           "gmfav",
		Short:         "gmfav imports your Google Maps saved places.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.teardown()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is <data-folder>/gmfav.yaml)")
	flags.String("data-folder", "", "folder for exports, history and logs")
	flags.BoolP("verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newImportCmd(a),
		newLoginCmd(a),
		newHistoryCmd(a),
	)

	return cmd
}

// ExecuteContext runs the CLI and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}

		return 1
	}

	return 0
}

// setup binds the flags of the running command to the config keys of the
// same name, then loads the configuration, logger and telemetry.
func (a *app) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()

	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if err := runner.ReadConfigFile(a.v, a.cfgFile); err != nil {
		return err
	}

	cfg, err := runner.ParseConfig(a.v)
	if err != nil {
		return err
	}

	a.cfg = cfg

	if err := logger.Init(cfg.DataFolder); err != nil {
		return err
	}

	logger.SetVerbose(cfg.Verbose)

	a.tlmt, err = tlmt.New(ctx, cfg.TelemetryKey, cfg.TelemetryEndpoint)
	if err != nil {
		logger.Warn("telemetry disabled", "error", err)
		a.tlmt, _ = tlmt.New(ctx, "", "")
	}

	runner.SetTelemetry(a.tlmt)

	return nil
}

func (a *app) teardown() error {
	defer logger.Close()

	if a.tlmt != nil {
		return a.tlmt.Close()
	}

	return nil
}
