package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arloliu/splitter"
	"github.com/arloliu/splitter/internal/logging"
)

type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "splitter",
		Short: "Deterministic A/B experimentation engine",
		Long: `splitter assigns users to experiment variants deterministically,
aggregates their metrics and decides when an experiment is done.

The CLI validates experiment definition files and runs synthetic traffic
simulations against an in-process engine.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Engine configuration file (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", logging.FormatConsole, "Log format: console, text, json")

	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newSimulateCmd(opts))

	return cmd
}

// loadConfig returns the configuration file named by --config, or the
// defaults when no file is given.
func (o *globalOptions) loadConfig() (splitter.Config, error) {
	if o.configPath == "" {
		return splitter.DefaultConfig(), nil
	}

	return splitter.LoadConfig(o.configPath)
}

func (o *globalOptions) newLogger(cmd *cobra.Command) (splitter.Logger, error) {
	level, err := logging.ParseLevel(o.logLevel)
	if err != nil {
		return nil, err
	}

	handler, err := logging.NewHandler(cmd.ErrOrStderr(), o.logFormat, level)
	if err != nil {
		return nil, err
	}

	return splitter.NewSlogLogger(slog.New(handler)), nil
}
