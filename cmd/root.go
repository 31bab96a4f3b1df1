// Package cmd assembles the command line interface.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/audioqc/audioqc/cmd/check"
	"github.com/audioqc/audioqc/cmd/validate"
	"github.com/audioqc/audioqc/internal/conf"
	"github.com/audioqc/audioqc/internal/logging"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "audioqc",
		Short:         "Audio quality checker",
		Long:          `audioqc evaluates batches of audio files against a configurable set of quality criteria and emits a structured pass/fail report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, settings)

	subcommands := []*cobra.Command{
		check.Command(settings),
		validate.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initialize(settings)
	}

	return rootCmd
}

// initialize sets up logging once flags have been parsed, before any
// subcommand runs.
func initialize(settings *conf.Settings) error {
	level := slog.LevelInfo
	if settings.Debug {
		level = slog.LevelDebug
	}
	logging.Init(level)
	return nil
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.LogFile, "log-file", "", "Duplicate structured logs into a rotating file")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		cobra.CheckErr(err)
	}
}
