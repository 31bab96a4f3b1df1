// Package check implements the batch analysis subcommand.
package check

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/audioqc/audioqc/internal/analysis"
	"github.com/audioqc/audioqc/internal/conf"
	"github.com/audioqc/audioqc/internal/errors"
	"github.com/audioqc/audioqc/internal/logging"
)

// ErrChecksFailed signals that the run completed but at least one analyzer
// on at least one file failed its reference check.
var ErrChecksFailed = errors.NewStd("one or more quality checks failed")

// Command creates the check command for analyzing audio files.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [input]...",
		Short: "Analyze audio files against a ruleset",
		Long: `Analyze one or more audio files or directories against the rules in the
configuration file and write a JSON report. The exit status is non-zero when
any enabled analyzer fails its reference check.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings.Inputs = args
			return runCheck(settings)
		},
	}

	setupFlags(cmd, settings)

	return cmd
}

// setupFlags configures flags specific to the check command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().StringVarP(&settings.RulesetPath, "config", "c", "", "Path to the ruleset TOML file")
	cmd.Flags().StringVarP(&settings.OutputPath, "output", "o", "", "Path to the output JSON report")
	cobra.CheckErr(cmd.MarkFlagRequired("config"))
	cobra.CheckErr(cmd.MarkFlagRequired("output"))
}

func runCheck(settings *conf.Settings) error {
	logger := logging.ForService("check")

	// Keep a structured audit trail of runs when a log file is configured
	if settings.LogFile != "" {
		fileLogger, closeLogger, err := logging.NewFileLogger(settings.LogFile, "check", slog.LevelInfo)
		if err != nil {
			return err
		}
		defer func() { _ = closeLogger() }()
		logger = fileLogger
	}

	rules, err := conf.LoadRuleSet(settings.RulesetPath)
	if err != nil {
		return err
	}
	logger.Info("loaded ruleset",
		"path", settings.RulesetPath,
		"analyzers", rules.Len())

	result, err := analysis.RunBatch(settings, rules)
	if err != nil {
		return err
	}

	if err := result.WriteFile(settings.OutputPath); err != nil {
		return err
	}
	logger.Info("report written",
		"path", settings.OutputPath,
		"files", result.Len())

	// Print the resolved report path for calling scripts
	resolved, err := filepath.Abs(settings.OutputPath)
	if err != nil {
		resolved = settings.OutputPath
	}
	fmt.Println(resolved)

	if result.HasFailure() {
		logger.Warn("quality checks failed", "report", resolved)
		return ErrChecksFailed
	}
	return nil
}
