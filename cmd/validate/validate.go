// Package validate implements the ruleset validation subcommand.
package validate

import (
	"github.com/spf13/cobra"

	"github.com/audioqc/audioqc/internal/conf"
	"github.com/audioqc/audioqc/internal/logging"
)

// Command creates the validate command for checking a ruleset without
// analyzing any audio.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a ruleset file",
		Long:  `Load the ruleset TOML file and report configuration errors without touching any audio files.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(settings)
		},
	}

	cmd.Flags().StringVarP(&settings.RulesetPath, "config", "c", "", "Path to the ruleset TOML file")
	cobra.CheckErr(cmd.MarkFlagRequired("config"))

	return cmd
}

func runValidate(settings *conf.Settings) error {
	logger := logging.ForService("validate")

	rules, err := conf.LoadRuleSet(settings.RulesetPath)
	if err != nil {
		return err
	}

	enabled := make([]string, 0, rules.Len())
	for _, kind := range rules.Enabled() {
		enabled = append(enabled, string(kind))
	}
	logger.Info("ruleset is valid",
		"path", settings.RulesetPath,
		"analyzers", enabled)
	return nil
}
