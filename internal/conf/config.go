// Package conf loads the application settings and the TOML ruleset that
// drives the analyzers.
package conf

import (
	"fmt"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/audioqc/audioqc/internal/analyzer"
	"github.com/audioqc/audioqc/internal/errors"
)

// Settings holds the runtime configuration of a check run.
type Settings struct {
	// Debug enables debug level logging
	Debug bool

	// RulesetPath is the TOML file with per-analyzer rules
	RulesetPath string

	// OutputPath is where the JSON report is written
	OutputPath string

	// LogFile, when set, duplicates structured logs into a rotating file
	LogFile string

	// Inputs are the files and directories to analyze
	Inputs []string
}

// LoadRuleSet reads and validates a TOML ruleset. Each top-level section
// enables one analyzer; its "settings" table overrides analyzer defaults and
// its "reference_values" table supplies the pass/fail bounds. A malformed
// ruleset is fatal before any audio is touched.
func LoadRuleSet(path string) (*analyzer.RuleSet, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("ruleset_path", path).
			Build()
	}

	rules := make([]analyzer.Rule, 0, len(analyzer.AllKinds))
	for _, kind := range analyzer.AllKinds {
		if !v.IsSet(string(kind)) {
			continue
		}
		section, err := sectionMap(v.Get(string(kind)), kind)
		if err != nil {
			return nil, configError(err, path)
		}
		rule, err := parseRule(kind, section)
		if err != nil {
			return nil, configError(err, path)
		}
		rules = append(rules, rule)
	}

	// Reject unknown analyzer names instead of silently skipping them
	for key := range v.AllSettings() {
		if !analyzer.IsValidKind(key) {
			return nil, configError(fmt.Errorf("unknown analyzer %q", key), path)
		}
	}

	ruleSet, err := analyzer.NewRuleSet(rules)
	if err != nil {
		return nil, configError(err, path)
	}
	return ruleSet, nil
}

func configError(err error, path string) error {
	return errors.New(err).
		Component("conf").
		Category(errors.CategoryConfiguration).
		Context("ruleset_path", path).
		Build()
}

func sectionMap(raw any, kind analyzer.Kind) (map[string]any, error) {
	section, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("analyzer %q: section must be a table", kind)
	}
	return section, nil
}

func parseRule(kind analyzer.Kind, section map[string]any) (analyzer.Rule, error) {
	rule := analyzer.Rule{
		Kind:     kind,
		Settings: analyzer.DefaultSettings(),
	}

	for key, raw := range section {
		switch key {
		case "settings":
			settings, ok := raw.(map[string]any)
			if !ok {
				return rule, fmt.Errorf("analyzer %q: settings must be a table", kind)
			}
			if err := parseSettings(kind, settings, &rule.Settings); err != nil {
				return rule, err
			}
		case "reference_values":
			values, ok := raw.(map[string]any)
			if !ok {
				return rule, fmt.Errorf("analyzer %q: reference_values must be a table", kind)
			}
			reference, err := parseReference(kind, values)
			if err != nil {
				return rule, err
			}
			rule.Reference = reference
		default:
			return rule, fmt.Errorf("analyzer %q: unknown key %q", kind, key)
		}
	}

	return rule, nil
}

func parseSettings(kind analyzer.Kind, section map[string]any, settings *analyzer.Settings) error {
	for key, raw := range section {
		switch key {
		case "threshold":
			threshold, err := cast.ToFloat64E(raw)
			if err != nil {
				return fmt.Errorf("analyzer %q: threshold must be a number: %w", kind, err)
			}
			settings.Threshold = threshold
		default:
			return fmt.Errorf("analyzer %q: unknown setting %q", kind, key)
		}
	}
	return nil
}

func parseReference(kind analyzer.Kind, section map[string]any) (*analyzer.Reference, error) {
	// An empty table means the analyzer runs without reference checks.
	if len(section) == 0 {
		return nil, nil
	}

	reference := &analyzer.Reference{}

	for key, raw := range section {
		switch key {
		case "minimum", "maximum":
			bound, err := cast.ToFloat64E(raw)
			if err != nil {
				return nil, fmt.Errorf("analyzer %q: %s must be a number: %w", kind, key, err)
			}
			if reference.Range == nil {
				reference.Range = &analyzer.RangeReference{}
			}
			if key == "minimum" {
				reference.Range.Minimum = &bound
			} else {
				reference.Range.Maximum = &bound
			}
		case "equals":
			values, err := normalizeSetValues(raw)
			if err != nil {
				return nil, fmt.Errorf("analyzer %q: %w", kind, err)
			}
			reference.Set = &analyzer.SetReference{Values: values}
		default:
			return nil, fmt.Errorf("analyzer %q: unknown reference value %q", kind, key)
		}
	}

	if err := reference.Validate(kind); err != nil {
		return nil, err
	}
	return reference, nil
}

// normalizeSetValues turns a single literal or a list of literals into a
// uniform slice of int64 and string members.
func normalizeSetValues(raw any) ([]any, error) {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	default:
		items = []any{raw}
	}

	values := make([]any, 0, len(items))
	for _, item := range items {
		switch member := item.(type) {
		case string:
			values = append(values, member)
		case int, int32, int64:
			values = append(values, cast.ToInt64(member))
		case float64:
			if member != float64(int64(member)) {
				return nil, fmt.Errorf("equals member %v is not an integer or string", member)
			}
			values = append(values, int64(member))
		default:
			return nil, fmt.Errorf("equals member %v has unsupported type %T", item, item)
		}
	}
	return values, nil
}
