// Package analyzer implements the measurement algorithms and the rule
// evaluation that turns measurements into pass/fail verdicts.
package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind identifies one analyzer. The set is closed; evaluation dispatches
// over it exhaustively.
type Kind string

const (
	KindPeak              Kind = "peak"
	KindTruePeak          Kind = "true_peak"
	KindPAPR              Kind = "papr"
	KindRMS               Kind = "rms"
	KindLUFS              Kind = "lufs"
	KindLength            Kind = "length"
	KindChannelCount      Kind = "channel_count"
	KindSampleRate        Kind = "sample_rate"
	KindSubtype           Kind = "subtype"
	KindLeadingSilence    Kind = "leading_silence"
	KindTrailingSilence   Kind = "trailing_silence"
	KindChannelDifference Kind = "channel_difference"
)

// AllKinds lists every analyzer in canonical order. Evaluation and report
// serialization follow this order so runs are deterministic regardless of
// configuration map iteration order.
var AllKinds = []Kind{
	KindPeak,
	KindTruePeak,
	KindPAPR,
	KindRMS,
	KindLUFS,
	KindLength,
	KindChannelCount,
	KindSampleRate,
	KindSubtype,
	KindLeadingSilence,
	KindTrailingSilence,
	KindChannelDifference,
}

// IsValidKind reports whether name is a known analyzer name.
func IsValidKind(name string) bool {
	for _, kind := range AllKinds {
		if Kind(name) == kind {
			return true
		}
	}
	return false
}

// usesSetReference reports whether the analyzer compares categorically via
// set membership rather than via a numeric range.
func (k Kind) usesSetReference() bool {
	switch k {
	case KindChannelCount, KindSampleRate, KindSubtype:
		return true
	default:
		return false
	}
}

// hasThresholdSetting reports whether the analyzer honors the threshold
// setting.
func (k Kind) hasThresholdSetting() bool {
	switch k {
	case KindRMS, KindLeadingSilence, KindTrailingSilence:
		return true
	default:
		return false
	}
}

// DefaultThreshold is the silence gate applied by the RMS and silence
// analyzers when no threshold setting is configured, in dB.
const DefaultThreshold = -72.0

// Settings holds the per-analyzer tunables, resolved against defaults at
// ruleset construction time.
type Settings struct {
	// Threshold is the silence gate in dB for RMS and the silence scanners.
	Threshold float64
}

// DefaultSettings returns the documented default settings.
func DefaultSettings() Settings {
	return Settings{Threshold: DefaultThreshold}
}

// RangeReference is an inclusive numeric bound; either side may be open.
type RangeReference struct {
	Minimum *float64
	Maximum *float64
}

// SetReference is a membership test against a set of allowed values.
// Values are normalized to int64 or string at configuration load time.
type SetReference struct {
	Values []any
}

// Reference holds the reference values for one analyzer. Exactly one of the
// two shapes is populated; which shape is legal depends on the analyzer kind.
type Reference struct {
	Range *RangeReference
	Set   *SetReference
}

// Validate checks that the reference has exactly one shape and that the
// shape is legal for the given analyzer kind.
func (r *Reference) Validate(kind Kind) error {
	if r == nil {
		return nil
	}
	if (r.Range == nil) == (r.Set == nil) {
		return fmt.Errorf("analyzer %q: reference values must have exactly one shape", kind)
	}
	if kind.usesSetReference() && r.Set == nil {
		return fmt.Errorf("analyzer %q: expects equals-shaped reference values", kind)
	}
	if !kind.usesSetReference() && r.Range == nil {
		return fmt.Errorf("analyzer %q: expects minimum/maximum-shaped reference values", kind)
	}
	if r.Range != nil && r.Range.Minimum == nil && r.Range.Maximum == nil {
		return fmt.Errorf("analyzer %q: reference range has neither minimum nor maximum", kind)
	}
	if r.Set != nil && len(r.Set.Values) == 0 {
		return fmt.Errorf("analyzer %q: reference set is empty", kind)
	}
	return nil
}

// Rule enables one analyzer with its settings and optional reference values.
type Rule struct {
	Kind      Kind
	Settings  Settings
	Reference *Reference
}

// RuleSet is the full evaluation configuration: one rule per enabled
// analyzer. Analyzers without a rule are skipped entirely.
type RuleSet struct {
	rules map[Kind]*Rule
}

// NewRuleSet builds a RuleSet from rules, validating each reference shape.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	rs := &RuleSet{rules: make(map[Kind]*Rule, len(rules))}
	for i := range rules {
		rule := rules[i]
		if !IsValidKind(string(rule.Kind)) {
			return nil, fmt.Errorf("unknown analyzer %q", rule.Kind)
		}
		if err := rule.Reference.Validate(rule.Kind); err != nil {
			return nil, err
		}
		if _, exists := rs.rules[rule.Kind]; exists {
			return nil, fmt.Errorf("analyzer %q configured twice", rule.Kind)
		}
		rs.rules[rule.Kind] = &rule
	}
	return rs, nil
}

// Rule returns the rule for the given analyzer, or nil when it is disabled.
func (rs *RuleSet) Rule(kind Kind) *Rule {
	return rs.rules[kind]
}

// Enabled returns the enabled analyzers in canonical order.
func (rs *RuleSet) Enabled() []Kind {
	enabled := make([]Kind, 0, len(rs.rules))
	for _, kind := range AllKinds {
		if _, ok := rs.rules[kind]; ok {
			enabled = append(enabled, kind)
		}
	}
	return enabled
}

// Len returns the number of enabled analyzers.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Verdict is the outcome of comparing a measurement against its reference
// values.
type Verdict int

const (
	// VerdictUnset means no reference values were configured, or the
	// analyzer was not applicable to the input.
	VerdictUnset Verdict = iota
	VerdictPass
	VerdictFail
)

// Result is one analyzer's measurement for one file. Value is a float64,
// int, or string depending on the analyzer; nil when the analyzer was not
// applicable to the input.
type Result struct {
	Value   any
	Unit    string
	Verdict Verdict

	// NotApplicable marks results for inputs the analyzer does not support,
	// e.g. loudness on surround material.
	NotApplicable bool
}

// MarshalJSON renders the result in the report wire shape: a "pass" key with
// the literal string "true" or "false" (omitted entirely for unset
// verdicts), followed by value and unit.
func (r Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	switch r.Verdict {
	case VerdictPass:
		buf.WriteString(`"pass":"true",`)
	case VerdictFail:
		buf.WriteString(`"pass":"false",`)
	case VerdictUnset:
		// omitted
	}
	value, err := json.Marshal(r.Value)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"value":`)
	buf.Write(value)
	unit, err := json.Marshal(r.Unit)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`,"unit":`)
	buf.Write(unit)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Results maps analyzer names to their results for one file, preserving the
// canonical analyzer order for serialization.
type Results struct {
	Order  []Kind
	ByKind map[Kind]Result
}

// Get returns the result for the given analyzer.
func (r *Results) Get(kind Kind) (Result, bool) {
	result, ok := r.ByKind[kind]
	return result, ok
}

// HasFailure reports whether any analyzer failed its reference check.
func (r *Results) HasFailure() bool {
	for _, result := range r.ByKind {
		if result.Verdict == VerdictFail {
			return true
		}
	}
	return false
}

// MarshalJSON renders the per-analyzer results as an ordered JSON object.
func (r *Results) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kind := range r.Order {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(string(kind))
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		result, err := json.Marshal(r.ByKind[kind])
		if err != nil {
			return nil, err
		}
		buf.Write(result)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
