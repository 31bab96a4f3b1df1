package analyzer

import (
	"github.com/audioqc/audioqc/internal/logging"
	"github.com/audioqc/audioqc/internal/myaudio"
)

// Evaluate runs every analyzer enabled in the ruleset against the buffer and
// compares each measurement against its reference values. Analyzers whose
// preconditions the buffer violates yield a not-applicable result; the
// remaining analyzers proceed independently.
func Evaluate(buffer *myaudio.SampleBuffer, rules *RuleSet) *Results {
	logger := logging.ForService("analyzer")
	analysis := newFileAnalysis(buffer)
	results := &Results{
		Order:  rules.Enabled(),
		ByKind: make(map[Kind]Result, rules.Len()),
	}

	for _, kind := range results.Order {
		rule := rules.Rule(kind)
		result := analysis.compute(kind, rule.Settings)

		if result.NotApplicable {
			logger.Debug("analyzer not applicable to input",
				"analyzer", string(kind),
				"channels", buffer.NumChannels())
		} else if rule.Reference != nil {
			result.Verdict = evaluateReference(result.Value, rule.Reference)
		}

		results.ByKind[kind] = result
	}

	return results
}

// evaluateReference compares a measured value against the configured
// reference values.
func evaluateReference(value any, reference *Reference) Verdict {
	switch {
	case reference.Range != nil:
		number, ok := toFloat(value)
		if !ok {
			return VerdictUnset
		}
		return evaluateRange(number, reference.Range)
	case reference.Set != nil:
		return evaluateSet(value, reference.Set)
	default:
		return VerdictUnset
	}
}

// evaluateRange passes when the value lies within the configured bounds.
// Both bounds are inclusive; an unset bound imposes no constraint.
func evaluateRange(value float64, ref *RangeReference) Verdict {
	if ref.Minimum != nil && value < *ref.Minimum {
		return VerdictFail
	}
	if ref.Maximum != nil && value > *ref.Maximum {
		return VerdictFail
	}
	return VerdictPass
}

// evaluateSet passes when the value is a member of the configured set.
func evaluateSet(value any, ref *SetReference) Verdict {
	for _, allowed := range ref.Values {
		if setValuesEqual(value, allowed) {
			return VerdictPass
		}
	}
	return VerdictFail
}

// setValuesEqual compares a measured value against a normalized reference
// set member. Numeric members are int64, everything else is a string.
func setValuesEqual(value, allowed any) bool {
	switch v := value.(type) {
	case string:
		s, ok := allowed.(string)
		return ok && v == s
	case int:
		n, ok := toInt(allowed)
		return ok && int64(v) == n
	case int64:
		n, ok := toInt(allowed)
		return ok && v == n
	case float64:
		n, ok := toFloat(allowed)
		return ok && v == n
	default:
		return false
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func toInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
		return 0, false
	default:
		return 0, false
	}
}
