package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audioqc/audioqc/internal/analyzer"
)

func writeRuleset(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadRuleSet(t *testing.T) {
	t.Parallel()

	path := writeRuleset(t, `
[peak]
[peak.reference_values]
maximum = -3.0

[rms]
[rms.settings]
threshold = -60.0
[rms.reference_values]
minimum = -30.0
maximum = -10.0

[length]

[sample_rate]
[sample_rate.reference_values]
equals = [44100, 48000]

[subtype]
[subtype.reference_values]
equals = "PCM_16"
`)

	rules, err := LoadRuleSet(path)
	require.NoError(t, err)
	assert.Equal(t, 5, rules.Len())

	peak := rules.Rule(analyzer.KindPeak)
	require.NotNil(t, peak)
	require.NotNil(t, peak.Reference)
	require.NotNil(t, peak.Reference.Range)
	assert.Nil(t, peak.Reference.Range.Minimum)
	require.NotNil(t, peak.Reference.Range.Maximum)
	assert.InDelta(t, -3.0, *peak.Reference.Range.Maximum, 1e-12)

	rms := rules.Rule(analyzer.KindRMS)
	require.NotNil(t, rms)
	assert.InDelta(t, -60.0, rms.Settings.Threshold, 1e-12)

	// Enabled without settings or references
	length := rules.Rule(analyzer.KindLength)
	require.NotNil(t, length)
	assert.Nil(t, length.Reference)
	assert.InDelta(t, analyzer.DefaultThreshold, length.Settings.Threshold, 1e-12)

	sampleRate := rules.Rule(analyzer.KindSampleRate)
	require.NotNil(t, sampleRate)
	require.NotNil(t, sampleRate.Reference.Set)
	assert.Equal(t, []any{int64(44100), int64(48000)}, sampleRate.Reference.Set.Values)

	// Single literal is treated as a one-element set
	subtype := rules.Rule(analyzer.KindSubtype)
	require.NotNil(t, subtype)
	require.NotNil(t, subtype.Reference.Set)
	assert.Equal(t, []any{"PCM_16"}, subtype.Reference.Set.Values)

	// Analyzers without a section stay disabled
	assert.Nil(t, rules.Rule(analyzer.KindLUFS))
}

func TestLoadRuleSetEmptyReferenceValues(t *testing.T) {
	t.Parallel()

	// An empty reference_values table enables the analyzer without checks,
	// the same as omitting the table altogether.
	path := writeRuleset(t, `
[peak]
[peak.reference_values]
`)

	rules, err := LoadRuleSet(path)
	require.NoError(t, err)

	peak := rules.Rule(analyzer.KindPeak)
	require.NotNil(t, peak)
	assert.Nil(t, peak.Reference)
}

func TestLoadRuleSetEnabledOrderIsCanonical(t *testing.T) {
	t.Parallel()

	// Section order in the file does not matter
	path := writeRuleset(t, `
[length]
[rms]
[peak]
`)

	rules, err := LoadRuleSet(path)
	require.NoError(t, err)
	assert.Equal(t,
		[]analyzer.Kind{analyzer.KindPeak, analyzer.KindRMS, analyzer.KindLength},
		rules.Enabled())
}

func TestLoadRuleSetErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		contents string
		wantErr  string
	}{
		{
			name: "unknown_analyzer",
			contents: `
[loudness_range]
[loudness_range.reference_values]
maximum = 10.0
`,
			wantErr: "unknown analyzer",
		},
		{
			name: "equals_on_numeric_analyzer",
			contents: `
[peak]
[peak.reference_values]
equals = [-3]
`,
			wantErr: "minimum/maximum-shaped",
		},
		{
			name: "range_on_categorical_analyzer",
			contents: `
[channel_count]
[channel_count.reference_values]
minimum = 1.0
`,
			wantErr: "equals-shaped",
		},
		{
			name: "unknown_setting",
			contents: `
[rms]
[rms.settings]
window = 0.3
`,
			wantErr: "unknown setting",
		},
		{
			name: "unknown_reference_key",
			contents: `
[peak]
[peak.reference_values]
target = -14.0
`,
			wantErr: "unknown reference value",
		},
		{
			name: "non_numeric_bound",
			contents: `
[peak]
[peak.reference_values]
maximum = "loud"
`,
			wantErr: "must be a number",
		},
		{
			name: "fractional_equals_member",
			contents: `
[sample_rate]
[sample_rate.reference_values]
equals = 44100.5
`,
			wantErr: "not an integer or string",
		},
		{
			name:     "not_toml",
			contents: `{"peak": {}}`,
			wantErr:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeRuleset(t, tt.contents)
			_, err := LoadRuleSet(path)
			require.Error(t, err)
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadRuleSetMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadRuleSet(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
