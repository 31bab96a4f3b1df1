package check

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audioqc/audioqc/internal/conf"
)

func writeToneWAV(t *testing.T, path string, amplitude float64) {
	t.Helper()

	sampleRate := 8000
	data := make([]int, sampleRate/2)
	for i := range data {
		value := amplitude * math.Sin(2.0*math.Pi*440.0*float64(i)/float64(sampleRate))
		data[i] = int(value * 32767.0)
	}

	outFile, err := os.Create(path)
	require.NoError(t, err)
	defer outFile.Close()

	enc := wav.NewEncoder(outFile, sampleRate, 16, 1, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Data:   data,
		Format: &audio.Format{SampleRate: sampleRate, NumChannels: 1},
	}))
	require.NoError(t, enc.Close())
}

func writeCheckRuleset(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ruleset.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRunCheckPassingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "tone.wav")
	writeToneWAV(t, input, 0.5) // peak -6 dB

	ruleset := writeCheckRuleset(t, `
[peak]
[peak.reference_values]
maximum = -3.0
`)
	output := filepath.Join(dir, "report.json")

	settings := &conf.Settings{
		RulesetPath: ruleset,
		OutputPath:  output,
		Inputs:      []string{input},
	}
	require.NoError(t, runCheck(settings))

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var report struct {
		BaseDirectory string `json:"base_directory"`
		Files         map[string]map[string]struct {
			Pass  string  `json:"pass"`
			Value float64 `json:"value"`
			Unit  string  `json:"unit"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, dir, report.BaseDirectory)

	peak := report.Files["tone.wav"]["peak"]
	assert.Equal(t, "true", peak.Pass)
	assert.InDelta(t, -6.02, peak.Value, 0.05)
	assert.Equal(t, "dB", peak.Unit)
}

func TestRunCheckFailingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "hot.wav")
	writeToneWAV(t, input, 0.99)

	ruleset := writeCheckRuleset(t, `
[peak]
[peak.reference_values]
maximum = -3.0
`)
	output := filepath.Join(dir, "report.json")

	settings := &conf.Settings{
		RulesetPath: ruleset,
		OutputPath:  output,
		Inputs:      []string{input},
	}
	err := runCheck(settings)
	assert.ErrorIs(t, err, ErrChecksFailed)

	// The report is written even when checks fail
	data, readErr := os.ReadFile(output)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), `"pass": "false"`)
}

func TestRunCheckBadRuleset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "tone.wav")
	writeToneWAV(t, input, 0.5)

	ruleset := writeCheckRuleset(t, `
[peak]
[peak.reference_values]
equals = [1]
`)

	settings := &conf.Settings{
		RulesetPath: ruleset,
		OutputPath:  filepath.Join(dir, "report.json"),
		Inputs:      []string{input},
	}
	err := runCheck(settings)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrChecksFailed)
}

func TestRunCheckWritesLogFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "tone.wav")
	writeToneWAV(t, input, 0.5)

	ruleset := writeCheckRuleset(t, `
[length]
`)
	logFile := filepath.Join(dir, "logs", "check.log")

	settings := &conf.Settings{
		RulesetPath: ruleset,
		OutputPath:  filepath.Join(dir, "report.json"),
		LogFile:     logFile,
		Inputs:      []string{input},
	}
	require.NoError(t, runCheck(settings))

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "loaded ruleset")
	assert.Contains(t, string(content), "report written")
}
