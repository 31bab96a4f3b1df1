// Package analysis runs the batch evaluation: file discovery, per-file
// decoding and analyzer evaluation, and report accumulation.
package analysis

import (
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/audioqc/audioqc/internal/analyzer"
	"github.com/audioqc/audioqc/internal/conf"
	"github.com/audioqc/audioqc/internal/logging"
	"github.com/audioqc/audioqc/internal/myaudio"
	"github.com/audioqc/audioqc/internal/report"
)

// RunBatch analyzes every input file against the ruleset and returns the
// assembled report. Per-file decode failures are recorded and logged, not
// fatal; only discovery problems abort the run.
func RunBatch(settings *conf.Settings, rules *analyzer.RuleSet) (*report.Report, error) {
	logger := logging.ForService("analysis")

	files, err := CollectInputFiles(settings.Inputs)
	if err != nil {
		return nil, err
	}

	baseDirectory := CommonBaseDirectory(files)
	logger.Info("starting batch analysis",
		"files", len(files),
		"analyzers", rules.Len(),
		"base_directory", baseDirectory)

	result := report.New(baseDirectory)

	// Reserve report slots in discovery order before the workers start, so
	// completion order cannot reorder the output.
	relative := make([]string, len(files))
	for i, file := range files {
		rel, err := filepath.Rel(baseDirectory, file)
		if err != nil {
			rel = file
		}
		relative[i] = rel
		result.Add(&report.FileResult{Path: rel})
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := min(runtime.GOMAXPROCS(0), len(files))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				result.Add(analyzeFile(files[i], relative[i], rules))
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	result.Finalize()
	return result, nil
}

// analyzeFile decodes one file and evaluates every enabled analyzer against
// it. All analyzers read the same immutable buffer, so the file is decoded
// exactly once.
func analyzeFile(path, relativePath string, rules *analyzer.RuleSet) *report.FileResult {
	logger := logging.ForService("analysis")
	start := time.Now()

	buffer, err := myaudio.ReadAudioFile(path)
	if err != nil {
		logger.Warn("skipping file that failed to decode",
			"path", relativePath,
			"error", err)
		return &report.FileResult{Path: relativePath, DecodeError: err}
	}

	results := analyzer.Evaluate(buffer, rules)

	logger.Debug("analyzed file",
		"path", relativePath,
		"channels", buffer.NumChannels(),
		"sample_rate", buffer.SampleRate,
		"duration_seconds", buffer.Duration(),
		"elapsed", time.Since(start))

	return &report.FileResult{Path: relativePath, Results: results}
}
