// Package report accumulates per-file analyzer results into the final JSON
// report document.
package report

import (
	"bytes"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/audioqc/audioqc/internal/analyzer"
	"github.com/audioqc/audioqc/internal/errors"
)

// FileResult pairs a file path, relative to the report base directory, with
// its analyzer results. A nil Results marks a file that failed to decode.
type FileResult struct {
	Path    string
	Results *analyzer.Results

	// DecodeError records why the file was skipped, for logging only; the
	// report itself carries an empty result object for such files.
	DecodeError error
}

// Report aggregates results for the whole run. Files are kept in insertion
// order so identical inputs always serialize identically. Add may be called
// from multiple goroutines.
type Report struct {
	mu            sync.Mutex
	baseDirectory string
	order         []string
	files         map[string]*FileResult
	generatedAt   time.Time
}

// New creates an empty report for the given base directory.
func New(baseDirectory string) *Report {
	return &Report{
		baseDirectory: baseDirectory,
		files:         make(map[string]*FileResult),
	}
}

// Add appends one file's results. Re-adding a path overwrites the earlier
// entry but keeps its original position.
func (r *Report) Add(result *FileResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.files[result.Path]; !exists {
		r.order = append(r.order, result.Path)
	}
	r.files[result.Path] = result
}

// Len returns the number of files recorded so far.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.files)
}

// BaseDirectory returns the resolved base input directory.
func (r *Report) BaseDirectory() string {
	return r.baseDirectory
}

// HasFailure reports whether any analyzer on any file failed its reference
// check.
func (r *Report) HasFailure() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, file := range r.files {
		if file.Results != nil && file.Results.HasFailure() {
			return true
		}
	}
	return false
}

// Finalize stamps the report with its generation time. Subsequent Add calls
// are still permitted but unusual.
func (r *Report) Finalize() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generatedAt = time.Now()
}

// MarshalJSON renders the report document: generation timestamp with offset,
// base directory, and the per-file results in insertion order.
func (r *Report) MarshalJSON() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	generatedAt := r.generatedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	var buf bytes.Buffer
	buf.WriteString(`{"date":`)
	date, err := json.Marshal(generatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	buf.Write(date)

	buf.WriteString(`,"base_directory":`)
	base, err := json.Marshal(r.baseDirectory)
	if err != nil {
		return nil, err
	}
	buf.Write(base)

	buf.WriteString(`,"files":{`)
	for i, path := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(path)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		file := r.files[path]
		if file.Results == nil {
			buf.WriteString(`{}`)
			continue
		}
		results, err := json.Marshal(file.Results)
		if err != nil {
			return nil, err
		}
		buf.Write(results)
	}
	buf.WriteString(`}}`)

	return buf.Bytes(), nil
}

// WriteFile serializes the report as indented JSON to the given path.
func (r *Report) WriteFile(path string) error {
	data, err := json.Marshal(r)
	if err != nil {
		return errors.New(err).
			Component("report").
			Category(errors.CategoryReportOutput).
			Context("output_path", path).
			Build()
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, data, "", "    "); err != nil {
		return errors.New(err).
			Component("report").
			Category(errors.CategoryReportOutput).
			Build()
	}
	indented.WriteByte('\n')

	if err := os.WriteFile(path, indented.Bytes(), 0o644); err != nil {
		return errors.New(err).
			Component("report").
			Category(errors.CategoryReportOutput).
			Context("output_path", path).
			Build()
	}
	return nil
}
