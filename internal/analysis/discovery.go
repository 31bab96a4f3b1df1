package analysis

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/audioqc/audioqc/internal/errors"
	"github.com/audioqc/audioqc/internal/logging"
	"github.com/audioqc/audioqc/internal/myaudio"
)

// ErrNoInputFiles is returned when discovery finds nothing to analyze.
var ErrNoInputFiles = errors.NewStd("no valid input files provided")

// CollectInputFiles expands the input arguments into a deduplicated list of
// audio files in discovery order. Files are accepted by content, not
// extension; directories are walked recursively.
func CollectInputFiles(inputs []string) ([]string, error) {
	logger := logging.ForService("analysis")

	var files []string
	seen := make(map[string]bool)

	add := func(path string) error {
		resolved, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if !seen[resolved] {
			seen[resolved] = true
			files = append(files, resolved)
		}
		return nil
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, errors.New(err).
				Component("analysis").
				Category(errors.CategoryFileIO).
				Context("input", input).
				Build()
		}

		switch {
		case info.Mode().IsRegular():
			if myaudio.IsAudioFile(input) {
				if err := add(input); err != nil {
					return nil, err
				}
			} else {
				logger.Warn("skipping non-audio input file", "path", input)
			}
		case info.IsDir():
			err := filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() || !myaudio.HasAudioExtension(path) {
					return nil
				}
				if !myaudio.IsAudioFile(path) {
					logger.Warn("skipping file with audio extension but foreign content", "path", path)
					return nil
				}
				return add(path)
			})
			if err != nil {
				return nil, errors.New(err).
					Component("analysis").
					Category(errors.CategoryFileIO).
					Context("input", input).
					Build()
			}
		default:
			logger.Warn("skipping input that is neither file nor directory", "path", input)
		}
	}

	if len(files) == 0 {
		return nil, ErrNoInputFiles
	}
	return files, nil
}

// CommonBaseDirectory resolves the report base directory: the parent of a
// single file, or the longest common ancestor of several.
func CommonBaseDirectory(files []string) string {
	if len(files) == 0 {
		return ""
	}
	if len(files) == 1 {
		return filepath.Dir(files[0])
	}

	common := strings.Split(filepath.Dir(files[0]), string(filepath.Separator))
	for _, file := range files[1:] {
		parts := strings.Split(filepath.Dir(file), string(filepath.Separator))
		if len(parts) < len(common) {
			common = common[:len(parts)]
		}
		for i := range common {
			if common[i] != parts[i] {
				common = common[:i]
				break
			}
		}
	}

	base := strings.Join(common, string(filepath.Separator))
	if base == "" {
		base = string(filepath.Separator)
	}
	return base
}
