package myaudio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/audioqc/audioqc/internal/errors"
)

// AudioInfo holds the format attributes of an audio file.
type AudioInfo struct {
	SampleRate   int
	TotalSamples int
	NumChannels  int
	BitDepth     int
	Subtype      Subtype
}

// ErrUnsupportedFormat is returned when a file is neither WAV nor FLAC.
var ErrUnsupportedFormat = errors.NewStd("unsupported audio format")

var (
	riffMagic = []byte("RIFF")
	waveMagic = []byte("WAVE")
	flacMagic = []byte("fLaC")
)

// SniffFormat inspects the first bytes of a file and returns "wav", "flac" or
// an empty string when the content is neither. Extension is not trusted.
func SniffFormat(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	header := make([]byte, 12)
	n, err := file.Read(header)
	if err != nil || n < 12 {
		return "", nil
	}

	switch {
	case bytes.Equal(header[0:4], riffMagic) && bytes.Equal(header[8:12], waveMagic):
		return "wav", nil
	case bytes.Equal(header[0:4], flacMagic):
		return "flac", nil
	default:
		return "", nil
	}
}

// IsAudioFile reports whether the file content is a supported audio format.
func IsAudioFile(path string) bool {
	format, err := SniffFormat(path)
	return err == nil && format != ""
}

// HasAudioExtension reports whether the file name carries a supported audio
// extension. Used to pre-filter directory walks before content sniffing.
func HasAudioExtension(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".flac":
		return true
	default:
		return false
	}
}

// ReadAudioFile decodes an entire audio file into a planar sample buffer.
// The format is determined from the file content, not the extension.
func ReadAudioFile(path string) (*SampleBuffer, error) {
	format, err := SniffFormat(path)
	if err != nil {
		return nil, errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			FileContext(path, -1).
			Build()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			FileContext(path, -1).
			Build()
	}
	defer file.Close()

	var buffer *SampleBuffer
	switch format {
	case "wav":
		buffer, err = readWAV(file)
	case "flac":
		buffer, err = readFLAC(file)
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		return nil, errors.New(err).
			Component("myaudio").
			Category(errors.CategoryAudioDecode).
			FileContext(path, -1).
			Build()
	}

	if !IsAllowedSubtype(buffer.Subtype) {
		return nil, errors.Newf("subtype %s is not allowed", buffer.Subtype).
			Component("myaudio").
			Category(errors.CategoryAudioDecode).
			Context("subtype", string(buffer.Subtype)).
			FileContext(path, -1).
			Build()
	}

	if err := buffer.Validate(); err != nil {
		return nil, err
	}

	return buffer, nil
}

// ReadAudioInfo returns the format attributes of an audio file without
// decoding the sample data.
func ReadAudioInfo(path string) (AudioInfo, error) {
	format, err := SniffFormat(path)
	if err != nil {
		return AudioInfo{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return AudioInfo{}, err
	}
	defer file.Close()

	switch format {
	case "wav":
		return readWAVInfo(file)
	case "flac":
		return readFLACInfo(file)
	default:
		return AudioInfo{}, ErrUnsupportedFormat
	}
}
