// Package myaudio provides audio file decoding into sample buffers for analysis.
package myaudio

import (
	"github.com/audioqc/audioqc/internal/errors"
)

// Subtype identifies the sample encoding of the decoded audio data.
// The names follow the libsndfile subtype convention.
type Subtype string

const (
	SubtypePCMS8  Subtype = "PCM_S8"
	SubtypePCM16  Subtype = "PCM_16"
	SubtypePCM24  Subtype = "PCM_24"
	SubtypePCM32  Subtype = "PCM_32"
	SubtypePCMU8  Subtype = "PCM_U8"
	SubtypeFloat  Subtype = "FLOAT"
	SubtypeDouble Subtype = "DOUBLE"
)

// AllowedSubtypes lists the sample encodings the analyzers accept.
var AllowedSubtypes = []Subtype{
	SubtypePCMS8, SubtypePCM16, SubtypePCM24, SubtypePCM32,
	SubtypePCMU8, SubtypeFloat, SubtypeDouble,
}

// IsAllowedSubtype reports whether s is one of the supported sample encodings.
func IsAllowedSubtype(s Subtype) bool {
	for _, allowed := range AllowedSubtypes {
		if s == allowed {
			return true
		}
	}
	return false
}

// SampleBuffer holds fully decoded audio in planar float64 form.
// Channels are stored separately and all channels have equal length.
// A buffer is immutable once decoded; analyzers only read from it.
type SampleBuffer struct {
	Channels   [][]float64
	SampleRate int
	Subtype    Subtype
}

// NumChannels returns the channel count of the buffer.
func (b *SampleBuffer) NumChannels() int {
	return len(b.Channels)
}

// NumFrames returns the per-channel sample count.
func (b *SampleBuffer) NumFrames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration returns the buffer length in seconds.
func (b *SampleBuffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.NumFrames()) / float64(b.SampleRate)
}

// Frame returns the samples of all channels at frame index i.
// The returned slice is freshly allocated.
func (b *SampleBuffer) Frame(i int) []float64 {
	frame := make([]float64, len(b.Channels))
	for ch := range b.Channels {
		frame[ch] = b.Channels[ch][i]
	}
	return frame
}

// Validate checks the buffer invariants: at least one channel, equal channel
// lengths, at least one frame and a positive sample rate.
func (b *SampleBuffer) Validate() error {
	if len(b.Channels) == 0 {
		return errors.Newf("sample buffer has no channels").
			Component("myaudio").
			Category(errors.CategoryValidation).
			Build()
	}
	if b.SampleRate <= 0 {
		return errors.Newf("sample buffer has invalid sample rate %d", b.SampleRate).
			Component("myaudio").
			Category(errors.CategoryValidation).
			Context("sample_rate", b.SampleRate).
			Build()
	}
	frames := len(b.Channels[0])
	if frames == 0 {
		return errors.Newf("sample buffer is empty").
			Component("myaudio").
			Category(errors.CategoryValidation).
			Build()
	}
	for ch := 1; ch < len(b.Channels); ch++ {
		if len(b.Channels[ch]) != frames {
			return errors.Newf("channel %d has %d frames, expected %d", ch, len(b.Channels[ch]), frames).
				Component("myaudio").
				Category(errors.CategoryValidation).
				Context("channel", ch).
				Build()
		}
	}
	return nil
}
