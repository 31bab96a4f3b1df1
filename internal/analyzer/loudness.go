package analyzer

import (
	"math"

	"github.com/audioqc/audioqc/internal/dsp"
)

// Integrated loudness parameters per ITU-R BS.1770-4.
const (
	loudnessOffset       = -0.691
	loudnessBlockSeconds = 0.400
	loudnessBlockOverlap = 0.75
	loudnessAbsoluteGate = -70.0 // LUFS
	loudnessRelativeGate = -10.0 // LU below ungated mean

	// Buffers shorter than this skip block gating and measure the whole
	// signal in one window. This deviates from the standard, which is not
	// defined for such short material.
	loudnessShortFileSeconds = 4.0

	// Below this duration a loudness figure is meaningless; the analyzer
	// reports not-applicable instead.
	loudnessMinimumSeconds = 0.2
)

// computeLoudness measures integrated loudness. Only mono and stereo are
// supported; both use unity channel weights. Material of at least 4 seconds
// goes through the gated block integration of BS.1770-4, shorter material
// falls back to a single ungated window over the whole buffer.
func (fa *fileAnalysis) computeLoudness() Result {
	buffer := fa.buffer
	if buffer.NumChannels() > 2 {
		return Result{Unit: unitDB, NotApplicable: true}
	}
	if buffer.Duration() < loudnessMinimumSeconds {
		return Result{Unit: unitDB, NotApplicable: true}
	}

	// K-weight each channel into scratch buffers; the decoded buffer is
	// never written to.
	weighted := make([][]float64, buffer.NumChannels())
	for ch, channel := range buffer.Channels {
		filters, err := dsp.KWeighting(float64(buffer.SampleRate))
		if err != nil {
			return Result{Unit: unitDB, NotApplicable: true}
		}
		scratch := make([]float64, len(channel))
		copy(scratch, channel)
		for _, filter := range filters {
			filter.Process(scratch, scratch)
		}
		weighted[ch] = scratch
	}

	var loudness float64
	if buffer.Duration() < loudnessShortFileSeconds {
		loudness = shortWindowLoudness(weighted)
	} else {
		loudness = gatedLoudness(weighted, buffer.SampleRate)
	}

	return Result{Value: loudness, Unit: unitDB}
}

// shortWindowLoudness computes loudness over the whole signal in one
// ungated window.
func shortWindowLoudness(weighted [][]float64) float64 {
	meanSquare := 0.0
	for _, channel := range weighted {
		meanSquare += meanOfSquares(channel)
	}
	return loudnessFromMeanSquare(meanSquare)
}

// gatedLoudness computes the gated integrated loudness of BS.1770-4:
// 400 ms blocks with 75 % overlap, an absolute gate at -70 LUFS and a
// relative gate 10 LU below the mean of the absolutely gated blocks.
func gatedLoudness(weighted [][]float64, sampleRate int) float64 {
	blockSize := int(loudnessBlockSeconds * float64(sampleRate))
	hop := int(loudnessBlockSeconds * (1.0 - loudnessBlockOverlap) * float64(sampleRate))
	if blockSize < 1 || hop < 1 {
		return shortWindowLoudness(weighted)
	}

	frames := len(weighted[0])
	var blockPowers []float64
	for start := 0; start+blockSize <= frames; start += hop {
		power := 0.0
		for _, channel := range weighted {
			power += meanOfSquares(channel[start : start+blockSize])
		}
		blockPowers = append(blockPowers, power)
	}
	if len(blockPowers) == 0 {
		return shortWindowLoudness(weighted)
	}

	// Absolute gate
	absoluteGated := blockPowers[:0:0]
	for _, power := range blockPowers {
		if loudnessFromMeanSquare(power) > loudnessAbsoluteGate {
			absoluteGated = append(absoluteGated, power)
		}
	}
	if len(absoluteGated) == 0 {
		return DBFloor
	}

	// Relative gate, 10 LU below the mean of the surviving blocks
	relativeThreshold := loudnessFromMeanSquare(mean(absoluteGated)) + loudnessRelativeGate
	sum := 0.0
	count := 0
	for _, power := range absoluteGated {
		if loudnessFromMeanSquare(power) > relativeThreshold {
			sum += power
			count++
		}
	}
	if count == 0 {
		return DBFloor
	}

	return loudnessFromMeanSquare(sum / float64(count))
}

// loudnessFromMeanSquare converts a channel-weighted mean square to LUFS.
func loudnessFromMeanSquare(meanSquare float64) float64 {
	if meanSquare <= 0 {
		return DBFloor
	}
	loudness := loudnessOffset + 10.0*math.Log10(meanSquare)
	if loudness < DBFloor {
		return DBFloor
	}
	return loudness
}

func meanOfSquares(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, sample := range samples {
		sum += sample * sample
	}
	return sum / float64(len(samples))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, value := range values {
		sum += value
	}
	return sum / float64(len(values))
}
