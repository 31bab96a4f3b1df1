package analyzer

import (
	"math"

	"github.com/audioqc/audioqc/internal/dsp"
	"github.com/audioqc/audioqc/internal/myaudio"
)

// Unit strings used in reports. Sample rate and subtype are categorical,
// loudness is reported in dB for consistency with the other level units.
const (
	unitDB       = "dB"
	unitDBTP     = "dBTP"
	unitSeconds  = "Seconds"
	unitChannels = "Channels"
	unitHertz    = "Hz"
	unitNone     = ""
)

// fileAnalysis runs analyzers against one decoded buffer. Measurements that
// feed several analyzers (peak feeds PAPR and true peak, RMS feeds PAPR) are
// computed once and cached.
type fileAnalysis struct {
	buffer *myaudio.SampleBuffer

	peak           *float64
	truePeak       *float64
	rmsByThreshold map[float64]float64
}

func newFileAnalysis(buffer *myaudio.SampleBuffer) *fileAnalysis {
	return &fileAnalysis{
		buffer:         buffer,
		rmsByThreshold: make(map[float64]float64),
	}
}

// compute runs a single analyzer and returns its raw measurement.
// All algorithms only read from the buffer.
func (fa *fileAnalysis) compute(kind Kind, settings Settings) Result {
	switch kind {
	case KindPeak:
		return Result{Value: fa.computePeak(), Unit: unitDB}
	case KindTruePeak:
		return Result{Value: fa.computeTruePeak(), Unit: unitDBTP}
	case KindPAPR:
		return Result{Value: fa.computePeak() - fa.computeRMS(DefaultThreshold), Unit: unitDB}
	case KindRMS:
		return Result{Value: fa.computeRMS(settings.Threshold), Unit: unitDB}
	case KindLUFS:
		return fa.computeLoudness()
	case KindLength:
		return Result{Value: fa.buffer.Duration(), Unit: unitSeconds}
	case KindChannelCount:
		return Result{Value: fa.buffer.NumChannels(), Unit: unitChannels}
	case KindSampleRate:
		return Result{Value: fa.buffer.SampleRate, Unit: unitHertz}
	case KindSubtype:
		return Result{Value: string(fa.buffer.Subtype), Unit: unitNone}
	case KindLeadingSilence:
		return Result{Value: fa.computeLeadingSilence(settings.Threshold), Unit: unitSeconds}
	case KindTrailingSilence:
		return Result{Value: fa.computeTrailingSilence(settings.Threshold), Unit: unitSeconds}
	case KindChannelDifference:
		return fa.computeChannelDifference()
	default:
		return Result{NotApplicable: true}
	}
}

// computePeak returns the sample peak over all channels in dB.
func (fa *fileAnalysis) computePeak() float64 {
	if fa.peak != nil {
		return *fa.peak
	}

	maxAbs := 0.0
	for _, channel := range fa.buffer.Channels {
		for _, sample := range channel {
			if abs := math.Abs(sample); abs > maxAbs {
				maxAbs = abs
			}
		}
	}

	peak := LinearToDB(maxAbs)
	fa.peak = &peak
	return peak
}

// computeTruePeak returns the inter-sample peak in dBTP, measured on a 2x
// band-limited oversampling of each channel. The sample peak is a lower
// bound for the true peak, so the larger of the two is reported.
func (fa *fileAnalysis) computeTruePeak() float64 {
	if fa.truePeak != nil {
		return *fa.truePeak
	}

	maxAbs := 0.0
	for _, channel := range fa.buffer.Channels {
		oversampled := dsp.Oversample2x(channel)
		for _, sample := range oversampled {
			if abs := math.Abs(sample); abs > maxAbs {
				maxAbs = abs
			}
		}
	}

	truePeak := math.Max(LinearToDB(maxAbs), fa.computePeak())
	fa.truePeak = &truePeak
	return truePeak
}

// computeRMS returns the gated RMS level over all channels in dB. Samples
// quieter than the threshold are excluded from the mean so digital silence
// does not bias the measurement. When everything is gated out the floor
// value is returned.
func (fa *fileAnalysis) computeRMS(threshold float64) float64 {
	if rms, ok := fa.rmsByThreshold[threshold]; ok {
		return rms
	}

	gate := DBToLinear(threshold)
	sumSquares := 0.0
	count := 0
	for _, channel := range fa.buffer.Channels {
		for _, sample := range channel {
			if math.Abs(sample) < gate {
				continue
			}
			sumSquares += sample * sample
			count++
		}
	}

	rms := DBFloor
	if count > 0 {
		rms = LinearToDB(math.Sqrt(sumSquares / float64(count)))
	}
	fa.rmsByThreshold[threshold] = rms
	return rms
}

// computeLeadingSilence returns the duration in seconds from the start of
// the buffer to the first frame whose magnitude on any channel exceeds the
// threshold. A fully silent buffer yields the whole file length.
func (fa *fileAnalysis) computeLeadingSilence(threshold float64) float64 {
	gate := DBToLinear(threshold)
	frames := fa.buffer.NumFrames()

	for i := 0; i < frames; i++ {
		if fa.frameAbove(i, gate) {
			return float64(i) / float64(fa.buffer.SampleRate)
		}
	}
	return fa.buffer.Duration()
}

// computeTrailingSilence returns the duration in seconds from the last frame
// whose magnitude on any channel exceeds the threshold to the end of the
// buffer. A fully silent buffer yields the whole file length.
func (fa *fileAnalysis) computeTrailingSilence(threshold float64) float64 {
	gate := DBToLinear(threshold)
	frames := fa.buffer.NumFrames()

	for i := frames - 1; i >= 0; i-- {
		if fa.frameAbove(i, gate) {
			return float64(frames-1-i) / float64(fa.buffer.SampleRate)
		}
	}
	return fa.buffer.Duration()
}

// frameAbove reports whether any channel exceeds the linear gate at frame i.
func (fa *fileAnalysis) frameAbove(i int, gate float64) bool {
	for _, channel := range fa.buffer.Channels {
		if math.Abs(channel[i]) > gate {
			return true
		}
	}
	return false
}

// computeChannelDifference returns the worst instantaneous divergence
// between any two channels in dB. Mono input is not applicable. Identical
// channels yield the floor value.
func (fa *fileAnalysis) computeChannelDifference() Result {
	if fa.buffer.NumChannels() < 2 {
		return Result{Unit: unitDB, NotApplicable: true}
	}

	maxSpread := 0.0
	frames := fa.buffer.NumFrames()
	for i := 0; i < frames; i++ {
		lowest := fa.buffer.Channels[0][i]
		highest := lowest
		for ch := 1; ch < fa.buffer.NumChannels(); ch++ {
			sample := fa.buffer.Channels[ch][i]
			if sample < lowest {
				lowest = sample
			}
			if sample > highest {
				highest = sample
			}
		}
		if spread := highest - lowest; spread > maxSpread {
			maxSpread = spread
		}
	}

	return Result{Value: LinearToDB(maxSpread), Unit: unitDB}
}
