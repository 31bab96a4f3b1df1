// Package dsp provides the digital filters and interpolators used by the
// analyzers. Filter coefficients follow Robert Bristow-Johnson's audio EQ
// cookbook.
package dsp

import (
	"fmt"
	"math"
)

// FilterName identifies the kind of digital filter.
type FilterName int

const (
	Undefined FilterName = iota
	HighPass
	HighShelf
)

// Filter holds second order IIR filter parameters and state.
type Filter struct {
	name FilterName

	// state variables
	in1  float64
	in2  float64
	out1 float64
	out2 float64

	// normalized coefficients
	b0a0, b1a0, b2a0, a1a0, a2a0 float64
}

// NewFilter creates a new Filter from raw biquad coefficients.
func NewFilter(name FilterName, a0, a1, a2, b0, b1, b2 float64) *Filter {
	return &Filter{
		name: name,
		b0a0: b0 / a0,
		b1a0: b1 / a0,
		b2a0: b2 / a0,
		a1a0: a1 / a0,
		a2a0: a2 / a0,
	}
}

// Reset clears the filter state.
func (f *Filter) Reset() {
	f.in1, f.in2, f.out1, f.out2 = 0, 0, 0, 0
}

// Process filters src into dst. dst and src may be the same slice; the
// analyzers pass a scratch copy so the decoded buffer stays untouched.
func (f *Filter) Process(dst, src []float64) {
	for i := range src {
		output := f.b0a0*src[i] + f.b1a0*f.in1 + f.b2a0*f.in2 -
			f.a1a0*f.out1 - f.a2a0*f.out2

		f.in2 = f.in1
		f.in1 = src[i]
		f.out2 = f.out1
		f.out1 = output

		dst[i] = output
	}
}

// NewHighPass returns a high-pass filter.
//
// Parameters:
//
//   - sampleRate ... sample rate in Hz. e.g. 44100.0
//   - frequency ... cut off frequency in Hz.
//   - q ... Q value, must be greater than 0.
func NewHighPass(sampleRate, frequency, q float64) (*Filter, error) {
	if q <= 0 {
		return nil, fmt.Errorf("q must be greater than 0")
	}

	w0 := 2.0 * math.Pi * frequency / sampleRate
	alpha := math.Sin(w0) / (2.0 * q)
	cosw0 := math.Cos(w0)

	return NewFilter(
		HighPass,
		1.0+alpha,
		-2.0*cosw0,
		1.0-alpha,
		(1.0+cosw0)/2.0,
		-(1.0 + cosw0),
		(1.0+cosw0)/2.0,
	), nil
}

// NewHighShelf returns a high-shelf filter.
//
// Parameters:
//
//   - sampleRate ... sample rate in Hz. e.g. 44100.0
//   - frequency ... shelf midpoint frequency in Hz.
//   - q ... Q value, must be greater than 0.
//   - gainDB ... shelf gain in dB.
func NewHighShelf(sampleRate, frequency, q, gainDB float64) (*Filter, error) {
	if q <= 0 {
		return nil, fmt.Errorf("q must be greater than 0")
	}

	a := math.Pow(10.0, gainDB/40.0)
	w0 := 2.0 * math.Pi * frequency / sampleRate
	alpha := math.Sin(w0) / (2.0 * q)
	cosw0 := math.Cos(w0)
	sqrtA := math.Sqrt(a)

	return NewFilter(
		HighShelf,
		(a+1.0)-(a-1.0)*cosw0+2.0*sqrtA*alpha,
		2.0*((a-1.0)-(a+1.0)*cosw0),
		(a+1.0)-(a-1.0)*cosw0-2.0*sqrtA*alpha,
		a*((a+1.0)+(a-1.0)*cosw0+2.0*sqrtA*alpha),
		-2.0*a*((a-1.0)+(a+1.0)*cosw0),
		a*((a+1.0)+(a-1.0)*cosw0-2.0*sqrtA*alpha),
	), nil
}

// K-weighting parameters per ITU-R BS.1770. The parametric definitions
// reproduce the tabulated 48 kHz coefficients and generalize to any rate.
const (
	kShelfFrequency = 1681.9744509555319
	kShelfGainDB    = 3.99984385397
	kShelfQ         = 0.7071752369554193
	kHighPassFreq   = 38.13547087613982
	kHighPassQ      = 0.5003270373253953
)

// KWeighting returns the two-stage K-weighting pre-filter chain for loudness
// measurement: a high-frequency shelf followed by a high-pass.
func KWeighting(sampleRate float64) ([]*Filter, error) {
	shelf, err := NewHighShelf(sampleRate, kShelfFrequency, kShelfQ, kShelfGainDB)
	if err != nil {
		return nil, err
	}
	highPass, err := NewHighPass(sampleRate, kHighPassFreq, kHighPassQ)
	if err != nil {
		return nil, err
	}
	return []*Filter{shelf, highPass}, nil
}
