package myaudio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlacSubtype(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bitsPerSample int
		expected      Subtype
	}{
		{8, SubtypePCMS8},
		{16, SubtypePCM16},
		{24, SubtypePCM24},
		{32, SubtypePCM32},
	}
	for _, tt := range tests {
		subtype, err := flacSubtype(tt.bitsPerSample)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, subtype)
	}

	_, err := flacSubtype(12)
	assert.Error(t, err)
}

func TestFlacDivisor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bitsPerSample int
		expected      float64
	}{
		{8, 128.0},
		{16, 32768.0},
		{24, 8388608.0},
		{32, 2147483648.0},
	}
	for _, tt := range tests {
		divisor, err := flacDivisor(tt.bitsPerSample)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, divisor)
	}

	_, err := flacDivisor(12)
	assert.Error(t, err)
}

func TestDecodeFLACFrame16BitStereo(t *testing.T) {
	t.Parallel()

	// L=16384, R=-16384 then L=-32768, R=32767
	frame := []byte{
		0x00, 0x40, 0x00, 0xC0,
		0x00, 0x80, 0xFF, 0x7F,
	}
	channels := make([][]float64, 2)
	decodeFLACFrame(frame, channels, 16, 32768.0)

	require.Len(t, channels[0], 2)
	require.Len(t, channels[1], 2)
	assert.InDelta(t, 0.5, channels[0][0], 1e-12)
	assert.InDelta(t, -0.5, channels[1][0], 1e-12)
	assert.InDelta(t, -1.0, channels[0][1], 1e-12)
	assert.InDelta(t, 32767.0/32768.0, channels[1][1], 1e-12)
}

func TestDecodeFLACFrame24BitSignExtension(t *testing.T) {
	t.Parallel()

	// 0x7FFFFF is full-scale positive, 0x800000 is full-scale negative and
	// 0xFFFFFF is -1; the top byte must be sign extended, not zero filled.
	frame := []byte{
		0xFF, 0xFF, 0x7F,
		0x00, 0x00, 0x80,
		0xFF, 0xFF, 0xFF,
	}
	channels := make([][]float64, 1)
	decodeFLACFrame(frame, channels, 24, 8388608.0)

	require.Len(t, channels[0], 3)
	assert.InDelta(t, 8388607.0/8388608.0, channels[0][0], 1e-12)
	assert.InDelta(t, -1.0, channels[0][1], 1e-12)
	assert.InDelta(t, -1.0/8388608.0, channels[0][2], 1e-15)
	assert.Negative(t, channels[0][1])
	assert.Negative(t, channels[0][2])
}

func TestDecodeFLACFrame8BitSigned(t *testing.T) {
	t.Parallel()

	frame := []byte{0x80, 0x7F, 0x00, 0xC0}
	channels := make([][]float64, 1)
	decodeFLACFrame(frame, channels, 8, 128.0)

	require.Len(t, channels[0], 4)
	assert.InDelta(t, -1.0, channels[0][0], 1e-12)
	assert.InDelta(t, 127.0/128.0, channels[0][1], 1e-12)
	assert.InDelta(t, 0.0, channels[0][2], 1e-12)
	assert.InDelta(t, -0.5, channels[0][3], 1e-12)
}

func TestDecodeFLACFrame32Bit(t *testing.T) {
	t.Parallel()

	frame := []byte{
		0x00, 0x00, 0x00, 0x40, // 2^30
		0x00, 0x00, 0x00, 0x80, // -2^31
	}
	channels := make([][]float64, 1)
	decodeFLACFrame(frame, channels, 32, 2147483648.0)

	require.Len(t, channels[0], 2)
	assert.InDelta(t, 0.5, channels[0][0], 1e-12)
	assert.InDelta(t, -1.0, channels[0][1], 1e-12)
}

func TestDecodeFLACFrameDropsPartialFrame(t *testing.T) {
	t.Parallel()

	// 5 bytes of 16-bit stereo data: one full frame plus one dangling byte
	frame := []byte{0x00, 0x40, 0x00, 0x40, 0x12}
	channels := make([][]float64, 2)
	decodeFLACFrame(frame, channels, 16, 32768.0)

	assert.Len(t, channels[0], 1)
	assert.Len(t, channels[1], 1)
}

func TestDecodeFLACFrameAccumulatesAcrossCalls(t *testing.T) {
	t.Parallel()

	channels := make([][]float64, 1)
	decodeFLACFrame([]byte{0x00, 0x40}, channels, 16, 32768.0)
	decodeFLACFrame([]byte{0x00, 0xC0}, channels, 16, 32768.0)

	require.Len(t, channels[0], 2)
	assert.InDelta(t, 0.5, channels[0][0], 1e-12)
	assert.InDelta(t, -0.5, channels[0][1], 1e-12)
}
