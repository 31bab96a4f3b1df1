package myaudio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/tphakala/flac"
)

// flacSubtype maps a FLAC bit depth to a subtype name. FLAC samples are
// always signed integers.
func flacSubtype(bitsPerSample int) (Subtype, error) {
	switch bitsPerSample {
	case 8:
		return SubtypePCMS8, nil
	case 16:
		return SubtypePCM16, nil
	case 24:
		return SubtypePCM24, nil
	case 32:
		return SubtypePCM32, nil
	default:
		return "", fmt.Errorf("unsupported FLAC bit depth: %d", bitsPerSample)
	}
}

// flacDivisor returns the normalization divisor for FLAC samples. Unlike WAV,
// 8-bit FLAC is signed, so it divides by 128.
func flacDivisor(bitsPerSample int) (float64, error) {
	if bitsPerSample == 8 {
		return 128.0, nil
	}
	return getAudioDivisor(bitsPerSample)
}

func readFLACInfo(file *os.File) (AudioInfo, error) {
	decoder, err := flac.NewDecoder(file)
	if err != nil {
		return AudioInfo{}, err
	}

	subtype, err := flacSubtype(decoder.BitsPerSample)
	if err != nil {
		return AudioInfo{}, err
	}

	return AudioInfo{
		SampleRate:   decoder.SampleRate,
		TotalSamples: int(decoder.TotalSamples),
		NumChannels:  decoder.NChannels,
		BitDepth:     decoder.BitsPerSample,
		Subtype:      subtype,
	}, nil
}

func readFLAC(file *os.File) (*SampleBuffer, error) {
	decoder, err := flac.NewDecoder(file)
	if err != nil {
		return nil, err
	}

	subtype, err := flacSubtype(decoder.BitsPerSample)
	if err != nil {
		return nil, err
	}

	numChannels := decoder.NChannels
	if numChannels < 1 {
		return nil, fmt.Errorf("invalid FLAC channel count: %d", numChannels)
	}

	divisor, err := flacDivisor(decoder.BitsPerSample)
	if err != nil {
		return nil, err
	}

	channels := make([][]float64, numChannels)
	for {
		frame, err := decoder.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		decodeFLACFrame(frame, channels, decoder.BitsPerSample, divisor)
	}

	return &SampleBuffer{Channels: channels, SampleRate: decoder.SampleRate, Subtype: subtype}, nil
}

// decodeFLACFrame appends one decoded frame of interleaved little-endian
// samples to the channel buffers. A trailing partial frame is dropped.
func decodeFLACFrame(frame []byte, channels [][]float64, bitsPerSample int, divisor float64) {
	numChannels := len(channels)
	bytesPerSample := bitsPerSample / 8
	frameStride := bytesPerSample * numChannels

	for i := 0; i+frameStride <= len(frame); i += frameStride {
		for ch := 0; ch < numChannels; ch++ {
			offset := i + ch*bytesPerSample
			var sample int32
			switch bitsPerSample {
			case 8:
				sample = int32(int8(frame[offset]))
			case 16:
				sample = int32(int16(binary.LittleEndian.Uint16(frame[offset:])))
			case 24:
				sample = int32(frame[offset]) | int32(frame[offset+1])<<8 | int32(frame[offset+2])<<16
				// sign extend from 24 bits
				sample = sample << 8 >> 8
			case 32:
				sample = int32(binary.LittleEndian.Uint32(frame[offset:]))
			}
			channels[ch] = append(channels[ch], float64(sample)/divisor)
		}
	}
}
