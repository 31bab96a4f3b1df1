package myaudio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM       = 1
	wavFormatIEEEFloat = 3
)

// wavSubtype maps a WAV audio format tag and bit depth to a subtype name.
func wavSubtype(audioFormat, bitDepth int) (Subtype, error) {
	switch audioFormat {
	case wavFormatPCM:
		switch bitDepth {
		case 8:
			// 8-bit WAV is unsigned by convention
			return SubtypePCMU8, nil
		case 16:
			return SubtypePCM16, nil
		case 24:
			return SubtypePCM24, nil
		case 32:
			return SubtypePCM32, nil
		}
	case wavFormatIEEEFloat:
		switch bitDepth {
		case 32:
			return SubtypeFloat, nil
		case 64:
			return SubtypeDouble, nil
		}
	}
	return "", fmt.Errorf("unsupported WAV format %d with bit depth %d", audioFormat, bitDepth)
}

// getAudioDivisor returns the normalization divisor for signed PCM samples.
func getAudioDivisor(bitDepth int) (float64, error) {
	switch bitDepth {
	case 16:
		return 32768.0, nil
	case 24:
		return 8388608.0, nil
	case 32:
		return 2147483648.0, nil
	default:
		return 0, fmt.Errorf("unsupported audio file bit depth: %d", bitDepth)
	}
}

func readWAVInfo(file *os.File) (AudioInfo, error) {
	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()

	if !decoder.IsValidFile() {
		return AudioInfo{}, fmt.Errorf("invalid WAV file format")
	}

	subtype, err := wavSubtype(int(decoder.WavAudioFormat), int(decoder.BitDepth))
	if err != nil {
		return AudioInfo{}, err
	}

	dataSize, err := findWAVDataChunk(file)
	if err != nil {
		return AudioInfo{}, err
	}
	bytesPerSample := int(decoder.BitDepth / 8)
	totalSamples := int(dataSize) / bytesPerSample / int(decoder.NumChans)

	return AudioInfo{
		SampleRate:   int(decoder.SampleRate),
		TotalSamples: totalSamples,
		NumChannels:  int(decoder.NumChans),
		BitDepth:     int(decoder.BitDepth),
		Subtype:      subtype,
	}, nil
}

func readWAV(file *os.File) (*SampleBuffer, error) {
	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("input is not a valid WAV audio file")
	}

	subtype, err := wavSubtype(int(decoder.WavAudioFormat), int(decoder.BitDepth))
	if err != nil {
		return nil, err
	}

	numChannels := int(decoder.NumChans)
	sampleRate := int(decoder.SampleRate)
	if numChannels < 1 {
		return nil, fmt.Errorf("invalid WAV channel count: %d", numChannels)
	}

	if decoder.WavAudioFormat == wavFormatIEEEFloat {
		// go-audio decodes integer PCM only, float data is read directly
		channels, err := readWAVFloatData(file, numChannels, int(decoder.BitDepth))
		if err != nil {
			return nil, err
		}
		return &SampleBuffer{Channels: channels, SampleRate: sampleRate, Subtype: subtype}, nil
	}

	divisor := 128.0 // 8-bit unsigned, offset applied below
	if decoder.BitDepth != 8 {
		divisor, err = getAudioDivisor(int(decoder.BitDepth))
		if err != nil {
			return nil, err
		}
	}

	channels := make([][]float64, numChannels)
	buf := &audio.IntBuffer{
		Data:   make([]int, 8192*numChannels),
		Format: &audio.Format{SampleRate: sampleRate, NumChannels: numChannels},
	}

	// Deinterleave round-robin so a short read cannot shift channels
	channel := 0
	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}

		for _, sample := range buf.Data[:n] {
			value := float64(sample)
			if decoder.BitDepth == 8 {
				value -= 128.0
			}
			channels[channel] = append(channels[channel], value/divisor)
			channel = (channel + 1) % numChannels
		}
	}

	return &SampleBuffer{Channels: channels, SampleRate: sampleRate, Subtype: subtype}, nil
}

// findWAVDataChunk walks the RIFF chunks and returns the size of the data
// chunk, leaving the file positioned at its first byte.
func findWAVDataChunk(file *os.File) (int64, error) {
	if _, err := file.Seek(12, io.SeekStart); err != nil {
		return 0, err
	}

	var header [8]byte
	for {
		if _, err := io.ReadFull(file, header[:]); err != nil {
			if err == io.EOF {
				return 0, fmt.Errorf("WAV file has no data chunk")
			}
			return 0, err
		}
		chunkSize := int64(binary.LittleEndian.Uint32(header[4:8]))

		if string(header[0:4]) == "data" {
			return chunkSize, nil
		}

		// RIFF chunks are word aligned
		if chunkSize%2 != 0 {
			chunkSize++
		}
		if _, err := file.Seek(chunkSize, io.SeekCurrent); err != nil {
			return 0, err
		}
	}
}

// readWAVFloatData locates the data chunk of an IEEE-float WAV file and
// decodes it as interleaved little-endian float32 or float64.
func readWAVFloatData(file *os.File, numChannels, bitDepth int) ([][]float64, error) {
	chunkSize, err := findWAVDataChunk(file)
	if err != nil {
		return nil, err
	}
	return decodeFloatSamples(io.LimitReader(file, chunkSize), numChannels, bitDepth)
}

func decodeFloatSamples(r io.Reader, numChannels, bitDepth int) ([][]float64, error) {
	bytesPerSample := bitDepth / 8
	raw := make([]byte, 8192*bytesPerSample)
	channels := make([][]float64, numChannels)

	channel := 0
	carry := 0
	for {
		n, err := r.Read(raw[carry:])
		if n == 0 {
			if err == io.EOF || err == nil {
				break
			}
			return nil, err
		}
		n += carry

		complete := n - n%bytesPerSample
		for i := 0; i < complete; i += bytesPerSample {
			var value float64
			switch bitDepth {
			case 32:
				value = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i:])))
			case 64:
				value = math.Float64frombits(binary.LittleEndian.Uint64(raw[i:]))
			default:
				return nil, fmt.Errorf("unsupported float bit depth: %d", bitDepth)
			}
			channels[channel] = append(channels[channel], value)
			channel = (channel + 1) % numChannels
		}

		carry = copy(raw, raw[complete:n])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	return channels, nil
}
