// Copyright (c) 2025 VitalVoice
//
// Licensed under GPL-2.0 with VitalVoice Additional Terms.
// See LICENSE.md for commercial usage.
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	BytesPerSample = 2  // LINEAR16 → 2 bytes per sample
	BitsPerSample  = 16 // LINEAR16 → 16 bits per sample
	PCMFormat      = 1  // WAV PCM format tag

	// DefaultSampleRate is the capture rate for voice screening recordings.
	DefaultSampleRate = 16000
	// DefaultChannels is mono capture.
	DefaultChannels = 1

	wavHeaderSize = 44
)

// PCM is decoded linear audio: interleaved float32 samples in [-1, 1].
type PCM struct {
	SampleRate int
	Channels   int
	Samples    []float32
}

// Duration returns the audio length in seconds.
func (p *PCM) Duration() float64 {
	if p.SampleRate == 0 || p.Channels == 0 {
		return 0
	}
	return float64(len(p.Samples)) / float64(p.Channels) / float64(p.SampleRate)
}

// FirstChannel returns the samples of channel 0.
func (p *PCM) FirstChannel() []float32 {
	if p.Channels <= 1 {
		return p.Samples
	}
	out := make([]float32, 0, len(p.Samples)/p.Channels)
	for i := 0; i < len(p.Samples); i += p.Channels {
		out = append(out, p.Samples[i])
	}
	return out
}

// EncodeWAV wraps raw LINEAR16 PCM bytes in a WAV container.
func EncodeWAV(pcmData []byte, sampleRate, channels int) []byte {
	var buf bytes.Buffer
	bps := sampleRate * channels * BytesPerSample

	buf.Write([]byte("RIFF"))
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcmData)))
	buf.Write([]byte("WAVE"))

	buf.Write([]byte("fmt "))
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(PCMFormat))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(bps))
	binary.Write(&buf, binary.LittleEndian, uint16(BytesPerSample*channels))
	binary.Write(&buf, binary.LittleEndian, uint16(BitsPerSample))

	// data chunk
	buf.Write([]byte("data"))
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcmData)))
	buf.Write(pcmData)

	return buf.Bytes()
}

// DecodeWAV parses a WAV container holding 16-bit PCM and returns normalized
// float32 samples. Only format tag 1 (LINEAR16) is supported.
func DecodeWAV(data []byte) (*PCM, error) {
	if len(data) < wavHeaderSize {
		return nil, fmt.Errorf("wav: %d bytes is too short for a header", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("wav: missing RIFF/WAVE marker")
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		pcmBytes      []byte
		sawFmt        bool
	)

	// Walk the chunk list; fmt must precede data.
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkLen := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkLen > len(data) {
			return nil, fmt.Errorf("wav: chunk %q overruns file", chunkID)
		}

		switch chunkID {
		case "fmt ":
			if chunkLen < 16 {
				return nil, fmt.Errorf("wav: fmt chunk too short")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != PCMFormat {
				return nil, fmt.Errorf("wav: unsupported format tag %d", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			sawFmt = true
		case "data":
			if !sawFmt {
				return nil, fmt.Errorf("wav: data chunk before fmt chunk")
			}
			pcmBytes = data[body : body+chunkLen]
		}

		// Chunks are word-aligned.
		offset = body + chunkLen + chunkLen%2
	}

	if !sawFmt {
		return nil, fmt.Errorf("wav: no fmt chunk")
	}
	if pcmBytes == nil {
		return nil, fmt.Errorf("wav: no data chunk")
	}
	if bitsPerSample != BitsPerSample {
		return nil, fmt.Errorf("wav: unsupported bit depth %d", bitsPerSample)
	}
	if channels <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("wav: invalid fmt (channels=%d, rate=%d)", channels, sampleRate)
	}

	samples := make([]float32, len(pcmBytes)/BytesPerSample)
	for i := range samples {
		raw := int16(binary.LittleEndian.Uint16(pcmBytes[i*2 : i*2+2]))
		samples[i] = float32(raw) / 32768.0
	}

	return &PCM{
		SampleRate: sampleRate,
		Channels:   channels,
		Samples:    samples,
	}, nil
}
