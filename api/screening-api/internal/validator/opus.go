// Copyright (c) 2025 VitalVoice
//
// Licensed under GPL-2.0 with VitalVoice Additional Terms.
// See LICENSE.md for commercial usage.

package internal_validator

import (
	"bytes"
	"fmt"
	"io"

	opus "gopkg.in/hraban/opus.v2"

	"github.com/vitalvoice/pkg/audio"
)

// opusfile always produces 48kHz output regardless of the stream's original
// rate.
const opusSampleRate = 48000

// decodeOpus decodes an Ogg/Opus artifact into normalized PCM. The decoder
// stream is a scoped resource: it is closed on every exit path.
func decodeOpus(data []byte) (*audio.PCM, error) {
	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opus: open stream: %w", err)
	}
	defer stream.Close()

	var samples []float32
	buf := make([]float32, 16384)
	for {
		n, err := stream.ReadFloat32(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("opus: read stream: %w", err)
		}
		samples = append(samples, buf[:n]...)
	}

	return &audio.PCM{
		SampleRate: opusSampleRate,
		Channels:   1,
		Samples:    samples,
	}, nil
}
