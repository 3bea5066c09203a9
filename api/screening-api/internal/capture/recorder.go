// Copyright (c) 2025 VitalVoice
//
// Licensed under GPL-2.0 with VitalVoice Additional Terms.
// See LICENSE.md for commercial usage.
package internal_capture

import (
	"sync"

	internal_type "github.com/vitalvoice/api/screening-api/internal/type"
)

// Recorder accumulates the encoded chunks of one in-progress recording in
// arrival order and concatenates them into a single immutable artifact on
// finalize. It is owned by exactly one capture session and discarded with it.
type Recorder struct {
	mu     sync.Mutex
	chunks [][]byte
	total  int
}

// NewRecorder creates an empty chunk accumulator.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Push appends one encoded chunk. Empty chunks are ignored. The data is
// copied so later caller mutations cannot corrupt the recording.
func (r *Recorder) Push(data []byte) {
	if len(data) == 0 {
		return
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = append(r.chunks, buf)
	r.total += len(buf)
}

// ChunkCount returns how many chunks have accumulated.
func (r *Recorder) ChunkCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chunks)
}

// Finalize concatenates all accumulated chunks into one artifact tagged with
// the given MIME type and clears the accumulator. A session with no audio
// yields an empty artifact, which the validator rejects downstream.
func (r *Recorder) Finalize(mimeType string) internal_type.AudioArtifact {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]byte, 0, r.total)
	for _, c := range r.chunks {
		data = append(data, c...)
	}
	r.chunks = nil
	r.total = 0

	return internal_type.AudioArtifact{
		Data:     data,
		MimeType: mimeType,
	}
}

// Discard drops all accumulated chunks without producing an artifact.
func (r *Recorder) Discard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = nil
	r.total = 0
}
