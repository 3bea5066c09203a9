// Copyright (c) 2025 VitalVoice
//
// Licensed under GPL-2.0 with VitalVoice Additional Terms.
// See LICENSE.md for commercial usage.
package internal_capture

import (
	"context"
	"errors"

	internal_monitor "github.com/vitalvoice/api/screening-api/internal/monitor"
)

// ErrDeviceUnavailable is returned when microphone permission is denied or no
// input device exists. It is surfaced to the caller and never retried
// automatically.
var ErrDeviceUnavailable = errors.New("audio input device unavailable")

// Device is the audio input seam the hosting surface provides. Exactly one
// capture session owns an acquired device at a time; Release must stop all
// underlying tracks so the hardware indicator goes dark.
type Device interface {
	// Acquire requests exclusive access to the input device, prompting for
	// permission if needed. Returns ErrDeviceUnavailable (possibly wrapped)
	// when permission is denied or no device exists.
	Acquire(ctx context.Context) error

	// Chunks delivers encoded audio fragments while the device is acquired.
	// The channel is closed when the device is released.
	Chunks() <-chan []byte

	// Spectrum exposes the live frequency-domain view of the same stream for
	// the signal monitor. Observing it does not affect what is recorded.
	Spectrum() internal_monitor.SpectrumSource

	// MimeType reports the encoding of the chunks (e.g. "audio/wav").
	MimeType() string

	// Release stops all tracks and closes the chunk channel. Idempotent;
	// must take effect synchronously, not deferred to garbage collection.
	Release()
}
