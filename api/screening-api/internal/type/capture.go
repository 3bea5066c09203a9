// Copyright (c) 2025 VitalVoice
//
// Licensed under GPL-2.0 with VitalVoice Additional Terms.
// See LICENSE.md for commercial usage.
package internal_type

// CaptureState is the lifecycle state of a recording session.
type CaptureState string

const (
	StateIdle       CaptureState = "idle"
	StateArmed      CaptureState = "armed" // device permission requested
	StateRecording  CaptureState = "recording"
	StateFinalizing CaptureState = "finalizing"
)

// AudioArtifact is the finalized recording: an opaque encoded byte sequence
// tagged with its MIME type. Immutable once produced.
type AudioArtifact struct {
	Data     []byte
	MimeType string
}

// Empty reports whether the artifact holds no audio at all.
func (a AudioArtifact) Empty() bool { return len(a.Data) == 0 }

// RejectReason explains why a finalized recording was not accepted.
type RejectReason string

const (
	RejectEmpty         RejectReason = "empty"
	RejectTooShort      RejectReason = "too-short"
	RejectTooQuiet      RejectReason = "too-quiet"
	RejectNoSpeech      RejectReason = "no-speech-detected"
	RejectDecodeFailure RejectReason = "decode-failure"
)

// Message returns the human-readable explanation surfaced to the caller.
// Every rejection maps to a specific actionable string, never a generic one.
func (r RejectReason) Message() string {
	switch r {
	case RejectEmpty:
		return "The recording is empty. Please record again."
	case RejectTooShort:
		return "The recording is too short. Please speak for at least 3 seconds."
	case RejectTooQuiet:
		return "The recording is too quiet. Please speak louder or move closer to the microphone."
	case RejectNoSpeech:
		return "No speech was detected. Please try again and speak clearly."
	case RejectDecodeFailure:
		return "The recording could not be processed. Please record again."
	}
	return "The recording was not accepted. Please record again."
}

// Verdict is the validator's decision for one artifact. Computed once; a
// rejection returns control to the idle capture state, never retried
// automatically.
type Verdict struct {
	Accepted bool
	Reason   RejectReason
}

// Accept returns the accepting verdict.
func Accept() Verdict { return Verdict{Accepted: true} }

// Reject returns a rejecting verdict with the given reason.
func Reject(reason RejectReason) Verdict { return Verdict{Reason: reason} }

// SignalClass is the instantaneous quality classification of the live input.
type SignalClass string

const (
	SignalSilent SignalClass = "silent"
	SignalLow    SignalClass = "low"
	SignalGood   SignalClass = "good"
)

// Message returns the fixed user-facing status line for the class.
func (c SignalClass) Message() string {
	switch c {
	case SignalGood:
		return "Good signal, keep speaking"
	case SignalLow:
		return "A bit quiet, speak up"
	}
	return "We can't hear you"
}

// SignalSample is one ephemeral per-frame measurement from the signal
// monitor: mean magnitude over the frequency window, a normalized [0,1]
// level, and the derived classification.
type SignalSample struct {
	Mean  float64
	Level float64
	Class SignalClass
}
