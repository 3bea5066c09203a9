// Copyright (c) 2025 VitalVoice
//
// Licensed under GPL-2.0 with VitalVoice Additional Terms.
// See LICENSE.md for commercial usage.

package internal_validator

import (
	"context"
	"strings"

	internal_type "github.com/vitalvoice/api/screening-api/internal/type"
	"github.com/vitalvoice/pkg/audio"
	"github.com/vitalvoice/pkg/commons"
	"github.com/vitalvoice/pkg/configs"
	"github.com/vitalvoice/pkg/utils"
)

// Validator gate-keeps a finalized recording before it may incur the cost of
// remote analysis. Validation is a pure function of the artifact: the checks
// run in a fixed order and the first failure determines the reason.
//
// The duration floor is deliberately permissive (3s by default) so that
// short-but-valid utterances are not rejected. That is a documented tuning
// trade-off, not a bug.
type Validator struct {
	logger commons.Logger
	cfg    configs.AudioConfig
}

// NewValidator creates a validator with the given tuning.
func NewValidator(cfg configs.AudioConfig, logger commons.Logger) *Validator {
	return &Validator{logger: logger, cfg: cfg}
}

// Validate inspects the artifact and returns accept or reject-with-reason.
// Check order: empty → decode → duration → energy → speech presence. A
// rejected artifact must never reach the remote collaborator or the usage
// ledger.
func (v *Validator) Validate(ctx context.Context, artifact internal_type.AudioArtifact) internal_type.Verdict {
	if artifact.Empty() {
		return internal_type.Reject(internal_type.RejectEmpty)
	}

	pcm, err := v.decode(artifact)
	if err != nil {
		v.logger.Debugf("artifact decode failed (%s, %d bytes): %v",
			artifact.MimeType, len(artifact.Data), err)
		return internal_type.Reject(internal_type.RejectDecodeFailure)
	}

	if pcm.Duration() < v.cfg.MinDurationSeconds {
		v.logger.Debugf("recording rejected: %.2fs is below the %.1fs floor",
			pcm.Duration(), v.cfg.MinDurationSeconds)
		return internal_type.Reject(internal_type.RejectTooShort)
	}

	samples := pcm.FirstChannel()

	rms := utils.RootMeanSquareFloat32(samples)
	if rms < v.cfg.MinRMS {
		v.logger.Debugf("recording rejected: RMS %.4f below %.4f", rms, v.cfg.MinRMS)
		return internal_type.Reject(internal_type.RejectTooQuiet)
	}

	speechFraction := utils.FractionAboveFloat32(samples, v.cfg.SilenceThreshold)
	if speechFraction < v.cfg.MinSpeechFraction {
		v.logger.Debugf("recording rejected: speech fraction %.3f below %.3f",
			speechFraction, v.cfg.MinSpeechFraction)
		return internal_type.Reject(internal_type.RejectNoSpeech)
	}

	v.logger.Debugf("recording accepted: %.2fs, RMS %.4f, speech fraction %.3f",
		pcm.Duration(), rms, speechFraction)
	return internal_type.Accept()
}

// decode picks the decoder from the artifact's MIME type. Unknown encodings
// are a decode failure, not a separate error class.
func (v *Validator) decode(artifact internal_type.AudioArtifact) (*audio.PCM, error) {
	switch normalizeMime(artifact.MimeType) {
	case "audio/ogg", "application/ogg", "audio/opus":
		return decodeOpus(artifact.Data)
	default:
		// WAV is the capture pipeline's native container; also the fallback
		// for untagged uploads.
		return audio.DecodeWAV(artifact.Data)
	}
}

// normalizeMime strips codec parameters and case: "audio/OGG; codecs=opus"
// → "audio/ogg".
func normalizeMime(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
