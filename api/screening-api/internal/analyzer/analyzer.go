// Copyright (c) 2025 VitalVoice
//
// Licensed under GPL-2.0 with VitalVoice Additional Terms.
// See LICENSE.md for commercial usage.

package internal_analyzer

import (
	"context"
	"errors"

	"github.com/vitalvoice/pkg/types"
)

// ErrAnalysisFailed wraps every remote analysis failure. The caller surfaces
// it as a distinct condition; the capture core guarantees it never re-submits
// automatically.
var ErrAnalysisFailed = errors.New("remote health analysis failed")

// FallbackReply is returned by Chat when the collaborator is unreachable,
// instead of an error: the conversation degrades, it does not break.
const FallbackReply = "I'm having trouble connecting right now. Please try asking again in a moment."

// AnalysisRequest carries one accepted artifact (and optionally a facial
// image) to the remote collaborator.
type AnalysisRequest struct {
	Audio     []byte
	AudioMime string
	Image     []byte
	ImageMime string
	Language  string
}

// ChatRequest is one follow-up turn: prior history, a new text or audio
// message, and the analysis context the assistant answers against.
type ChatRequest struct {
	History   []types.ChatTurn
	Message   string
	Audio     []byte
	AudioMime string
	Report    *types.HealthReport
	Language  string
}

// Analyzer is the remote generative-AI collaborator contract. The capture
// core only gates its invocation; it never interprets the structured report
// beyond passing it through.
type Analyzer interface {
	// Analyze screens the audio (and optional image) and returns the
	// structured health report, or ErrAnalysisFailed (wrapped).
	Analyze(ctx context.Context, req AnalysisRequest) (*types.HealthReport, error)

	// Chat answers one follow-up turn. Connectivity failures yield
	// FallbackReply, not an error. History is capped at the configured
	// number of user turns, independent of the usage quota.
	Chat(ctx context.Context, req ChatRequest) (string, error)
}
