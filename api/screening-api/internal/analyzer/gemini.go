// Copyright (c) 2025 VitalVoice
//
// Licensed under GPL-2.0 with VitalVoice Additional Terms.
// See LICENSE.md for commercial usage.

package internal_analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/vitalvoice/pkg/commons"
	"github.com/vitalvoice/pkg/configs"
	"github.com/vitalvoice/pkg/types"
)

const analysisPrompt = `You are a voice-biomarker health screening assistant.
Listen to the provided voice sample (and inspect the facial image if one is
attached) and produce a wellness screening as a single JSON object with the
fields: overallScore (0-100), domains (array of {name, score, concernLevel
one of none|low|moderate|high, indicators, explanation}), keyObservations,
recommendations, trends, summary, disclaimer. This is a wellness screening,
not a medical diagnosis; say so in the disclaimer. Respond in %s. Respond
with JSON only.`

const chatPrompt = `You are a friendly health assistant answering follow-up
questions about a completed voice screening. Screening context: %s.
Answer briefly and plainly in %s. Do not diagnose; recommend professional
care where appropriate.`

type geminiAnalyzer struct {
	client *genai.Client
	logger commons.Logger
	cfg    configs.AnalyzerConfig
}

// NewGeminiAnalyzer creates the Gemini-backed collaborator client.
func NewGeminiAnalyzer(ctx context.Context, cfg configs.AnalyzerConfig, logger commons.Logger) (Analyzer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.ApiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &geminiAnalyzer{client: client, logger: logger, cfg: cfg}, nil
}

func (g *geminiAnalyzer) Analyze(ctx context.Context, req AnalysisRequest) (*types.HealthReport, error) {
	language := req.Language
	if language == "" {
		language = "English"
	}

	parts := []*genai.Part{
		genai.NewPartFromText(fmt.Sprintf(analysisPrompt, language)),
		genai.NewPartFromBytes(req.Audio, req.AudioMime),
	}
	if len(req.Image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.Image, req.ImageMime))
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	var report types.HealthReport
	if err := json.Unmarshal([]byte(stripFences(resp.Text())), &report); err != nil {
		g.logger.Errorf("analysis response is not valid report JSON: %v", err)
		return nil, fmt.Errorf("%w: unparseable response", ErrAnalysisFailed)
	}

	g.logger.Infof("analysis completed: overall=%d, domains=%d",
		report.OverallScore, len(report.Domains))
	return &report, nil
}

func (g *geminiAnalyzer) Chat(ctx context.Context, req ChatRequest) (string, error) {
	language := req.Language
	if language == "" {
		language = "English"
	}

	reportContext := "no screening on record"
	if req.Report != nil {
		if encoded, err := json.Marshal(req.Report); err == nil {
			reportContext = string(encoded)
		}
	}

	contents := []*genai.Content{
		genai.NewContentFromText(fmt.Sprintf(chatPrompt, reportContext, language), genai.RoleUser),
	}
	for _, turn := range capHistory(req.History, g.cfg.MaxChatTurns) {
		role := genai.RoleUser
		if turn.Role == types.ChatRoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, genai.Role(role)))
	}

	parts := []*genai.Part{}
	if req.Message != "" {
		parts = append(parts, genai.NewPartFromText(req.Message))
	}
	if len(req.Audio) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.Audio, req.AudioMime))
	}
	if len(parts) == 0 {
		return FallbackReply, nil
	}
	contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, contents, nil)
	if err != nil {
		g.logger.Warnf("chat turn failed, returning fallback: %v", err)
		return FallbackReply, nil
	}

	reply := strings.TrimSpace(resp.Text())
	if reply == "" {
		return FallbackReply, nil
	}
	return reply, nil
}

// capHistory keeps the most recent turns containing at most maxUserTurns
// user messages.
func capHistory(history []types.ChatTurn, maxUserTurns int) []types.ChatTurn {
	if maxUserTurns <= 0 {
		return history
	}
	userTurns := 0
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == types.ChatRoleUser {
			userTurns++
			if userTurns > maxUserTurns {
				return history[i+1:]
			}
		}
	}
	return history
}

// stripFences removes a markdown code fence around a JSON payload, which
// models emit even when asked for bare JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
