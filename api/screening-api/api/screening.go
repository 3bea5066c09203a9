// Copyright (c) 2025 VitalVoice
//
// Licensed under GPL-2.0 with VitalVoice Additional Terms.
// See LICENSE.md for commercial usage.

package screening_api

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitalvoice/api/screening-api/config"
	internal_analyzer "github.com/vitalvoice/api/screening-api/internal/analyzer"
	internal_ledger "github.com/vitalvoice/api/screening-api/internal/ledger"
	internal_type "github.com/vitalvoice/api/screening-api/internal/type"
	internal_validator "github.com/vitalvoice/api/screening-api/internal/validator"
	"github.com/vitalvoice/pkg/commons"
	"github.com/vitalvoice/pkg/types"
)

// ScreeningApi is the upload-submission surface: the seam the browser UI
// calls into with a finished recording. Gate order is fixed: quota before
// validation, validation before any remote submission or billing.
type ScreeningApi struct {
	cfg       *config.AppConfig
	logger    commons.Logger
	ledger    *internal_ledger.Ledger
	validator *internal_validator.Validator
	analyzer  internal_analyzer.Analyzer
}

func NewScreeningApi(
	cfg *config.AppConfig,
	logger commons.Logger,
	ledger *internal_ledger.Ledger,
	validator *internal_validator.Validator,
	analyzer internal_analyzer.Analyzer,
) *ScreeningApi {
	return &ScreeningApi{
		cfg:       cfg,
		logger:    logger,
		ledger:    ledger,
		validator: validator,
		analyzer:  analyzer,
	}
}

// Analyze handles one screening submission: multipart form with an "audio"
// file, an optional "image" file, a "language" field and a "sample" flag.
// The sample path serves the canned demo report without consuming quota.
func (api *ScreeningApi) Analyze(c *gin.Context) {
	if c.PostForm("sample") == "true" {
		c.JSON(http.StatusOK, gin.H{"report": internal_analyzer.SampleReport(), "sample": true})
		return
	}

	if !api.ledger.CheckQuota(c.Request.Context()) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":     "daily analysis limit reached",
			"remaining": 0,
			"limit":     api.ledger.Limit(),
		})
		return
	}

	audioData, audioMime, err := readFormFile(c, "audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required"})
		return
	}

	artifact := internal_type.AudioArtifact{Data: audioData, MimeType: audioMime}
	verdict := api.validator.Validate(c.Request.Context(), artifact)
	if !verdict.Accepted {
		// Rejections are recoverable by re-recording; they never bill quota.
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"reason":  verdict.Reason,
			"message": verdict.Reason.Message(),
		})
		return
	}

	imageData, imageMime, _ := readFormFile(c, "image")

	// The submission is now actually sent: this is the one place a quota
	// slot is consumed.
	api.ledger.RecordUsage(c.Request.Context())

	report, err := api.analyzer.Analyze(c.Request.Context(), internal_analyzer.AnalysisRequest{
		Audio:     artifact.Data,
		AudioMime: artifact.MimeType,
		Image:     imageData,
		ImageMime: imageMime,
		Language:  c.PostForm("language"),
	})
	if err != nil {
		api.logger.Errorf("analysis submission failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "health analysis is unavailable, please try again later"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// Quota reports the device's current limit state without consuming a slot.
func (api *ScreeningApi) Quota(c *gin.Context) {
	remaining := api.ledger.Remaining(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"allowed":   remaining > 0,
		"remaining": remaining,
		"limit":     api.ledger.Limit(),
	})
}

type chatRequest struct {
	History  []types.ChatTurn    `json:"history"`
	Message  string              `json:"message"`
	Report   *types.HealthReport `json:"report"`
	Language string              `json:"language"`
}

// Chat handles one follow-up turn against the analysis context. Chat turns
// are capped by the analyzer, independent of the usage quota.
func (api *ScreeningApi) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat request"})
		return
	}

	reply, err := api.analyzer.Chat(c.Request.Context(), internal_analyzer.ChatRequest{
		History:  req.History,
		Message:  req.Message,
		Report:   req.Report,
		Language: req.Language,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "chat is unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func readFormFile(c *gin.Context, field string) ([]byte, string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	file, err := header.Open()
	if err != nil {
		return nil, "", err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Header.Get("Content-Type"), nil
}
