// Copyright (c) 2025 VitalVoice
//
// Licensed under GPL-2.0 with VitalVoice Additional Terms.
// See LICENSE.md for commercial usage.
package configs

// SqliteConfig describes the device-scoped sqlite database used for
// persistence (usage ledger).
type SqliteConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// QuotaConfig bounds how many remote-analysis submissions a device may make
// inside a rolling window.
type QuotaConfig struct {
	DailyLimit  int `mapstructure:"daily_limit" validate:"required,gt=0"`
	WindowHours int `mapstructure:"window_hours" validate:"required,gt=0"`
}

// AudioConfig holds the capture/validation tuning constants. The validator
// thresholds were tuned empirically against real recordings; they are
// configuration, not fixed truths.
type AudioConfig struct {
	// RecordingBudgetSeconds is the countdown ceiling for one capture session.
	RecordingBudgetSeconds int `mapstructure:"recording_budget_seconds" validate:"required,gt=0"`

	// MinDurationSeconds rejects recordings shorter than this. Deliberately
	// permissive so short-but-valid utterances pass.
	MinDurationSeconds float64 `mapstructure:"min_duration_seconds" validate:"required"`
	// MinRMS rejects recordings whose first-channel RMS amplitude is below it.
	MinRMS float64 `mapstructure:"min_rms" validate:"required"`
	// SilenceThreshold is the absolute amplitude below which a sample counts
	// as silence for the speech-presence check.
	SilenceThreshold float64 `mapstructure:"silence_threshold" validate:"required"`
	// MinSpeechFraction rejects recordings where fewer than this fraction of
	// samples exceed SilenceThreshold.
	MinSpeechFraction float64 `mapstructure:"min_speech_fraction" validate:"required"`

	// Monitor classification thresholds on the 0-255 mean magnitude scale.
	MonitorGoodThreshold float64 `mapstructure:"monitor_good_threshold" validate:"required"`
	MonitorLowThreshold  float64 `mapstructure:"monitor_low_threshold" validate:"required"`
	// MonitorSensitivity divides the raw mean to produce the normalized
	// [0,1] level; means at or above it clamp to 1.
	MonitorSensitivity float64 `mapstructure:"monitor_sensitivity" validate:"required"`
}

// AnalyzerConfig configures the remote generative-AI collaborator.
type AnalyzerConfig struct {
	ApiKey       string `mapstructure:"api_key"`
	Model        string `mapstructure:"model" validate:"required"`
	MaxChatTurns int    `mapstructure:"max_chat_turns" validate:"required,gt=0"`
}

// DefaultAudioConfig returns the tuning used by the screening flow.
func DefaultAudioConfig() AudioConfig {
	return AudioConfig{
		RecordingBudgetSeconds: 30,
		MinDurationSeconds:     3.0,
		MinRMS:                 0.02,
		SilenceThreshold:       0.01,
		MinSpeechFraction:      0.10,
		MonitorGoodThreshold:   30,
		MonitorLowThreshold:    10,
		MonitorSensitivity:     100,
	}
}
