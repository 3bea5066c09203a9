// Copyright (c) 2025 VitalVoice
//
// Licensed under GPL-2.0 with VitalVoice Additional Terms.
// See LICENSE.md for commercial usage.
package types

// ConcernLevel grades a health domain in the analysis report.
type ConcernLevel string

const (
	ConcernNone     ConcernLevel = "none"
	ConcernLow      ConcernLevel = "low"
	ConcernModerate ConcernLevel = "moderate"
	ConcernHigh     ConcernLevel = "high"
)

// DomainScore is one per-domain entry of the health report (e.g. respiratory,
// vocal, neurological).
type DomainScore struct {
	Name         string       `json:"name"`
	Score        int          `json:"score"`
	ConcernLevel ConcernLevel `json:"concernLevel"`
	Indicators   []string     `json:"indicators"`
	Explanation  string       `json:"explanation"`
}

// HealthReport is the structured record returned by the remote analysis
// collaborator. The capture core gates its invocation and never interprets
// these fields beyond passing them through.
type HealthReport struct {
	OverallScore    int           `json:"overallScore"`
	Domains         []DomainScore `json:"domains"`
	KeyObservations []string      `json:"keyObservations"`
	Recommendations []string      `json:"recommendations"`
	Trends          []string      `json:"trends"`
	Summary         string        `json:"summary"`
	Disclaimer      string        `json:"disclaimer"`
}

// ChatRole identifies the author of a chat turn.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatTurn is one prior message of the follow-up conversation.
type ChatTurn struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}
