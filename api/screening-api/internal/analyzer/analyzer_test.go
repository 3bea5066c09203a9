package internal_analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitalvoice/pkg/types"
)

func turns(roles ...types.ChatRole) []types.ChatTurn {
	out := make([]types.ChatTurn, len(roles))
	for i, r := range roles {
		out[i] = types.ChatTurn{Role: r, Text: "turn"}
	}
	return out
}

func countUsers(history []types.ChatTurn) int {
	n := 0
	for _, t := range history {
		if t.Role == types.ChatRoleUser {
			n++
		}
	}
	return n
}

func TestCapHistoryKeepsMostRecentUserTurns(t *testing.T) {
	history := turns(
		types.ChatRoleUser, types.ChatRoleAssistant,
		types.ChatRoleUser, types.ChatRoleAssistant,
		types.ChatRoleUser, types.ChatRoleAssistant,
	)

	capped := capHistory(history, 2)
	assert.Equal(t, 2, countUsers(capped))
	// The oldest exchange is dropped, the rest kept in order.
	assert.Len(t, capped, 4)
}

func TestCapHistoryUnderLimitUnchanged(t *testing.T) {
	history := turns(types.ChatRoleUser, types.ChatRoleAssistant)
	assert.Equal(t, history, capHistory(history, 5))
}

func TestCapHistoryZeroLimitDisablesCap(t *testing.T) {
	history := turns(types.ChatRoleUser, types.ChatRoleUser, types.ChatRoleUser)
	assert.Equal(t, history, capHistory(history, 0))
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"anonymous fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}\n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripFences(tt.input))
		})
	}
}

func TestSampleReportIsComplete(t *testing.T) {
	report := SampleReport()
	assert.NotZero(t, report.OverallScore)
	assert.NotEmpty(t, report.Domains)
	for _, d := range report.Domains {
		assert.NotEmpty(t, d.Name)
		assert.NotEmpty(t, d.Explanation)
	}
	assert.NotEmpty(t, report.Disclaimer)
}
