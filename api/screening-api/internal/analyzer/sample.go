// Copyright (c) 2025 VitalVoice
//
// Licensed under GPL-2.0 with VitalVoice Additional Terms.
// See LICENSE.md for commercial usage.

package internal_analyzer

import "github.com/vitalvoice/pkg/types"

// SampleReport is the canned result backing the free demo path. Serving it
// consumes no quota slot and never reaches the remote collaborator.
func SampleReport() *types.HealthReport {
	return &types.HealthReport{
		OverallScore: 82,
		Domains: []types.DomainScore{
			{
				Name:         "Respiratory",
				Score:        85,
				ConcernLevel: types.ConcernNone,
				Indicators:   []string{"steady breath support", "no audible strain"},
				Explanation:  "Breathing patterns in the sample are regular with good support across phrases.",
			},
			{
				Name:         "Vocal",
				Score:        78,
				ConcernLevel: types.ConcernLow,
				Indicators:   []string{"mild vocal fry at phrase ends"},
				Explanation:  "Voice quality is stable; slight fry at the end of phrases is common and usually benign.",
			},
			{
				Name:         "Neurological",
				Score:        84,
				ConcernLevel: types.ConcernNone,
				Indicators:   []string{"even articulation rate"},
				Explanation:  "Speech rhythm and articulation show no irregularities in this sample.",
			},
		},
		KeyObservations: []string{
			"Clear articulation throughout the sample",
			"Consistent vocal energy",
		},
		Recommendations: []string{
			"Stay hydrated to support vocal fold function",
			"Re-screen periodically to build a trend line",
		},
		Trends:     []string{"First screening - no trend data yet"},
		Summary:    "Overall the voice sample suggests good general wellness with no areas of concern.",
		Disclaimer: "This is a wellness screening based on voice characteristics, not a medical diagnosis. Consult a healthcare professional for medical advice.",
	}
}
