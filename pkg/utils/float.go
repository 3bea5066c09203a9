// Copyright (c) 2025 VitalVoice
//
// Licensed under GPL-2.0 with VitalVoice Additional Terms.
// See LICENSE.md for commercial usage.
package utils

import "math"

// AverageFloat32 returns the arithmetic mean of the values, or 0 for an
// empty slice.
func AverageFloat32(values []float32) float32 {
	if len(values) == 0 {
		return 0
	}
	var sum float32
	for _, v := range values {
		sum += v
	}
	return sum / float32(len(values))
}

// RootMeanSquareFloat32 returns the RMS amplitude of the values, or 0 for an
// empty slice.
func RootMeanSquareFloat32(values []float32) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(values)))
}

// FractionAboveFloat32 returns the fraction of values whose absolute value
// strictly exceeds threshold, or 0 for an empty slice.
func FractionAboveFloat32(values []float32, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if math.Abs(float64(v)) > threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}
