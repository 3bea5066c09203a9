// Copyright (c) 2025 VitalVoice
//
// Licensed under GPL-2.0 with VitalVoice Additional Terms.
// See LICENSE.md for commercial usage.
package internal_monitor

import (
	"context"
	"sync"
	"time"

	internal_type "github.com/vitalvoice/api/screening-api/internal/type"
	"github.com/vitalvoice/pkg/commons"
	"github.com/vitalvoice/pkg/utils"
)

// Default sampling cadence. Correctness does not depend on the exact rate;
// this approximates the render-loop cadence the feedback UI expects.
const DefaultInterval = 16 * time.Millisecond

const (
	// DefaultGoodThreshold and DefaultLowThreshold classify the 0-255 mean
	// magnitude: strictly above good → good, strictly above low → low,
	// otherwise silent.
	DefaultGoodThreshold = 30.0
	DefaultLowThreshold  = 10.0
	// DefaultSensitivity divides the mean into the normalized [0,1] level.
	DefaultSensitivity = 100.0
)

// SpectrumSource exposes the live stream's current frequency-domain snapshot:
// one magnitude per bin on a 0-255 scale. The monitor is a side-channel
// observer of the stream — it never touches what is being recorded.
type SpectrumSource interface {
	Magnitudes() []float32
}

// SampleFunc receives each per-tick measurement. The classification is a pure
// function of the snapshot, decoupled from any rendering mechanism.
type SampleFunc func(internal_type.SignalSample)

type Option func(*Monitor)

// WithInterval overrides the sampling cadence.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) { m.interval = d }
}

// WithThresholds overrides the good/low classification thresholds.
func WithThresholds(good, low float64) Option {
	return func(m *Monitor) {
		m.goodThreshold = good
		m.lowThreshold = low
	}
}

// WithSensitivity overrides the normalization divisor.
func WithSensitivity(divisor float64) Option {
	return func(m *Monitor) { m.sensitivity = divisor }
}

// Monitor runs the live-feedback sampling loop against a capture stream. It
// holds no state across restarts; the owning session must call Stop on every
// exit path so the loop and its ticker are never leaked.
type Monitor struct {
	logger   commons.Logger
	source   SpectrumSource
	onSample SampleFunc

	interval      time.Duration
	goodThreshold float64
	lowThreshold  float64
	sensitivity   float64

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewMonitor creates a monitor over the given spectrum source. onSample may
// be nil when the caller only wants Snapshot.
func NewMonitor(logger commons.Logger, source SpectrumSource, onSample SampleFunc, opts ...Option) *Monitor {
	m := &Monitor{
		logger:        logger,
		source:        source,
		onSample:      onSample,
		interval:      DefaultInterval,
		goodThreshold: DefaultGoodThreshold,
		lowThreshold:  DefaultLowThreshold,
		sensitivity:   DefaultSensitivity,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start launches the sampling loop. Starting an already-running monitor is a
// no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.running = true
	go m.run(ctx, m.done)
}

// Stop terminates the loop and waits for it to exit. Idempotent; safe to call
// on a monitor that never started.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	cancel()
	<-done
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sample := m.Snapshot()
			if m.onSample != nil {
				m.onSample(sample)
			}
		}
	}
}

// Snapshot measures the source once: mean magnitude across all frequency
// bins, a normalized level, and the derived classification.
func (m *Monitor) Snapshot() internal_type.SignalSample {
	mean := float64(utils.AverageFloat32(m.source.Magnitudes()))
	return internal_type.SignalSample{
		Mean:  mean,
		Level: m.normalize(mean),
		Class: m.Classify(mean),
	}
}

// Classify maps a raw 0-255 mean magnitude to its quality class. Both
// thresholds are strict: a mean of exactly goodThreshold is low, a mean of
// exactly lowThreshold is silent.
func (m *Monitor) Classify(mean float64) internal_type.SignalClass {
	switch {
	case mean > m.goodThreshold:
		return internal_type.SignalGood
	case mean > m.lowThreshold:
		return internal_type.SignalLow
	}
	return internal_type.SignalSilent
}

// normalize maps the mean into [0,1]; means at or above the sensitivity
// divisor clamp to 1.
func (m *Monitor) normalize(mean float64) float64 {
	if m.sensitivity <= 0 {
		return 0
	}
	level := mean / m.sensitivity
	if level > 1 {
		return 1
	}
	if level < 0 {
		return 0
	}
	return level
}
