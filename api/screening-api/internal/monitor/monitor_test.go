package internal_monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_type "github.com/vitalvoice/api/screening-api/internal/type"
	"github.com/vitalvoice/pkg/commons"
)

func newTestLogger(t *testing.T) commons.Logger {
	t.Helper()
	logger, err := commons.NewApplicationLogger(
		commons.Name("test-monitor"),
		commons.Level("debug"),
	)
	require.NoError(t, err)
	return logger
}

// staticSource returns a fixed spectrum on every read.
type staticSource struct {
	mu   sync.Mutex
	bins []float32
}

func (s *staticSource) Magnitudes() []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bins
}

func flat(value float32, n int) []float32 {
	bins := make([]float32, n)
	for i := range bins {
		bins[i] = value
	}
	return bins
}

func TestClassifyBoundaries(t *testing.T) {
	m := NewMonitor(newTestLogger(t), &staticSource{}, nil)

	tests := []struct {
		name     string
		mean     float64
		expected internal_type.SignalClass
	}{
		{"well above good", 120, internal_type.SignalGood},
		{"just above good", 30.01, internal_type.SignalGood},
		{"exactly good threshold is low", 30, internal_type.SignalLow},
		{"between thresholds", 20, internal_type.SignalLow},
		{"just above low", 10.01, internal_type.SignalLow},
		{"exactly low threshold is silent", 10, internal_type.SignalSilent},
		{"zero", 0, internal_type.SignalSilent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.Classify(tt.mean))
		})
	}
}

func TestSnapshotMeanAndLevel(t *testing.T) {
	source := &staticSource{bins: flat(50, 32)}
	m := NewMonitor(newTestLogger(t), source, nil)

	sample := m.Snapshot()
	assert.InDelta(t, 50.0, sample.Mean, 1e-6)
	assert.InDelta(t, 0.5, sample.Level, 1e-6)
	assert.Equal(t, internal_type.SignalGood, sample.Class)
}

func TestSnapshotLevelClampsToOne(t *testing.T) {
	source := &staticSource{bins: flat(250, 8)}
	m := NewMonitor(newTestLogger(t), source, nil)

	assert.Equal(t, 1.0, m.Snapshot().Level)
}

func TestSnapshotEmptySpectrumIsSilent(t *testing.T) {
	m := NewMonitor(newTestLogger(t), &staticSource{}, nil)

	sample := m.Snapshot()
	assert.Zero(t, sample.Mean)
	assert.Zero(t, sample.Level)
	assert.Equal(t, internal_type.SignalSilent, sample.Class)
}

func TestLoopDeliversSamplesUntilStopped(t *testing.T) {
	source := &staticSource{bins: flat(40, 16)}

	var mu sync.Mutex
	var samples []internal_type.SignalSample
	m := NewMonitor(newTestLogger(t), source, func(s internal_type.SignalSample) {
		mu.Lock()
		samples = append(samples, s)
		mu.Unlock()
	}, WithInterval(time.Millisecond))

	m.Start()
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(samples) >= 3
	}, time.Second, time.Millisecond, "expected several samples")
	m.Stop()

	mu.Lock()
	count := len(samples)
	for _, s := range samples {
		assert.Equal(t, internal_type.SignalGood, s.Class)
	}
	mu.Unlock()

	// No deliveries after Stop returns.
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, count, len(samples))
	mu.Unlock()
}

func TestStopIsIdempotent(t *testing.T) {
	m := NewMonitor(newTestLogger(t), &staticSource{}, nil, WithInterval(time.Millisecond))

	m.Stop() // never started
	m.Start()
	m.Stop()
	m.Stop()
}

func TestRestartAfterStop(t *testing.T) {
	source := &staticSource{bins: flat(15, 16)}

	var mu sync.Mutex
	count := 0
	m := NewMonitor(newTestLogger(t), source, func(internal_type.SignalSample) {
		mu.Lock()
		count++
		mu.Unlock()
	}, WithInterval(time.Millisecond))

	m.Start()
	m.Stop()
	mu.Lock()
	first := count
	mu.Unlock()

	m.Start()
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count > first
	}, time.Second, time.Millisecond, "loop must run again after restart")
	m.Stop()
}
