package internal_session

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_capture "github.com/vitalvoice/api/screening-api/internal/capture"
	internal_ledger "github.com/vitalvoice/api/screening-api/internal/ledger"
	internal_monitor "github.com/vitalvoice/api/screening-api/internal/monitor"
	internal_type "github.com/vitalvoice/api/screening-api/internal/type"
	internal_validator "github.com/vitalvoice/api/screening-api/internal/validator"
	"github.com/vitalvoice/pkg/audio"
	"github.com/vitalvoice/pkg/commons"
	"github.com/vitalvoice/pkg/configs"
)

func newTestLogger(t *testing.T) commons.Logger {
	t.Helper()
	logger, err := commons.NewApplicationLogger(
		commons.Name("test-session"),
		commons.Level("debug"),
	)
	require.NoError(t, err)
	return logger
}

// fakeSpectrum is a fixed frequency snapshot.
type fakeSpectrum struct{ bins []float32 }

func (f *fakeSpectrum) Magnitudes() []float32 { return f.bins }

// fakeDevice simulates the microphone seam. Chunks are injected by the test;
// Release closes the chunk channel like a real device flushing its stream.
type fakeDevice struct {
	mu         sync.Mutex
	chunks     chan []byte
	acquired   bool
	acquires   int
	releases   int
	acquireErr error
	spectrum   fakeSpectrum
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{chunks: make(chan []byte, 64)}
}

func (d *fakeDevice) Acquire(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acquires++
	if d.acquireErr != nil {
		return d.acquireErr
	}
	if d.acquired {
		return errors.New("device already acquired")
	}
	d.chunks = make(chan []byte, 64)
	d.acquired = true
	return nil
}

func (d *fakeDevice) Chunks() <-chan []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chunks
}

func (d *fakeDevice) Spectrum() internal_monitor.SpectrumSource { return &d.spectrum }

func (d *fakeDevice) MimeType() string { return "audio/wav" }

func (d *fakeDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.acquired {
		return
	}
	d.acquired = false
	d.releases++
	close(d.chunks)
}

func (d *fakeDevice) push(t *testing.T, data []byte) {
	t.Helper()
	d.mu.Lock()
	ch := d.chunks
	d.mu.Unlock()
	select {
	case ch <- data:
	case <-time.After(time.Second):
		t.Fatal("chunk channel full")
	}
}

func (d *fakeDevice) releaseCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.releases
}

// validWAV is a 4-second clip that passes every validation check.
func validWAV() []byte {
	n := 4 * audio.DefaultSampleRate
	pcm := make([]byte, n*2)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(16384)))
	}
	return audio.EncodeWAV(pcm, audio.DefaultSampleRate, audio.DefaultChannels)
}

// shortWAV is a 1-second clip: rejected as too-short.
func shortWAV() []byte {
	pcm := make([]byte, audio.DefaultSampleRate*2)
	return audio.EncodeWAV(pcm, audio.DefaultSampleRate, audio.DefaultChannels)
}

type harness struct {
	session *Session
	device  *fakeDevice
	store   internal_ledger.Store
	ledger  *internal_ledger.Ledger
}

func newHarness(t *testing.T, cb Callbacks, opts ...Option) *harness {
	t.Helper()
	logger := newTestLogger(t)
	store := internal_ledger.NewMemoryStore()
	ledger := internal_ledger.NewLedger(store, configs.QuotaConfig{DailyLimit: 5, WindowHours: 24}, logger)
	validator := internal_validator.NewValidator(configs.DefaultAudioConfig(), logger)
	device := newFakeDevice()
	return &harness{
		session: NewSession(logger, ledger, validator, device, cb, opts...),
		device:  device,
		store:   store,
		ledger:  ledger,
	}
}

func TestStartStopAcceptedFlow(t *testing.T) {
	h := newHarness(t, Callbacks{})
	require.NoError(t, h.session.Start(context.Background()))
	assert.Equal(t, internal_type.StateRecording, h.session.State())

	wav := validWAV()
	// Deliver the recording in several encoded chunks.
	third := len(wav) / 3
	h.device.push(t, wav[:third])
	h.device.push(t, wav[third:2*third])
	h.device.push(t, wav[2*third:])

	result, err := h.session.Stop()
	require.NoError(t, err)
	assert.True(t, result.Verdict.Accepted)
	assert.Equal(t, wav, result.Artifact.Data)
	assert.Equal(t, "audio/wav", result.Artifact.MimeType)
	assert.NotEmpty(t, result.SessionID)

	assert.Equal(t, internal_type.StateIdle, h.session.State())
	assert.Equal(t, DefaultBudgetSeconds, h.session.Remaining())
	assert.Equal(t, 1, h.device.releaseCount())
}

func TestRejectedStopResetsSession(t *testing.T) {
	h := newHarness(t, Callbacks{})
	require.NoError(t, h.session.Start(context.Background()))
	h.device.push(t, shortWAV())

	result, err := h.session.Stop()
	require.NoError(t, err)
	assert.False(t, result.Verdict.Accepted)
	assert.Equal(t, internal_type.RejectTooShort, result.Verdict.Reason)
	// Rejected artifacts are discarded, never handed out.
	assert.True(t, result.Artifact.Empty())

	assert.Equal(t, internal_type.StateIdle, h.session.State())
	assert.Equal(t, DefaultBudgetSeconds, h.session.Remaining())
	assert.Equal(t, 1, h.device.releaseCount())

	// Re-record after rejection works immediately.
	require.NoError(t, h.session.Start(context.Background()))
	require.NoError(t, h.session.Cancel())
}

func TestRejectionNeverBillsQuota(t *testing.T) {
	h := newHarness(t, Callbacks{})
	for i := 0; i < 3; i++ {
		require.NoError(t, h.session.Start(context.Background()))
		h.device.push(t, shortWAV())
		result, err := h.session.Stop()
		require.NoError(t, err)
		assert.False(t, result.Verdict.Accepted)
	}
	// Rejected validations must not consume quota slots.
	assert.Equal(t, h.ledger.Limit(), h.ledger.Remaining(context.Background()))
}

func TestQuotaBlocksBeforeDeviceAccess(t *testing.T) {
	h := newHarness(t, Callbacks{})
	for i := 0; i < 5; i++ {
		h.ledger.RecordUsage(context.Background())
	}

	err := h.session.Start(context.Background())
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, internal_type.StateIdle, h.session.State())
	// The user must not be prompted for the microphone on a blocked attempt.
	assert.Zero(t, h.device.acquires)
}

func TestDeviceUnavailableSurfacedNotRetried(t *testing.T) {
	h := newHarness(t, Callbacks{})
	h.device.acquireErr = internal_capture.ErrDeviceUnavailable

	err := h.session.Start(context.Background())
	assert.ErrorIs(t, err, internal_capture.ErrDeviceUnavailable)
	assert.Equal(t, internal_type.StateIdle, h.session.State())
	assert.Equal(t, 1, h.device.acquires) // exactly one attempt, no retry
}

func TestCancelDiscardsEverything(t *testing.T) {
	var mu sync.Mutex
	resultSeen := false
	h := newHarness(t, Callbacks{
		OnResult: func(Result) {
			mu.Lock()
			resultSeen = true
			mu.Unlock()
		},
	})
	require.NoError(t, h.session.Start(context.Background()))
	h.device.push(t, validWAV())

	require.NoError(t, h.session.Cancel())
	assert.Equal(t, internal_type.StateIdle, h.session.State())
	assert.Equal(t, DefaultBudgetSeconds, h.session.Remaining())
	assert.Equal(t, 1, h.device.releaseCount())

	// No validation ran, no usage recorded.
	mu.Lock()
	assert.False(t, resultSeen)
	mu.Unlock()
	assert.Equal(t, h.ledger.Limit(), h.ledger.Remaining(context.Background()))

	_, err := h.session.Stop()
	assert.ErrorIs(t, err, ErrNotRecording)
}

func TestCountdownAutoStops(t *testing.T) {
	var mu sync.Mutex
	var results []Result
	var countdowns []int
	h := newHarness(t, Callbacks{
		OnCountdown: func(remaining int) {
			mu.Lock()
			countdowns = append(countdowns, remaining)
			mu.Unlock()
		},
		OnResult: func(r Result) {
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		},
	}, WithBudget(3), WithTick(5*time.Millisecond))

	require.NoError(t, h.session.Start(context.Background()))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(results) == 1
	}, time.Second, time.Millisecond, "timeout must finalize like a manual stop")

	mu.Lock()
	assert.Equal(t, internal_type.RejectEmpty, results[0].Verdict.Reason)
	assert.Contains(t, countdowns, 0)
	mu.Unlock()

	assert.Equal(t, internal_type.StateIdle, h.session.State())
	assert.Equal(t, 3, h.session.Remaining())
	assert.Equal(t, 1, h.device.releaseCount())
}

func TestStartWhileActiveFails(t *testing.T) {
	h := newHarness(t, Callbacks{})
	require.NoError(t, h.session.Start(context.Background()))
	assert.ErrorIs(t, h.session.Start(context.Background()), ErrSessionActive)
	require.NoError(t, h.session.Cancel())
}

func TestStopWhileIdleFails(t *testing.T) {
	h := newHarness(t, Callbacks{})
	_, err := h.session.Stop()
	assert.ErrorIs(t, err, ErrNotRecording)
	assert.ErrorIs(t, h.session.Cancel(), ErrNotRecording)
}

func TestContextCancellationAborts(t *testing.T) {
	h := newHarness(t, Callbacks{})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, h.session.Start(ctx))

	cancel()
	assert.Eventually(t, func() bool {
		return h.session.State() == internal_type.StateIdle
	}, time.Second, time.Millisecond)
	assert.Equal(t, 1, h.device.releaseCount())
}

func TestSignalSamplesFlowDuringRecording(t *testing.T) {
	var mu sync.Mutex
	var classes []internal_type.SignalClass
	h := newHarness(t, Callbacks{
		OnSignal: func(s internal_type.SignalSample) {
			mu.Lock()
			classes = append(classes, s.Class)
			mu.Unlock()
		},
	}, WithMonitorOptions(internal_monitor.WithInterval(time.Millisecond)))
	h.device.spectrum.bins = []float32{40, 40, 40, 40}

	require.NoError(t, h.session.Start(context.Background()))
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(classes) >= 3
	}, time.Second, time.Millisecond)

	require.NoError(t, h.session.Cancel())
	mu.Lock()
	for _, c := range classes {
		assert.Equal(t, internal_type.SignalGood, c)
	}
	count := len(classes)
	mu.Unlock()

	// Monitor torn down with the session: no further samples.
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, count, len(classes))
	mu.Unlock()
}
