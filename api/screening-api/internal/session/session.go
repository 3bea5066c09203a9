// Copyright (c) 2025 VitalVoice
//
// Licensed under GPL-2.0 with VitalVoice Additional Terms.
// See LICENSE.md for commercial usage.

package internal_session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	internal_capture "github.com/vitalvoice/api/screening-api/internal/capture"
	internal_ledger "github.com/vitalvoice/api/screening-api/internal/ledger"
	internal_monitor "github.com/vitalvoice/api/screening-api/internal/monitor"
	internal_type "github.com/vitalvoice/api/screening-api/internal/type"
	internal_validator "github.com/vitalvoice/api/screening-api/internal/validator"
	"github.com/vitalvoice/pkg/commons"
)

var (
	// ErrSessionActive is returned by Start while a recording is in flight.
	ErrSessionActive = errors.New("a capture session is already active")
	// ErrQuotaExceeded is returned by Start when the usage ledger blocks the
	// attempt. Checked before any device access so the user is never prompted
	// for microphone permission on an attempt that would be blocked anyway.
	ErrQuotaExceeded = errors.New("daily analysis quota exceeded")
	// ErrNotRecording is returned by Stop/Cancel outside their valid states.
	ErrNotRecording = errors.New("no recording in progress")
	// ErrSessionCanceled is returned by Start when the session was canceled
	// while the permission prompt was pending.
	ErrSessionCanceled = errors.New("capture session canceled")
)

// DefaultBudgetSeconds is the fixed recording ceiling.
const DefaultBudgetSeconds = 30

// Result is the outcome of one finalized recording attempt. Artifact is only
// populated for accepted verdicts; rejected audio never survives.
type Result struct {
	SessionID string
	Verdict   internal_type.Verdict
	Artifact  internal_type.AudioArtifact
}

// Callbacks deliver the session's discrete events to the hosting surface.
// All callbacks are optional and are invoked from the session's goroutine.
type Callbacks struct {
	OnState     func(internal_type.CaptureState)
	OnCountdown func(remainingSeconds int)
	OnSignal    internal_monitor.SampleFunc
	OnResult    func(Result)
}

type Option func(*Session)

// WithBudget overrides the recording ceiling in seconds.
func WithBudget(seconds int) Option {
	return func(s *Session) { s.budget = seconds }
}

// WithTick overrides the countdown tick, which is one second in production.
func WithTick(d time.Duration) Option {
	return func(s *Session) { s.tick = d }
}

// WithMonitorOptions forwards options to the attempt's signal monitor.
func WithMonitorOptions(opts ...internal_monitor.Option) Option {
	return func(s *Session) { s.monitorOpts = opts }
}

// Session owns the device-capture lifecycle for one recording at a time:
//
//	Idle → Armed (permission requested) → Recording → Finalizing → Idle
//
// Cancel is reachable from Armed or Recording and returns directly to Idle,
// discarding partial audio and releasing the device immediately. The
// countdown timer and the signal monitor are torn down on every exit path.
type Session struct {
	logger    commons.Logger
	ledger    *internal_ledger.Ledger
	validator *internal_validator.Validator
	device    internal_capture.Device
	cb        Callbacks

	budget      int
	tick        time.Duration
	monitorOpts []internal_monitor.Option

	mu        sync.Mutex
	state     internal_type.CaptureState
	remaining int
	attemptID string
	canceled  bool
	rec       *internal_capture.Recorder
	mon       *internal_monitor.Monitor
	stopCh    chan struct{}
	cancelCh  chan struct{}
	resultCh  chan Result
	idleCh    chan struct{}
}

// NewSession wires a capture session over its collaborators. One Session may
// run many attempts, but never more than one at a time.
func NewSession(
	logger commons.Logger,
	ledger *internal_ledger.Ledger,
	validator *internal_validator.Validator,
	device internal_capture.Device,
	cb Callbacks,
	opts ...Option,
) *Session {
	s := &Session{
		logger:    logger,
		ledger:    ledger,
		validator: validator,
		device:    device,
		cb:        cb,
		budget:    DefaultBudgetSeconds,
		tick:      time.Second,
		state:     internal_type.StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.remaining = s.budget
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() internal_type.CaptureState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Remaining returns the countdown value in seconds.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Start begins a recording attempt. The usage ledger authorizes first, then
// the device is acquired (Armed), then capture and the signal monitor run
// concurrently until Stop, Cancel, timeout or context cancellation.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != internal_type.StateIdle {
		s.mu.Unlock()
		return ErrSessionActive
	}
	s.canceled = false
	s.state = internal_type.StateArmed
	s.mu.Unlock()

	if !s.ledger.CheckQuota(ctx) {
		s.toIdle()
		return ErrQuotaExceeded
	}
	s.emitState(internal_type.StateArmed)

	if err := s.device.Acquire(ctx); err != nil {
		s.toIdle()
		return fmt.Errorf("failed to acquire input device: %w", err)
	}

	s.mu.Lock()
	if s.canceled {
		s.mu.Unlock()
		s.device.Release()
		s.toIdle()
		return ErrSessionCanceled
	}
	s.state = internal_type.StateRecording
	s.remaining = s.budget
	s.attemptID = uuid.New().String()
	s.rec = internal_capture.NewRecorder()
	s.mon = internal_monitor.NewMonitor(s.logger, s.device.Spectrum(), s.cb.OnSignal, s.monitorOpts...)
	s.stopCh = make(chan struct{}, 1)
	s.cancelCh = make(chan struct{}, 1)
	s.resultCh = make(chan Result, 1)
	s.idleCh = make(chan struct{})
	mon, stopCh, cancelCh, idleCh := s.mon, s.stopCh, s.cancelCh, s.idleCh
	attempt := s.attemptID
	s.mu.Unlock()

	mon.Start()
	s.emitState(internal_type.StateRecording)
	s.logger.Infof("recording started: attempt=%s, budget=%ds", attempt, s.budget)

	go s.run(ctx, stopCh, cancelCh, idleCh)
	return nil
}

// Stop finalizes the recording: monitor stopped, device released, chunks
// concatenated into one artifact and validated. It blocks until the verdict
// is known. Valid only while Recording.
func (s *Session) Stop() (Result, error) {
	s.mu.Lock()
	if s.state != internal_type.StateRecording {
		s.mu.Unlock()
		return Result{}, ErrNotRecording
	}
	stopCh, resultCh, idleCh := s.stopCh, s.resultCh, s.idleCh
	s.mu.Unlock()

	select {
	case stopCh <- struct{}{}:
	default:
		// Finalize already in flight (timeout won the race).
	}

	select {
	case result := <-resultCh:
		return result, nil
	case <-idleCh:
		// The attempt ended without a verdict for us: a concurrent cancel
		// (or context cancellation) won the race.
		select {
		case result := <-resultCh:
			return result, nil
		default:
			return Result{}, ErrNotRecording
		}
	}
}

// Cancel aborts the attempt from Armed or Recording: no validation, no usage
// recorded, all partial audio discarded. It returns once the device has been
// released and the session is Idle again.
func (s *Session) Cancel() error {
	s.mu.Lock()
	switch s.state {
	case internal_type.StateArmed:
		// Permission prompt still pending; Start observes the flag and backs
		// out after Acquire returns.
		s.canceled = true
		s.mu.Unlock()
		return nil
	case internal_type.StateRecording:
		cancelCh, idleCh := s.cancelCh, s.idleCh
		s.mu.Unlock()
		select {
		case cancelCh <- struct{}{}:
		default:
		}
		<-idleCh
		return nil
	}
	s.mu.Unlock()
	return ErrNotRecording
}

// run is the attempt's event loop: chunk intake, 1Hz countdown, stop/cancel
// signals. Exactly one of finalize or abort runs, then the loop exits.
func (s *Session) run(ctx context.Context, stopCh, cancelCh <-chan struct{}, idleCh chan struct{}) {
	defer close(idleCh)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	chunks := s.device.Chunks()
	for {
		select {
		case <-ctx.Done():
			s.abort("context canceled")
			return

		case <-cancelCh:
			s.abort("user canceled")
			return

		case <-stopCh:
			s.finalize(ctx)
			return

		case data, ok := <-chunks:
			if !ok {
				chunks = nil
				continue
			}
			s.rec.Push(data)

		case <-ticker.C:
			s.mu.Lock()
			s.remaining--
			remaining := s.remaining
			s.mu.Unlock()
			if s.cb.OnCountdown != nil {
				s.cb.OnCountdown(remaining)
			}
			if remaining <= 0 {
				// Timeout is identical to a manual stop.
				s.logger.Infof("recording budget exhausted, auto-stopping")
				s.finalize(ctx)
				return
			}
		}
	}
}

// finalize tears down capture and produces the attempt's Result. Rejected
// artifacts are discarded here; they never reach the caller, the ledger or
// the remote collaborator.
func (s *Session) finalize(ctx context.Context) {
	s.mu.Lock()
	s.state = internal_type.StateFinalizing
	mon, rec, resultCh := s.mon, s.rec, s.resultCh
	attempt := s.attemptID
	s.mu.Unlock()
	s.emitState(internal_type.StateFinalizing)

	mon.Stop()
	s.device.Release()
	// The device flushes its last chunk on release; drain it.
	for data := range s.device.Chunks() {
		rec.Push(data)
	}

	artifact := rec.Finalize(s.device.MimeType())
	verdict := s.validator.Validate(ctx, artifact)

	result := Result{SessionID: attempt, Verdict: verdict}
	if verdict.Accepted {
		result.Artifact = artifact
		s.logger.Infof("recording accepted: attempt=%s, %d bytes", attempt, len(artifact.Data))
	} else {
		s.logger.Infof("recording rejected: attempt=%s, reason=%s", attempt, verdict.Reason)
	}

	s.toIdle()
	resultCh <- result
	if s.cb.OnResult != nil {
		s.cb.OnResult(result)
	}
}

// abort is the cancel path: immediate and total. The device is released, the
// monitor stopped and partial audio dropped before the session reads Idle.
func (s *Session) abort(cause string) {
	s.mu.Lock()
	mon, rec := s.mon, s.rec
	attempt := s.attemptID
	s.mu.Unlock()

	mon.Stop()
	s.device.Release()
	rec.Discard()
	s.toIdle()
	s.logger.Infof("recording canceled: attempt=%s (%s)", attempt, cause)
}

// toIdle resets the working state: countdown back to the full budget so the
// caller can see they are free to try again immediately.
func (s *Session) toIdle() {
	s.mu.Lock()
	s.state = internal_type.StateIdle
	s.remaining = s.budget
	s.rec = nil
	s.mon = nil
	s.mu.Unlock()
	s.emitState(internal_type.StateIdle)
}

func (s *Session) emitState(state internal_type.CaptureState) {
	if s.cb.OnState != nil {
		s.cb.OnState(state)
	}
}
