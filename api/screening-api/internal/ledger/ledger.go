// Copyright (c) 2025 VitalVoice
//
// Licensed under GPL-2.0 with VitalVoice Additional Terms.
// See LICENSE.md for commercial usage.

package internal_ledger

import (
	"context"
	"time"

	"github.com/vitalvoice/pkg/commons"
	"github.com/vitalvoice/pkg/configs"
)

// Ledger enforces the rolling daily cap on remote-analysis submissions,
// scoped to the local device. Only instants inside the trailing window count;
// older entries are pruned on every read and the pruned list is written back.
//
// Storage failures never block the user: CheckQuota fails open and
// RecordUsage logs and continues. A transient storage error must not turn
// into a permanent lockout.
type Ledger struct {
	store  Store
	logger commons.Logger
	limit  int
	window time.Duration
	// clock is injectable for testing; defaults to time.Now.
	clock func() time.Time
}

// NewLedger creates the usage ledger over the given store.
func NewLedger(store Store, cfg configs.QuotaConfig, logger commons.Logger) *Ledger {
	return &Ledger{
		store:  store,
		logger: logger,
		limit:  cfg.DailyLimit,
		window: time.Duration(cfg.WindowHours) * time.Hour,
		clock:  time.Now,
	}
}

// CheckQuota reports whether another submission is allowed. It prunes expired
// instants and rewrites the stored list even on a pure check, so repeated
// checks are idempotent and the list never grows without usage. Must return
// true before a recording session or upload submission may proceed; callers
// seeing false must block submission without consuming a slot.
func (l *Ledger) CheckQuota(ctx context.Context) bool {
	active, ok := l.pruneAndPersist(ctx)
	if !ok {
		// Fail open: a broken persistence layer must not block screening.
		return true
	}
	return len(active) < l.limit
}

// Remaining returns how many submissions are left in the active window,
// never negative. Fails open to the full limit on storage errors.
func (l *Ledger) Remaining(ctx context.Context) int {
	active, ok := l.pruneAndPersist(ctx)
	if !ok {
		return l.limit
	}
	remaining := l.limit - len(active)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Limit returns the configured submission cap.
func (l *Ledger) Limit() int { return l.limit }

// RecordUsage appends the current instant to the persisted log. Called
// exactly once per submission actually sent to the remote analysis
// collaborator — never for rejected recordings and never for the free
// sample-data path. Write failures are logged and swallowed.
func (l *Ledger) RecordUsage(ctx context.Context) {
	instants, err := l.store.Load(ctx)
	if err != nil {
		l.logger.Warnf("usage ledger read failed, submission not recorded: %v", err)
		return
	}
	active := l.prune(instants)
	active = append(active, l.clock())
	if err := l.store.Save(ctx, active); err != nil {
		l.logger.Warnf("usage ledger write failed, submission not recorded: %v", err)
		return
	}
	l.logger.Debugf("usage recorded: %d of %d slots used", len(active), l.limit)
}

// pruneAndPersist loads, prunes and writes back the usage log. The second
// return is false when the store is unavailable.
func (l *Ledger) pruneAndPersist(ctx context.Context) ([]time.Time, bool) {
	instants, err := l.store.Load(ctx)
	if err != nil {
		l.logger.Warnf("usage ledger read failed, failing open: %v", err)
		return nil, false
	}
	active := l.prune(instants)
	if err := l.store.Save(ctx, active); err != nil {
		l.logger.Warnf("usage ledger prune write-back failed: %v", err)
	}
	return active, true
}

func (l *Ledger) prune(instants []time.Time) []time.Time {
	cutoff := l.clock().Add(-l.window)
	active := make([]time.Time, 0, len(instants))
	for _, t := range instants {
		if t.After(cutoff) {
			active = append(active, t)
		}
	}
	return active
}
