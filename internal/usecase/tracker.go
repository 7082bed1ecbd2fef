package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/budgetbloom/cardledger/internal/domain"
	"github.com/budgetbloom/cardledger/internal/infrastructure/metrics"
)

// SnapshotSource is the part of SnapshotUseCase the tracker polls.
type SnapshotSource interface {
	GetSnapshot(ctx context.Context, input SnapshotInput) (domain.AccountSnapshot, error)
}

// Tracker refreshes a session's snapshot on a fixed interval.
type Tracker struct {
	source   SnapshotSource
	input    SnapshotInput
	onUpdate func(domain.AccountSnapshot)
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	interval time.Duration
}

// TrackerConfig for Tracker.
type TrackerConfig struct {
	Source     SnapshotSource
	SessionKey string
	Scope      domain.Scope
	OnUpdate   func(domain.AccountSnapshot)
	Metrics    *metrics.Metrics
	Logger     zerolog.Logger
	Interval   time.Duration // Polling interval
}

// NewTracker creates a new Tracker.
func NewTracker(cfg TrackerConfig) *Tracker {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultTrackerInterval
	}
	if cfg.OnUpdate == nil {
		cfg.OnUpdate = func(domain.AccountSnapshot) {}
	}

	return &Tracker{
		source:   cfg.Source,
		input:    SnapshotInput{SessionKey: cfg.SessionKey, Scope: cfg.Scope, Refresh: true},
		onUpdate: cfg.OnUpdate,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		interval: cfg.Interval,
	}
}

// Start refreshes immediately and then once per interval.
// It runs continuously until the context is cancelled.
func (t *Tracker) Start(ctx context.Context) error {
	t.logger.Info().
		Str("session", domain.MaskSessionKey(t.input.SessionKey)).
		Dur("interval", t.interval).
		Msg("tracker started")

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			t.logger.Info().Msg("tracker shutting down")
			return ctx.Err()
		case <-ticker.C:
			t.refresh(ctx)
		}
	}
}

// refresh fetches one snapshot. Failures are logged and the tick is skipped.
func (t *Tracker) refresh(ctx context.Context) {
	snapshot, err := t.source.GetSnapshot(ctx, t.input)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		t.record("error")
		t.logger.Error().Err(err).Msg("tracker refresh failed")
		return
	}

	t.record("ok")
	t.onUpdate(snapshot)
}

func (t *Tracker) record(outcome string) {
	if t.metrics != nil {
		t.metrics.TrackerRefreshes.WithLabelValues(outcome).Inc()
	}
}
