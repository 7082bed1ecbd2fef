package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/budgetbloom/cardledger/internal/domain"
	"github.com/budgetbloom/cardledger/internal/infrastructure/metrics"
)

// SnapshotUseCase runs the fetch, extract and assemble pipeline.
type SnapshotUseCase struct {
	loader    DocumentLoader
	extractor Extractor
	cache     SnapshotCache
	cacheTTL  time.Duration
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

// SnapshotConfig configures a SnapshotUseCase. Cache and Metrics are optional.
type SnapshotConfig struct {
	Loader    DocumentLoader
	Extractor Extractor
	Cache     SnapshotCache
	CacheTTL  time.Duration
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
	Now       func() time.Time
}

// NewSnapshotUseCase creates a new SnapshotUseCase.
func NewSnapshotUseCase(cfg SnapshotConfig) *SnapshotUseCase {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultSnapshotTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &SnapshotUseCase{
		loader:    cfg.Loader,
		extractor: cfg.Extractor,
		cache:     cfg.Cache,
		cacheTTL:  cfg.CacheTTL,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
}

// SnapshotInput represents input for building a snapshot.
type SnapshotInput struct {
	SessionKey string
	Scope      domain.Scope
	Refresh    bool // bypass the cache
}

// GetSnapshot returns the assembled snapshot for a session.
//
// Transport failures are returned as errors together with the empty snapshot, so a
// caller can always render something and still tell "no data" from "fetch failed".
func (uc *SnapshotUseCase) GetSnapshot(ctx context.Context, input SnapshotInput) (domain.AccountSnapshot, error) {
	start := uc.now()

	if err := domain.ValidateSessionKey(input.SessionKey); err != nil {
		return domain.EmptySnapshot(start), err
	}

	scope, err := uc.normalizeScope(input.Scope, start)
	if err != nil {
		return domain.EmptySnapshot(start), err
	}

	log := uc.logger.With().
		Str("session", domain.MaskSessionKey(input.SessionKey)).
		Str("page", string(scope.Page)).
		Logger()

	if !input.Refresh {
		if cached, ok := uc.cached(ctx, input.SessionKey, scope, log); ok {
			return cached, nil
		}
	}

	doc, err := uc.loader.Fetch(ctx, input.SessionKey, scope)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot fetch failed")
		return domain.EmptySnapshot(start), fmt.Errorf("fetch snapshot: %w", err)
	}

	balances, entries := uc.extractor.Extract(doc)
	snapshot := Assemble(balances, entries, uc.now())

	if uc.metrics != nil {
		uc.metrics.BalancesExtracted.Add(float64(len(balances)))
		uc.metrics.EntriesExtracted.Add(float64(len(entries)))
		if snapshot.IsEmpty() {
			uc.metrics.EmptySnapshots.Inc()
		}
		uc.metrics.SnapshotDuration.Observe(time.Since(start).Seconds())
	}

	log.Info().
		Str("document_id", doc.ID).
		Int("balances", len(balances)).
		Int("entries", len(entries)).
		Msg("snapshot assembled")

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, input.SessionKey, scope, snapshot, uc.cacheTTL); err != nil {
			uc.recordCache("set", "error")
			log.Warn().Err(err).Msg("failed to cache snapshot")
		} else {
			uc.recordCache("set", "ok")
		}
	}

	return snapshot, nil
}

// Invalidate drops every cached snapshot of a session.
func (uc *SnapshotUseCase) Invalidate(ctx context.Context, sessionKey string) error {
	if err := domain.ValidateSessionKey(sessionKey); err != nil {
		return err
	}
	if uc.cache == nil {
		return nil
	}

	if err := uc.cache.Invalidate(ctx, sessionKey); err != nil {
		uc.recordCache("invalidate", "error")
		return fmt.Errorf("invalidate snapshot: %w", err)
	}
	uc.recordCache("invalidate", "ok")

	return nil
}

// HistoryInput represents input for fetching transaction history.
type HistoryInput struct {
	SessionKey string
	Account    string
	StartDate  string
	EndDate    string
	// Markers filter entries by account label substring. Nil selects DefaultHistoryMarkers;
	// an empty slice disables filtering.
	Markers []string
	Limit   int
}

// History fetches the statement ledger, falling back to the balance page when the
// statement page cannot be fetched, and returns matching entries newest first.
func (uc *SnapshotUseCase) History(ctx context.Context, input HistoryInput) ([]domain.LedgerEntry, error) {
	if err := domain.ValidateSessionKey(input.SessionKey); err != nil {
		return nil, err
	}

	scope, err := uc.normalizeScope(domain.Scope{
		Page:      domain.PageStatement,
		Account:   input.Account,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}, uc.now())
	if err != nil {
		return nil, err
	}

	log := uc.logger.With().Str("session", domain.MaskSessionKey(input.SessionKey)).Logger()

	doc, err := uc.loader.Fetch(ctx, input.SessionKey, scope)
	if err != nil {
		if !errors.Is(err, domain.ErrTransport) {
			return nil, fmt.Errorf("fetch statement: %w", err)
		}
		log.Warn().Err(err).Msg("statement page unavailable, using balance page")

		doc, err = uc.loader.Fetch(ctx, input.SessionKey, domain.Scope{Page: domain.PageMain})
		if err != nil {
			return nil, fmt.Errorf("fetch balance page: %w", err)
		}
	}

	_, entries := uc.extractor.Extract(doc)

	markers := input.Markers
	if markers == nil {
		markers = DefaultHistoryMarkers
	}
	filtered := FilterByAccount(entries, markers)

	history := SortNewestFirst(filtered)
	if input.Limit > 0 && len(history) > input.Limit {
		history = history[:input.Limit]
	}

	log.Debug().
		Str("document_id", doc.ID).
		Int("extracted", len(entries)).
		Int("returned", len(history)).
		Msg("history assembled")

	return history, nil
}

// FilterByAccount keeps entries whose account label contains any marker, case-insensitively.
// No markers keeps everything.
func FilterByAccount(entries []domain.LedgerEntry, markers []string) []domain.LedgerEntry {
	if len(markers) == 0 {
		return entries
	}

	result := make([]domain.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		label := strings.ToLower(e.AccountLabel)
		for _, m := range markers {
			if m != "" && strings.Contains(label, strings.ToLower(m)) {
				result = append(result, e)
				break
			}
		}
	}

	return result
}

func (uc *SnapshotUseCase) cached(ctx context.Context, sessionKey string, scope domain.Scope, log zerolog.Logger) (domain.AccountSnapshot, bool) {
	if uc.cache == nil {
		return domain.AccountSnapshot{}, false
	}

	snapshot, err := uc.cache.Get(ctx, sessionKey, scope)
	switch {
	case err != nil:
		uc.recordCache("get", "error")
		log.Warn().Err(err).Msg("snapshot cache read failed")
		return domain.AccountSnapshot{}, false
	case snapshot == nil:
		uc.recordCache("get", "miss")
		return domain.AccountSnapshot{}, false
	default:
		uc.recordCache("get", "hit")
		log.Debug().Msg("snapshot served from cache")
		return *snapshot, true
	}
}

func (uc *SnapshotUseCase) recordCache(operation, result string) {
	if uc.metrics != nil {
		uc.metrics.CacheOperations.WithLabelValues(operation, result).Inc()
	}
}

// normalizeScope validates the scope and fills a default date window for statements.
func (uc *SnapshotUseCase) normalizeScope(scope domain.Scope, now time.Time) (domain.Scope, error) {
	scope, err := scope.Normalize()
	if err != nil {
		return scope, err
	}
	if scope.Page != domain.PageStatement {
		return scope, nil
	}

	if scope.EndDate == "" {
		scope.EndDate = now.Format(scopeDateLayout)
	}
	if scope.StartDate == "" {
		end, err := time.Parse(scopeDateLayout, scope.EndDate)
		if err != nil {
			return scope, fmt.Errorf("%w: %v", domain.ErrInvalidScope, err)
		}
		scope.StartDate = end.Add(-DefaultStatementWindow).Format(scopeDateLayout)
	}

	return scope, nil
}
