package loader

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/budgetbloom/cardledger/internal/domain"
	"github.com/budgetbloom/cardledger/internal/infrastructure/metrics"
	"github.com/budgetbloom/cardledger/internal/usecase"
)

// RetryingLoader wraps a DocumentLoader with exponential backoff on transient failures.
type RetryingLoader struct {
	next            usecase.DocumentLoader
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	metrics         *metrics.Metrics
	logger          zerolog.Logger
}

// NewRetryingLoader creates a RetryingLoader with default backoff settings.
func NewRetryingLoader(next usecase.DocumentLoader, maxRetries int, m *metrics.Metrics, logger zerolog.Logger) *RetryingLoader {
	return &RetryingLoader{
		next:            next,
		maxRetries:      maxRetries,
		initialInterval: 200 * time.Millisecond,
		maxInterval:     2 * time.Second,
		maxElapsedTime:  15 * time.Second,
		metrics:         m,
		logger:          logger,
	}
}

// WithIntervals overrides the backoff intervals.
func (r *RetryingLoader) WithIntervals(initial, maxInterval time.Duration) *RetryingLoader {
	r.initialInterval = initial
	r.maxInterval = maxInterval
	return r
}

// Fetch implements usecase.DocumentLoader.
func (r *RetryingLoader) Fetch(ctx context.Context, sessionKey string, scope domain.Scope) (domain.RawDocument, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	var doc domain.RawDocument
	retryCount := 0

	err := backoff.Retry(func() error {
		var err error
		doc, err = r.next.Fetch(ctx, sessionKey, scope)
		if err == nil {
			return nil
		}

		if !isRetryable(err) {
			return backoff.Permanent(err)
		}

		retryCount++
		if retryCount > r.maxRetries {
			return backoff.Permanent(err)
		}

		if r.metrics != nil {
			r.metrics.FetchRetries.Inc()
		}
		r.logger.Warn().
			Err(err).
			Int("retry", retryCount).
			Msg("transient fetch error, retrying")

		return err
	}, backoff.WithContext(b, ctx))

	return doc, err
}

// isRetryable reports whether a fetch error is worth another attempt:
// network failures, 429 and 5xx responses. Oversized pages are not retried.
func isRetryable(err error) bool {
	var te *domain.TransportError
	if !errors.As(err, &te) {
		return false
	}

	switch te.Kind {
	case domain.TransportFetchFailed:
		return !errors.Is(te.Err, context.Canceled) && !errors.Is(te.Err, ErrBodyTooLarge)
	case domain.TransportBadStatus:
		return te.StatusCode == http.StatusTooManyRequests || te.StatusCode >= 500
	}
	return false
}
