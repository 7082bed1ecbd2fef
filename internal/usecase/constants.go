package usecase

import "time"

const (
	// DefaultSnapshotTTL is how long assembled snapshots are cached when no TTL is configured
	DefaultSnapshotTTL = 5 * time.Minute

	// DefaultStatementWindow is the date range requested when a statement scope has no dates
	DefaultStatementWindow = 180 * 24 * time.Hour

	// DefaultTrackerInterval is the polling interval of the periodic tracker
	DefaultTrackerInterval = time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	scopeDateLayout = "2006-01-02"
)

// DefaultHistoryMarkers select the meal plan account in transaction history.
var DefaultHistoryMarkers = []string{"meal", "150"}
