package usecase

import (
	"context"
	"time"

	"github.com/budgetbloom/cardledger/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// DocumentLoader fetches one statement page for a session.
// Failures are reported as *domain.TransportError; it never retries.
type DocumentLoader interface {
	Fetch(ctx context.Context, sessionKey string, scope domain.Scope) (domain.RawDocument, error)
}

// Extractor turns a fetched document into balances and ledger entries. It never fails.
type Extractor interface {
	Extract(doc domain.RawDocument) ([]domain.AccountBalance, []domain.LedgerEntry)
}

// SnapshotCache stores assembled snapshots per session and scope.
// Get returns nil without error on a miss.
type SnapshotCache interface {
	Get(ctx context.Context, sessionKey string, scope domain.Scope) (*domain.AccountSnapshot, error)
	Set(ctx context.Context, sessionKey string, scope domain.Scope, snapshot domain.AccountSnapshot, ttl time.Duration) error
	Invalidate(ctx context.Context, sessionKey string) error
}

// TextGenerator is the text-generation collaborator used for insights.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
