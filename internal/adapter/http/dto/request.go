package dto

import (
	"errors"
	"strings"

	"github.com/budgetbloom/cardledger/internal/domain"
)

// ErrAmbiguousInsightSource is returned when a request names both a session and a snapshot.
var ErrAmbiguousInsightSource = errors.New("provide either skey or snapshot, not both")

// InsightRequest asks for insights either for a live session or for a
// snapshot the client already holds.
type InsightRequest struct {
	SessionKey string            `json:"skey,omitempty"`
	Snapshot   *SnapshotResponse `json:"snapshot,omitempty"`
}

// Validate checks that exactly one source is given.
func (r *InsightRequest) Validate() error {
	hasKey := strings.TrimSpace(r.SessionKey) != ""
	if r.Snapshot == nil && !hasKey {
		return domain.ErrMissingSessionKey
	}
	if r.Snapshot != nil && hasKey {
		return ErrAmbiguousInsightSource
	}
	return nil
}
