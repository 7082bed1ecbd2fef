package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/budgetbloom/cardledger/internal/domain"
)

// SnapshotCache implements usecase.SnapshotCache using Redis.
//
// Every session owns one hash keyed by a digest of its session key, with one field per
// scope. Invalidate drops the whole hash.
type SnapshotCache struct {
	client *redis.Client
	prefix string
}

// NewSnapshotCache creates a new SnapshotCache.
func NewSnapshotCache(client *redis.Client) *SnapshotCache {
	return &SnapshotCache{
		client: client,
		prefix: "cardledger:snapshot:",
	}
}

// Get returns the cached snapshot for scope, or nil on a miss.
func (c *SnapshotCache) Get(ctx context.Context, sessionKey string, scope domain.Scope) (*domain.AccountSnapshot, error) {
	raw, err := c.client.HGet(ctx, c.key(sessionKey), scopeField(scope)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec snapshotRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode cached snapshot: %w", err)
	}

	snapshot := rec.toDomain()
	return &snapshot, nil
}

// Set stores a snapshot and refreshes the session TTL.
func (c *SnapshotCache) Set(ctx context.Context, sessionKey string, scope domain.Scope, snapshot domain.AccountSnapshot, ttl time.Duration) error {
	raw, err := json.Marshal(newSnapshotRecord(snapshot))
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	key := c.key(sessionKey)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, scopeField(scope), raw)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

// Invalidate removes every cached snapshot of a session.
func (c *SnapshotCache) Invalidate(ctx context.Context, sessionKey string) error {
	return c.client.Del(ctx, c.key(sessionKey)).Err()
}

// key never embeds the session key itself.
func (c *SnapshotCache) key(sessionKey string) string {
	sum := sha256.Sum256([]byte(sessionKey))
	return c.prefix + hex.EncodeToString(sum[:])
}

func scopeField(scope domain.Scope) string {
	page := scope.Page
	if page == "" {
		page = domain.PageMain
	}
	if page == domain.PageMain {
		return string(page)
	}
	return strings.Join([]string{string(page), scope.Account, scope.StartDate, scope.EndDate}, "|")
}

type snapshotRecord struct {
	MealSwipes    decimal.Decimal `json:"meal_swipes"`
	DiningDollars decimal.Decimal `json:"dining_dollars"`
	StoredValue   decimal.Decimal `json:"stored_value"`
	LastUpdated   time.Time       `json:"last_updated"`
	RecentEntries []entryRecord   `json:"recent_entries"`
}

type entryRecord struct {
	RawDate        string          `json:"raw_date"`
	OccurredAt     time.Time       `json:"occurred_at"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	RunningBalance decimal.Decimal `json:"running_balance"`
	AccountLabel   string          `json:"account_label"`
}

func newSnapshotRecord(s domain.AccountSnapshot) snapshotRecord {
	rec := snapshotRecord{
		MealSwipes:    s.MealSwipes,
		DiningDollars: s.DiningDollars,
		StoredValue:   s.StoredValue,
		LastUpdated:   s.LastUpdated,
		RecentEntries: make([]entryRecord, len(s.RecentEntries)),
	}
	for i, e := range s.RecentEntries {
		rec.RecentEntries[i] = entryRecord(e)
	}
	return rec
}

func (r snapshotRecord) toDomain() domain.AccountSnapshot {
	s := domain.AccountSnapshot{
		MealSwipes:    r.MealSwipes,
		DiningDollars: r.DiningDollars,
		StoredValue:   r.StoredValue,
		LastUpdated:   r.LastUpdated,
		RecentEntries: make([]domain.LedgerEntry, len(r.RecentEntries)),
	}
	for i, e := range r.RecentEntries {
		s.RecentEntries[i] = domain.LedgerEntry(e)
	}
	return s
}
