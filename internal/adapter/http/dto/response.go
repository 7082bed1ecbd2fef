package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/budgetbloom/cardledger/internal/domain"
)

// SnapshotResponse represents an account snapshot in API responses.
type SnapshotResponse struct {
	MealSwipes    decimal.Decimal `json:"mealSwipes"`
	DiningDollars decimal.Decimal `json:"diningDollars"`
	StoredValue   decimal.Decimal `json:"storedValue"`
	LastUpdated   time.Time       `json:"lastUpdated"`
	RecentEntries []EntryResponse `json:"recentEntries"`
}

// EntryResponse represents a ledger entry in API responses.
// OccurredAt is null when the source date could not be parsed; Date always
// carries the text as it appeared on the page.
type EntryResponse struct {
	Date           string          `json:"date"`
	OccurredAt     *time.Time      `json:"occurredAt"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	RunningBalance decimal.Decimal `json:"balance"`
	Account        string          `json:"account"`
}

// SnapshotFromDomain converts a domain snapshot to response.
func SnapshotFromDomain(s domain.AccountSnapshot) *SnapshotResponse {
	return &SnapshotResponse{
		MealSwipes:    s.MealSwipes,
		DiningDollars: s.DiningDollars,
		StoredValue:   s.StoredValue,
		LastUpdated:   s.LastUpdated,
		RecentEntries: EntriesFromDomain(s.RecentEntries),
	}
}

// ToDomain converts a snapshot payload back to the domain type.
// Entries past domain.MaxRecentEntries are dropped.
func (s *SnapshotResponse) ToDomain() domain.AccountSnapshot {
	recent := s.RecentEntries
	if len(recent) > domain.MaxRecentEntries {
		recent = recent[:domain.MaxRecentEntries]
	}

	entries := make([]domain.LedgerEntry, len(recent))
	for i, e := range recent {
		entry := domain.LedgerEntry{
			RawDate:        e.Date,
			Description:    e.Description,
			Amount:         e.Amount,
			RunningBalance: e.RunningBalance,
			AccountLabel:   e.Account,
		}
		if e.OccurredAt != nil {
			entry.OccurredAt = *e.OccurredAt
		}
		entries[i] = entry
	}

	return domain.AccountSnapshot{
		MealSwipes:    s.MealSwipes,
		DiningDollars: s.DiningDollars,
		StoredValue:   s.StoredValue,
		LastUpdated:   s.LastUpdated,
		RecentEntries: entries,
	}
}

// EntryFromDomain converts a domain ledger entry to response.
func EntryFromDomain(e domain.LedgerEntry) EntryResponse {
	resp := EntryResponse{
		Date:           e.RawDate,
		Description:    e.Description,
		Amount:         e.Amount,
		RunningBalance: e.RunningBalance,
		Account:        e.AccountLabel,
	}
	if e.HasTimestamp() {
		at := e.OccurredAt
		resp.OccurredAt = &at
	}
	return resp
}

// EntriesFromDomain converts domain ledger entries to responses.
func EntriesFromDomain(entries []domain.LedgerEntry) []EntryResponse {
	result := make([]EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// BalanceResponse represents one extracted account balance.
type BalanceResponse struct {
	Account    string          `json:"account"`
	Amount     decimal.Decimal `json:"amount"`
	Category   domain.Category `json:"category"`
	ObservedAt time.Time       `json:"observedAt"`
}

// BalancesFromDomain converts domain balances to responses.
func BalancesFromDomain(balances []domain.AccountBalance) []BalanceResponse {
	result := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		result[i] = BalanceResponse{
			Account:    b.AccountLabel,
			Amount:     b.Amount,
			Category:   b.Category,
			ObservedAt: b.ObservedAt,
		}
	}
	return result
}

// HistoryResponse represents transaction history in API responses.
type HistoryResponse struct {
	Entries []EntryResponse `json:"entries"`
	Count   int             `json:"count"`
}

// HistoryFromDomain converts history entries to response.
func HistoryFromDomain(entries []domain.LedgerEntry) *HistoryResponse {
	return &HistoryResponse{
		Entries: EntriesFromDomain(entries),
		Count:   len(entries),
	}
}

// InsightResponse represents generated insights in API responses.
type InsightResponse struct {
	ID          string               `json:"id"`
	Insights    []domain.InsightItem `json:"insights"`
	Summary     string               `json:"summary"`
	HabitStory  string               `json:"habitStory,omitempty"`
	GeneratedAt time.Time            `json:"generatedAt"`
}

// InsightFromDomain converts a domain insight to response.
func InsightFromDomain(i *domain.Insight) *InsightResponse {
	items := i.Items
	if items == nil {
		items = []domain.InsightItem{}
	}
	return &InsightResponse{
		ID:          i.ID,
		Insights:    items,
		Summary:     i.Summary,
		HabitStory:  i.HabitStory,
		GeneratedAt: i.GeneratedAt,
	}
}

// HealthResponse represents a liveness or readiness probe result.
type HealthResponse struct {
	OK     bool   `json:"ok"`
	Status string `json:"status"`
	Redis  string `json:"redis,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
