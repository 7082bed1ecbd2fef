package usecase

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/budgetbloom/cardledger/internal/domain"
)

// Assemble merges extracted balances and entries into one snapshot.
//
// The first balance seen for a category wins. Categories without a balance are zero.
// RecentEntries holds at most domain.MaxRecentEntries entries, newest first, with
// undated entries last. LastUpdated is the latest ObservedAt of the picked balances, or now.
func Assemble(balances []domain.AccountBalance, entries []domain.LedgerEntry, now time.Time) domain.AccountSnapshot {
	snapshot := domain.EmptySnapshot(now)

	picked := make(map[domain.Category]bool, 3)
	var latest time.Time

	for _, b := range balances {
		if b.Category == domain.CategoryOther || picked[b.Category] {
			continue
		}
		picked[b.Category] = true

		if b.ObservedAt.After(latest) {
			latest = b.ObservedAt
		}

		amount := b.Amount
		if amount.IsNegative() {
			amount = decimal.Zero
		}

		switch b.Category {
		case domain.CategoryMealSwipes:
			snapshot.MealSwipes = amount
		case domain.CategoryDiningDollars:
			snapshot.DiningDollars = amount
		case domain.CategoryStoredValue:
			snapshot.StoredValue = amount
		}
	}

	if !latest.IsZero() {
		snapshot.LastUpdated = latest
	}

	recent := SortNewestFirst(entries)
	if len(recent) > domain.MaxRecentEntries {
		recent = recent[:domain.MaxRecentEntries]
	}
	snapshot.RecentEntries = recent

	return snapshot
}

// SortNewestFirst returns a copy of entries ordered by OccurredAt descending.
// Undated entries sort as oldest; ties keep document order.
func SortNewestFirst(entries []domain.LedgerEntry) []domain.LedgerEntry {
	sorted := make([]domain.LedgerEntry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.HasTimestamp() != b.HasTimestamp() {
			return a.HasTimestamp()
		}
		return a.OccurredAt.After(b.OccurredAt)
	})

	return sorted
}
