package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxRecentEntries bounds AccountSnapshot.RecentEntries.
const MaxRecentEntries = 10

// AccountSnapshot is the aggregate exposed to the UI and to the insight generator.
// It is always fully populated; a failed extraction yields zero balances and no entries.
type AccountSnapshot struct {
	MealSwipes    decimal.Decimal
	DiningDollars decimal.Decimal
	StoredValue   decimal.Decimal
	LastUpdated   time.Time
	RecentEntries []LedgerEntry
}

// EmptySnapshot returns the all-zero snapshot stamped with now.
func EmptySnapshot(now time.Time) AccountSnapshot {
	return AccountSnapshot{
		MealSwipes:    decimal.Zero,
		DiningDollars: decimal.Zero,
		StoredValue:   decimal.Zero,
		LastUpdated:   now,
		RecentEntries: []LedgerEntry{},
	}
}

// BalanceFor returns the snapshot amount for a category. CategoryOther always yields zero.
func (s AccountSnapshot) BalanceFor(c Category) decimal.Decimal {
	switch c {
	case CategoryMealSwipes:
		return s.MealSwipes
	case CategoryDiningDollars:
		return s.DiningDollars
	case CategoryStoredValue:
		return s.StoredValue
	default:
		return decimal.Zero
	}
}

// IsEmpty reports whether the snapshot carries no balances and no history.
// At this layer an empty snapshot is indistinguishable from genuinely zero balances.
func (s AccountSnapshot) IsEmpty() bool {
	return s.MealSwipes.IsZero() && s.DiningDollars.IsZero() && s.StoredValue.IsZero() && len(s.RecentEntries) == 0
}
