package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestEmptySnapshot(t *testing.T) {
	now := time.Date(2025, 11, 14, 14, 52, 0, 0, time.UTC)
	s := EmptySnapshot(now)

	if !s.IsEmpty() {
		t.Fatalf("expected empty snapshot, got %+v", s)
	}
	if s.RecentEntries == nil {
		t.Fatalf("expected non-nil entries slice")
	}
	if !s.LastUpdated.Equal(now) {
		t.Fatalf("expected LastUpdated %v, got %v", now, s.LastUpdated)
	}
}

func TestAccountSnapshot_BalanceFor(t *testing.T) {
	s := AccountSnapshot{
		MealSwipes:    decimal.NewFromInt(47),
		DiningDollars: decimal.RequireFromString("120.50"),
		StoredValue:   decimal.RequireFromString("15.25"),
	}

	tests := []struct {
		category Category
		want     decimal.Decimal
	}{
		{CategoryMealSwipes, decimal.NewFromInt(47)},
		{CategoryDiningDollars, decimal.RequireFromString("120.50")},
		{CategoryStoredValue, decimal.RequireFromString("15.25")},
		{CategoryOther, decimal.Zero},
	}

	for _, tt := range tests {
		if got := s.BalanceFor(tt.category); !got.Equal(tt.want) {
			t.Fatalf("BalanceFor(%s) = %s, want %s", tt.category, got, tt.want)
		}
	}

	if s.IsEmpty() {
		t.Fatalf("snapshot with balances must not be empty")
	}
}

func TestLedgerEntry_Flags(t *testing.T) {
	e := LedgerEntry{Amount: decimal.NewFromInt(-1)}
	if !e.IsDebit() || e.HasTimestamp() {
		t.Fatalf("unexpected flags for %+v", e)
	}

	e.OccurredAt = time.Now()
	e.Amount = decimal.NewFromInt(5)
	if e.IsDebit() || !e.HasTimestamp() {
		t.Fatalf("unexpected flags for %+v", e)
	}
}
