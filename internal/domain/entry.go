package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry represents a single debit or credit row against a campus account.
// Debits are negative, deposits are non-negative.
type LedgerEntry struct {
	RawDate        string
	OccurredAt     time.Time // zero when RawDate could not be parsed
	Description    string
	Amount         decimal.Decimal
	RunningBalance decimal.Decimal
	AccountLabel   string
}

// HasTimestamp reports whether the entry date was parsed.
func (e LedgerEntry) HasTimestamp() bool {
	return !e.OccurredAt.IsZero()
}

// IsDebit reports whether the entry reduced the balance.
func (e LedgerEntry) IsDebit() bool {
	return e.Amount.IsNegative()
}
