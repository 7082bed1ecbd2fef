package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is the semantic kind of a campus card balance.
type Category string

const (
	CategoryMealSwipes    Category = "meal_swipes"
	CategoryDiningDollars Category = "dining_dollars"
	CategoryStoredValue   Category = "stored_value"
	CategoryOther         Category = "other"
)

// AccountBalance is one account's current balance as read from a balance summary row.
type AccountBalance struct {
	AccountLabel string
	Amount       decimal.Decimal
	Category     Category
	ObservedAt   time.Time
}
