package extractor

import (
	"github.com/shopspring/decimal"

	"github.com/budgetbloom/cardledger/internal/domain"
)

// FirstOfCategory returns the first balance of category c.
func FirstOfCategory(balances []domain.AccountBalance, c domain.Category) (domain.AccountBalance, bool) {
	for _, b := range balances {
		if b.Category == c {
			return b, true
		}
	}
	return domain.AccountBalance{}, false
}

// MealSwipes returns the first meal plan balance.
func MealSwipes(balances []domain.AccountBalance) (decimal.Decimal, bool) {
	b, ok := FirstOfCategory(balances, domain.CategoryMealSwipes)
	return b.Amount, ok
}

// DiningDollars returns the first dining dollars balance.
func DiningDollars(balances []domain.AccountBalance) (decimal.Decimal, bool) {
	b, ok := FirstOfCategory(balances, domain.CategoryDiningDollars)
	return b.Amount, ok
}

// StoredValue returns the first stored value balance.
func StoredValue(balances []domain.AccountBalance) (decimal.Decimal, bool) {
	b, ok := FirstOfCategory(balances, domain.CategoryStoredValue)
	return b.Amount, ok
}
