package extractor_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgetbloom/cardledger/internal/adapter/htmldom"
	"github.com/budgetbloom/cardledger/internal/domain"
	"github.com/budgetbloom/cardledger/internal/extractor"
	"github.com/budgetbloom/cardledger/internal/usecase"
)

var fixedNow = time.Date(2025, time.November, 16, 8, 0, 0, 0, time.UTC)

func newExtractor(t *testing.T, mutate ...func(*extractor.Options)) *extractor.Extractor {
	t.Helper()

	opts := extractor.DefaultOptions()
	opts.Location = time.UTC
	opts.Now = func() time.Time { return fixedNow }
	for _, m := range mutate {
		m(&opts)
	}

	return extractor.New(htmldom.NewParser(), opts, zerolog.Nop())
}

func fixture(t *testing.T, name string) domain.RawDocument {
	t.Helper()

	body, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)

	return domain.NewRawDocument("doc-"+name, "file://"+name, body, fixedNow)
}

func inline(html string) domain.RawDocument {
	return domain.NewRawDocument("inline", "inline", []byte(html), fixedNow)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestExtractBalances_TableLayout(t *testing.T) {
	x := newExtractor(t)

	balances := x.ExtractBalances(fixture(t, "main_page.html"))
	require.Len(t, balances, 3)

	assert.Equal(t, "New Brunswick - 150 Meal Plan", balances[0].AccountLabel)
	assert.Equal(t, domain.CategoryMealSwipes, balances[0].Category)
	assert.True(t, balances[0].Amount.Equal(dec("47")))
	assert.True(t, balances[0].ObservedAt.Equal(time.Date(2025, 11, 15, 11, 9, 0, 0, time.UTC)))

	assert.Equal(t, "Dining Dollars", balances[1].AccountLabel)
	assert.Equal(t, domain.CategoryDiningDollars, balances[1].Category)
	assert.True(t, balances[1].Amount.Equal(dec("1120.50")))

	assert.Equal(t, "RU Express", balances[2].AccountLabel)
	assert.Equal(t, domain.CategoryStoredValue, balances[2].Category)
	assert.True(t, balances[2].Amount.Equal(dec("15.25")))
	assert.Equal(t, fixedNow, balances[2].ObservedAt, "unparsable date falls back to the clock")

	for _, b := range balances {
		assert.False(t, b.Amount.IsNegative())
	}
}

func TestExtractBalances_StatementLayout(t *testing.T) {
	x := newExtractor(t)

	balances := x.ExtractBalances(fixture(t, "statement.html"))
	require.Len(t, balances, 1)

	b := balances[0]
	assert.Equal(t, "New Brunswick - 150 Meal Plan", b.AccountLabel)
	assert.Equal(t, domain.CategoryMealSwipes, b.Category)
	assert.True(t, b.Amount.Equal(dec("45")))
	assert.True(t, b.ObservedAt.Equal(time.Date(2025, 11, 15, 9, 0, 0, 0, time.UTC)))
}

func TestExtractBalances_SummaryRequiresMarker(t *testing.T) {
	html := `<div class="jsa_summary"><ul>
		<li>Account Name: Dining Dollars</li>
		<li>Current Balance: $120.00</li>
	</ul></div>`

	assert.Empty(t, newExtractor(t).ExtractBalances(inline(html)))

	x := newExtractor(t, func(o *extractor.Options) {
		o.SummaryMarkers = []string{"meal plan", "dining"}
	})
	balances := x.ExtractBalances(inline(html))
	require.Len(t, balances, 1)
	assert.Equal(t, domain.CategoryDiningDollars, balances[0].Category)
	assert.True(t, balances[0].Amount.Equal(dec("120")))
	assert.Equal(t, fixedNow, balances[0].ObservedAt)
}

func TestExtractBalances_TableOverridesSummaryDuplicate(t *testing.T) {
	html := `<div class="jsa_summary"><ul>
		<li>Account Name: 150 Meal Plan</li>
		<li>Current Balance: 45</li>
	</ul></div>
	<h3>150 meal  plan</h3>
	<table class="jsa_transactions">
		<tr><td class="jsa_desc">Current Balance</td><td class="jsa_amount pos">47</td></tr>
	</table>`

	balances := newExtractor(t).ExtractBalances(inline(html))
	require.Len(t, balances, 1)
	assert.True(t, balances[0].Amount.Equal(dec("47")))
}

func TestExtractBalances_SameLabelTablesKeptInOrder(t *testing.T) {
	html := `<h3>Meal Plan</h3>
	<table class="jsa_transactions">
		<tr><td class="jsa_desc">Current Balance</td><td class="jsa_amount pos">47</td></tr>
	</table>
	<h3>Meal Plan</h3>
	<table class="jsa_transactions">
		<tr><td class="jsa_desc">Current Balance</td><td class="jsa_amount pos">12</td></tr>
	</table>`

	balances := newExtractor(t).ExtractBalances(inline(html))
	require.Len(t, balances, 2)
	assert.True(t, balances[0].Amount.Equal(dec("47")))
	assert.True(t, balances[1].Amount.Equal(dec("12")))

	swipes, ok := extractor.MealSwipes(balances)
	require.True(t, ok)
	assert.True(t, swipes.Equal(dec("47")), "first table wins")
}

func TestExtractBalances_UnlabelledTablesNotMerged(t *testing.T) {
	html := `<table class="jsa_transactions">
		<tr><td class="jsa_desc">Current Balance</td><td class="jsa_amount pos">5</td></tr>
	</table>
	<table class="jsa_transactions">
		<tr><td class="jsa_desc">Current Balance</td><td class="jsa_amount pos">9</td></tr>
	</table>`

	x := newExtractor(t, func(o *extractor.Options) { o.DefaultAccountLabel = "" })
	balances := x.ExtractBalances(inline(html))
	require.Len(t, balances, 2)
	assert.True(t, balances[0].Amount.Equal(dec("5")))
	assert.True(t, balances[1].Amount.Equal(dec("9")))
}

func TestExtractBalances_NonASCIISummaryText(t *testing.T) {
	html := `<div class="jsa_summary"><ul>
		<li>Account Name: 150 Meal Plan</li>
		<li>` + strings.Repeat("Ⱥ", 20) + ` Current Balance: 45</li>
	</ul></div>`

	var balances []domain.AccountBalance
	require.NotPanics(t, func() {
		balances = newExtractor(t).ExtractBalances(inline(html))
	})
	require.Len(t, balances, 1)
	assert.True(t, balances[0].Amount.Equal(dec("45")))
}

func TestExtractBalances_LabelFallsBackToTableID(t *testing.T) {
	html := `<table class="jsa_transactions" id="acct16">
		<tr><td class="jsa_desc">Current Balance</td><td class="jsa_amount pos">N/A</td></tr>
	</table>`

	balances := newExtractor(t).ExtractBalances(inline(html))
	require.Len(t, balances, 1)
	assert.Equal(t, "acct16", balances[0].AccountLabel)
	assert.Equal(t, domain.CategoryOther, balances[0].Category)
	assert.True(t, balances[0].Amount.IsZero(), "unparsable balance becomes zero")
}

func TestExtractTransactions_StatementLayout(t *testing.T) {
	entries := newExtractor(t).ExtractTransactions(fixture(t, "statement.html"))
	require.Len(t, entries, 3)

	assert.Equal(t, "Busch Dining Hall", entries[0].Description)
	assert.True(t, entries[0].Amount.Equal(dec("-1")))
	assert.True(t, entries[0].RunningBalance.Equal(dec("45")))
	assert.Equal(t, "11/14/2025 02:52PM", entries[0].RawDate)
	assert.True(t, entries[0].OccurredAt.Equal(time.Date(2025, 11, 14, 14, 52, 0, 0, time.UTC)))
	assert.Equal(t, "New Brunswick - 150 Meal Plan", entries[0].AccountLabel)

	assert.Equal(t, "Livingston Dining Commons", entries[1].Description)

	assert.Equal(t, "Semester Deposit", entries[2].Description)
	assert.True(t, entries[2].Amount.Equal(dec("150")))
}

func TestExtractTransactions_StatementWithoutDeposits(t *testing.T) {
	x := newExtractor(t, func(o *extractor.Options) { o.IncludeDeposits = false })

	entries := x.ExtractTransactions(fixture(t, "statement.html"))
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.True(t, e.IsDebit())
	}
}

func TestExtractTransactions_RowFilters(t *testing.T) {
	html := `<div class="jsa_summary"><ul><li>Account Name: Meal Plan</li></ul></div>
	<table class="jsa_transactions">
		<tr><th class="jsa_month">11/15/2025 11:09AM</th><td class="jsa_desc">Current Balance</td><td class="jsa_amount neg">1</td></tr>
		<tr><th class="jsa_month">11/14/2025 02:52PM</th><td class="jsa_desc">Brower Commons</td><td class="jsa_amount neg">1</td></tr>
		<tr><th class="jsa_month">11/14/2025 01:00PM</th><td class="jsa_desc">Meal Plan Deposit</td><td class="jsa_amount">25</td></tr>
		<tr><th class="jsa_month">11/14/2025 01:00PM</th><td class="jsa_desc">Refund</td><td class="jsa_amount">3</td></tr>
		<tr><td class="jsa_desc">No date</td><td class="jsa_amount neg">1</td></tr>
	</table>`

	entries := newExtractor(t).ExtractTransactions(inline(html))
	require.Len(t, entries, 2)

	assert.Equal(t, "Brower Commons", entries[0].Description)
	assert.True(t, entries[0].Amount.Equal(dec("-1")))
	assert.True(t, entries[0].RunningBalance.IsZero(), "missing running balance defaults to zero")

	assert.Equal(t, "Meal Plan Deposit", entries[1].Description)
	assert.True(t, entries[1].Amount.Equal(dec("25")))
}

func TestExtractTransactions_MainPageFallback(t *testing.T) {
	entries := newExtractor(t).ExtractTransactions(fixture(t, "main_page.html"))
	require.Len(t, entries, 3)

	assert.Equal(t, "New Brunswick - 150 Meal Plan", entries[0].AccountLabel)
	assert.True(t, entries[0].Amount.Equal(dec("-1")))
	assert.True(t, entries[0].RunningBalance.Equal(dec("47")))
	assert.True(t, entries[1].RunningBalance.Equal(dec("48")))

	assert.Equal(t, "Dining Dollars", entries[2].AccountLabel)
	assert.Equal(t, "Cafe West", entries[2].Description)
	assert.True(t, entries[2].Amount.Equal(dec("-8.25")))
	assert.True(t, entries[2].RunningBalance.Equal(dec("1120.50")))
}

func TestExtractTransactions_FallbackDisabled(t *testing.T) {
	x := newExtractor(t, func(o *extractor.Options) { o.StatementFallback = false })
	assert.Empty(t, x.ExtractTransactions(fixture(t, "main_page.html")))
}

func TestExtractTransactions_UnparsableDateKeepsRaw(t *testing.T) {
	html := `<h3>Meal Plan</h3><table class="jsa_transactions">
		<tr><th class="jsa_month">sometime</th><td class="jsa_desc">Cafe</td><td class="jsa_amount neg">-1</td></tr>
	</table>`

	entries := newExtractor(t).ExtractTransactions(inline(html))
	require.Len(t, entries, 1)
	assert.Equal(t, "sometime", entries[0].RawDate)
	assert.False(t, entries[0].HasTimestamp())
}

func TestExtract_NoMarkers(t *testing.T) {
	x := newExtractor(t)
	doc := fixture(t, "no_markers.html")

	balances, entries := x.Extract(doc)
	assert.NotNil(t, balances)
	assert.NotNil(t, entries)
	assert.Empty(t, balances)
	assert.Empty(t, entries)

	assert.Empty(t, x.ExtractBalances(inline("")))
	assert.Empty(t, x.ExtractTransactions(inline("<<<not html")))
}

func TestExtract_SingleTableScenario(t *testing.T) {
	balances, entries := newExtractor(t).Extract(fixture(t, "single_table.html"))

	swipes, ok := extractor.MealSwipes(balances)
	require.True(t, ok)
	assert.True(t, swipes.Equal(dec("47")))

	_, ok = extractor.DiningDollars(balances)
	assert.False(t, ok)

	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.True(t, e.Amount.Equal(dec("-1")))
		assert.True(t, strings.Contains(e.AccountLabel, "Meal Plan"))
	}
}

func TestExtractAssemble_SingleTablePipeline(t *testing.T) {
	x := newExtractor(t)
	doc := fixture(t, "single_table.html")

	run := func() domain.AccountSnapshot {
		balances, entries := x.Extract(doc)
		return usecase.Assemble(balances, entries, fixedNow)
	}

	first := run()
	second := run()

	assert.True(t, first.MealSwipes.Equal(dec("47")))
	assert.True(t, first.DiningDollars.IsZero())
	assert.True(t, first.StoredValue.IsZero())
	assert.True(t, first.LastUpdated.Equal(time.Date(2025, 11, 15, 11, 9, 0, 0, time.UTC)))

	require.Len(t, first.RecentEntries, 3)
	assert.Equal(t, "Busch Dining Hall", first.RecentEntries[0].Description)
	for _, e := range first.RecentEntries {
		assert.True(t, e.Amount.Equal(dec("-1")))
	}

	assert.Equal(t, first, second, "same document assembles to the same snapshot")
}

func TestLookups(t *testing.T) {
	balances := newExtractor(t).ExtractBalances(fixture(t, "main_page.html"))

	dining, ok := extractor.DiningDollars(balances)
	require.True(t, ok)
	assert.True(t, dining.Equal(dec("1120.50")))

	stored, ok := extractor.StoredValue(balances)
	require.True(t, ok)
	assert.True(t, stored.Equal(dec("15.25")))
}
