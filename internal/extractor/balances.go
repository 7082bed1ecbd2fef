package extractor

import (
	"time"

	"github.com/budgetbloom/cardledger/internal/domain"
)

func (x *Extractor) balances(root Node, doc domain.RawDocument) []domain.AccountBalance {
	now := x.opts.Now()

	summary := x.summaryBalances(root, now)
	tables := x.tableBalances(root, now)

	result := make([]domain.AccountBalance, 0, len(summary)+len(tables))
	result = append(result, summary...)

	// A table balance replaces the summary balance of the same account once;
	// every other table keeps its own entry in document order.
	fromSummary := make(map[string]int, len(summary))
	for i, b := range summary {
		fromSummary[labelKey(b.AccountLabel)] = i
	}
	for _, b := range tables {
		key := labelKey(b.AccountLabel)
		if i, ok := fromSummary[key]; ok {
			result[i] = b
			delete(fromSummary, key)
			continue
		}
		result = append(result, b)
	}

	x.logger.Debug().
		Str("document_id", doc.ID).
		Int("summary", len(summary)).
		Int("tables", len(tables)).
		Int("balances", len(result)).
		Msg("balances extracted")

	return result
}

// summaryBalances reads the statement account summary block. The balance is only
// trusted when the account name carries one of the configured markers.
func (x *Extractor) summaryBalances(root Node, now time.Time) []domain.AccountBalance {
	summary := root.First(qSummary)
	if summary == nil {
		return nil
	}

	nameItem := summary.First(qNameItem)
	balanceItem := summary.First(qBalanceItem)
	if nameItem == nil || balanceItem == nil {
		return nil
	}

	name := stripLabel(nameItem.Text(), labelAccountName)
	if !x.opts.trustsSummary(name) {
		x.logger.Debug().Str("account", name).Msg("summary account not recognized")
		return nil
	}

	return []domain.AccountBalance{{
		AccountLabel: name,
		Amount:       ParseAmount(stripLabel(balanceItem.Text(), labelCurrentBalance)),
		Category:     Classify(name),
		ObservedAt:   x.summaryTimestamp(summary, now),
	}}
}

func (x *Extractor) summaryTimestamp(summary Node, now time.Time) time.Time {
	for _, label := range summaryDateLabels {
		item := summary.First(Query{Tag: "li", TextContains: label})
		if item == nil {
			continue
		}
		if t, ok := ParseDate(stripLabel(item.Text(), label), x.opts.Location); ok {
			return t
		}
	}
	return now
}

// tableBalances reads the "Current Balance" row of every ledger table.
func (x *Extractor) tableBalances(root Node, now time.Time) []domain.AccountBalance {
	var result []domain.AccountBalance

	for _, table := range root.Find(qLedgerTable) {
		var row Node
		for _, r := range table.Find(qRow) {
			if r.First(qBalanceDesc) != nil {
				row = r
				break
			}
		}
		if row == nil {
			continue
		}

		cell := row.First(qPositiveCell)
		if cell == nil {
			continue
		}

		label := x.accountLabel(table)
		observedAt := now
		if date := row.First(qDateCell); date != nil {
			observedAt = ParseDateOr(date.Text(), x.opts.Location, now)
		}

		result = append(result, domain.AccountBalance{
			AccountLabel: label,
			Amount:       ParseAmount(cell.TextExcluding(qDataBalance)),
			Category:     Classify(label),
			ObservedAt:   observedAt,
		})
	}

	return result
}
