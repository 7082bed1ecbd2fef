package extractor

import (
	"github.com/shopspring/decimal"

	"github.com/budgetbloom/cardledger/internal/domain"
)

func (x *Extractor) transactions(root Node, doc domain.RawDocument) []domain.LedgerEntry {
	entries := x.statementEntries(root)
	layout := "statement"

	if len(entries) == 0 && x.opts.StatementFallback {
		entries = x.mainPageEntries(root)
		layout = "main"
	}

	if entries == nil {
		entries = []domain.LedgerEntry{}
	}

	x.logger.Debug().
		Str("document_id", doc.ID).
		Str("layout", layout).
		Int("entries", len(entries)).
		Msg("transactions extracted")

	return entries
}

// statementEntries scans the ledger table of a statement detail page. The page is
// recognized by its account summary block.
func (x *Extractor) statementEntries(root Node) []domain.LedgerEntry {
	summary := root.First(qSummary)
	if summary == nil {
		return nil
	}
	table := root.First(qLedgerTable)
	if table == nil {
		return nil
	}

	label := x.accountLabel(table)
	if item := summary.First(qNameItem); item != nil {
		if name := stripLabel(item.Text(), labelAccountName); name != "" {
			label = name
		}
	}

	var entries []domain.LedgerEntry
	for _, row := range table.Find(qRow) {
		if row.First(qHeaderCell) != nil {
			continue
		}

		date, desc, cell := row.First(qDateCell), row.First(qDescCell), row.First(qAmountCell)
		if date == nil || desc == nil || cell == nil {
			continue
		}

		description := desc.Text()
		if containsFold(description, labelCurrentBalance) {
			continue
		}

		amount, ok := ParseAmountOK(cell.TextExcluding(qDataBalance))
		if !ok {
			continue
		}
		if cell.HasClass(classNegative) {
			amount = amount.Neg()
		}

		deposit := x.opts.IncludeDeposits && containsFold(description, labelDeposit)
		if !amount.IsNegative() && !deposit {
			continue
		}

		entries = append(entries, x.entry(date.Text(), description, amount, runningBalance(row, cell), label))
	}

	return entries
}

// mainPageEntries scans every account table of the balance overview page.
// Only rows marked negative are ledger entries there.
func (x *Extractor) mainPageEntries(root Node) []domain.LedgerEntry {
	var entries []domain.LedgerEntry

	for _, table := range root.Find(qLedgerTable) {
		label := x.accountLabel(table)

		for _, row := range table.Find(qRow) {
			cell := row.First(qNegativeCell)
			if cell == nil {
				continue
			}

			date, desc := row.First(qDateCell), row.First(qDescCell)
			if date == nil || desc == nil {
				continue
			}

			amount, ok := ParseAmountOK(cell.TextExcluding(qDataBalance))
			if !ok {
				continue
			}

			entries = append(entries, x.entry(date.Text(), desc.Text(), amount.Neg(), runningBalance(row, cell), label))
		}
	}

	return entries
}

func (x *Extractor) entry(rawDate, description string, amount, balance decimal.Decimal, label string) domain.LedgerEntry {
	occurredAt, _ := ParseDate(rawDate, x.opts.Location)

	return domain.LedgerEntry{
		RawDate:        rawDate,
		OccurredAt:     occurredAt,
		Description:    description,
		Amount:         amount,
		RunningBalance: balance,
		AccountLabel:   label,
	}
}

// runningBalance reads the balance shown after a row, defaulting to zero.
func runningBalance(row, amountCell Node) decimal.Decimal {
	if p := amountCell.First(qDataBalance); p != nil {
		if span := p.First(qSpan); span != nil {
			return ParseAmount(span.Text())
		}
		return ParseAmount(p.Text())
	}
	if cell := row.First(qBalanceCell); cell != nil {
		return ParseAmount(cell.Text())
	}
	return decimal.Zero
}
