package extractor

// Structural markers used by the campus card statement pages.
const (
	classSummary      = "jsa_summary"
	classTransactions = "jsa_transactions"
	classDesc         = "jsa_desc"
	classAmount       = "jsa_amount"
	classPositive     = "pos"
	classNegative     = "neg"
	classMonth        = "jsa_month"
	classHeader       = "jsa_table-headers"
	classDataBalance  = "jsa_data-bal"
	classBalance      = "jsa_balance"
	classBalanceCell  = "bal"

	labelAccountName    = "account name"
	labelCurrentBalance = "current balance"
	labelDeposit        = "deposit"
)

// Summary list items that may carry the balance timestamp.
var summaryDateLabels = []string{"as of", "last updated", "statement date", "date"}

var (
	qSummary      = Query{Classes: []string{classSummary}}
	qLedgerTable  = Query{Tag: "table", Classes: []string{classTransactions}}
	qRow          = Query{Tag: "tr"}
	qDescCell     = Query{Tag: "td", Classes: []string{classDesc}}
	qAmountCell   = Query{Tag: "td", Classes: []string{classAmount}}
	qPositiveCell = Query{Tag: "td", Classes: []string{classAmount, classPositive}}
	qNegativeCell = Query{Tag: "td", Classes: []string{classAmount, classNegative}}
	qDateCell     = Query{Tag: "th", Classes: []string{classMonth}}
	qHeaderCell   = Query{Tag: "th", Classes: []string{classHeader}}
	qDataBalance  = Query{Tag: "p", Classes: []string{classDataBalance}}
	qBalanceCell  = Query{Tag: "td", Classes: []string{classBalance, classBalanceCell}}
	qSpan         = Query{Tag: "span"}

	qBalanceDesc = Query{Tag: "td", Classes: []string{classDesc}, TextContains: labelCurrentBalance}
	qNameItem    = Query{Tag: "li", TextContains: labelAccountName}
	qBalanceItem = Query{Tag: "li", TextContains: labelCurrentBalance}
)
