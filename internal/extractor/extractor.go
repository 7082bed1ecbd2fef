package extractor

import (
	"bytes"

	"github.com/rs/zerolog"

	"github.com/budgetbloom/cardledger/internal/domain"
)

// Extractor turns campus card statement pages into balances and ledger entries.
// It holds no per-document state and is safe for concurrent use.
type Extractor struct {
	parser Parser
	opts   Options
	logger zerolog.Logger
}

// New creates an Extractor.
func New(parser Parser, opts Options, logger zerolog.Logger) *Extractor {
	return &Extractor{
		parser: parser,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// Options returns the effective options.
func (x *Extractor) Options() Options {
	return x.opts
}

// ExtractBalances returns every recognizable balance in doc. It never fails.
func (x *Extractor) ExtractBalances(doc domain.RawDocument) []domain.AccountBalance {
	root := x.root(doc)
	if root == nil {
		return []domain.AccountBalance{}
	}
	return x.balances(root, doc)
}

// ExtractTransactions returns ledger rows in document order. It never fails.
func (x *Extractor) ExtractTransactions(doc domain.RawDocument) []domain.LedgerEntry {
	root := x.root(doc)
	if root == nil {
		return []domain.LedgerEntry{}
	}
	return x.transactions(root, doc)
}

// Extract runs both extractors over a single parse of doc.
func (x *Extractor) Extract(doc domain.RawDocument) ([]domain.AccountBalance, []domain.LedgerEntry) {
	root := x.root(doc)
	if root == nil {
		return []domain.AccountBalance{}, []domain.LedgerEntry{}
	}
	return x.balances(root, doc), x.transactions(root, doc)
}

func (x *Extractor) root(doc domain.RawDocument) Node {
	root, err := x.parser.Parse(bytes.NewReader(doc.Body))
	if err != nil {
		x.logger.Warn().Err(err).Str("document_id", doc.ID).Msg("document could not be parsed")
		return nil
	}
	return root
}

// accountLabel names a ledger table by its heading, then its id, then the configured default.
func (x *Extractor) accountLabel(table Node) string {
	if heading := table.PrevElement(); heading != nil {
		if text := heading.Text(); text != "" {
			return text
		}
	}
	if id := table.Attr("id"); id != "" {
		return id
	}
	return x.opts.DefaultAccountLabel
}
