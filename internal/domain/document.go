package domain

import "time"

// Page identifies which statement page a document was fetched from.
type Page string

const (
	// PageMain is the balance overview page with one table per account.
	PageMain Page = "main"
	// PageStatement is the statement detail page with an account summary and a full ledger.
	PageStatement Page = "statement"
)

// Scope narrows what the Document Loader fetches.
type Scope struct {
	Page      Page
	Account   string
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
}

// RawDocument is one fetched HTML page. It is consumed once by the extractors and not retained.
type RawDocument struct {
	ID          string
	URL         string
	Body        []byte
	RetrievedAt time.Time
}

// NewRawDocument wraps an already available HTML body, e.g. a file on disk.
func NewRawDocument(id, url string, body []byte, retrievedAt time.Time) RawDocument {
	return RawDocument{
		ID:          id,
		URL:         url,
		Body:        body,
		RetrievedAt: retrievedAt,
	}
}
