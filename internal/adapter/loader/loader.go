package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/budgetbloom/cardledger/internal/domain"
	"github.com/budgetbloom/cardledger/internal/infrastructure/metrics"
	"github.com/budgetbloom/cardledger/internal/usecase"
)

const (
	// MainPath is the balance overview page.
	MainPath = "/index.php"
	// StatementPath is the statement detail page.
	StatementPath = "/statementdetail.php"

	// DefaultUserAgent mimics a desktop browser; the upstream rejects bare clients.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

	// DefaultMaxBodyBytes bounds a fetched page.
	DefaultMaxBodyBytes = 8 << 20
)

// ErrBodyTooLarge is returned when a page exceeds the configured size limit.
var ErrBodyTooLarge = errors.New("response body exceeds size limit")

// Config configures the HTTP document loader.
type Config struct {
	BaseURL   string // relay or upstream origin
	CampusID  string
	Account   string // statement account used when the scope names none
	UserAgent string
	Timeout   time.Duration
	// MaxBodyBytes bounds the page size; zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// HTTPLoader fetches statement pages over HTTP. It never retries.
type HTTPLoader struct {
	client  *http.Client
	cfg     Config
	idGen   usecase.IDGenerator
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates an HTTPLoader. A nil client gets one with cfg.Timeout.
func New(cfg Config, client *http.Client, idGen usecase.IDGenerator, m *metrics.Metrics, logger zerolog.Logger) *HTTPLoader {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &HTTPLoader{
		client:  client,
		cfg:     cfg,
		idGen:   idGen,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Fetch implements usecase.DocumentLoader.
func (l *HTTPLoader) Fetch(ctx context.Context, sessionKey string, scope domain.Scope) (domain.RawDocument, error) {
	if err := domain.ValidateSessionKey(sessionKey); err != nil {
		return domain.RawDocument{}, err
	}

	target, err := l.URL(sessionKey, scope)
	if err != nil {
		return domain.RawDocument{}, err
	}
	safe := Redact(target)
	page := string(scope.Page)
	if page == "" {
		page = string(domain.PageMain)
	}

	start := time.Now()
	body, err := l.get(ctx, target, safe)
	l.observe(page, start, body, err)
	if err != nil {
		l.logger.Warn().Err(err).Str("url", safe).Msg("document fetch failed")
		return domain.RawDocument{}, err
	}

	doc := domain.NewRawDocument(l.idGen.Generate(), safe, body, l.now())

	l.logger.Debug().
		Str("document_id", doc.ID).
		Str("url", safe).
		Int("bytes", len(body)).
		Msg("document fetched")

	return doc, nil
}

func (l *HTTPLoader) get(ctx context.Context, target, safe string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, domain.NewFetchFailed(safe, err)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", l.cfg.UserAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, domain.NewFetchFailed(safe, StripURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, l.cfg.MaxBodyBytes))
		return nil, domain.NewBadStatus(safe, resp.StatusCode)
	}

	body, err := ReadBody(resp.Body, l.cfg.MaxBodyBytes)
	if err != nil {
		return nil, domain.NewFetchFailed(safe, err)
	}

	return body, nil
}

func (l *HTTPLoader) observe(page string, start time.Time, body []byte, err error) {
	if l.metrics == nil {
		return
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	l.metrics.FetchRequests.WithLabelValues(page, outcome).Inc()
	l.metrics.FetchDuration.WithLabelValues(page).Observe(time.Since(start).Seconds())
	if err == nil {
		l.metrics.FetchBytes.Observe(float64(len(body)))
	}
}

// URL builds the page URL for a session and scope.
func (l *HTTPLoader) URL(sessionKey string, scope domain.Scope) (string, error) {
	scope, err := scope.Normalize()
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("skey", sessionKey)
	q.Set("cid", l.cfg.CampusID)

	path := MainPath
	if scope.Page == domain.PageStatement {
		path = StatementPath

		account := scope.Account
		if account == "" {
			account = l.cfg.Account
		}
		if account != "" {
			q.Set("acct", account)
		}
		if scope.StartDate != "" {
			q.Set("startdate", scope.StartDate)
		}
		if scope.EndDate != "" {
			q.Set("enddate", scope.EndDate)
		}
	}

	return fmt.Sprintf("%s%s?%s", l.cfg.BaseURL, path, q.Encode()), nil
}

// Redact masks the session key in a URL so it can be logged or returned in errors.
func Redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	q := u.Query()
	if key := q.Get("skey"); key != "" {
		q.Set("skey", domain.MaskSessionKey(key))
		u.RawQuery = q.Encode()
	}

	return u.String()
}

// ReadBody reads r up to limit bytes. A longer body yields ErrBodyTooLarge
// rather than a truncated page.
func ReadBody(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrBodyTooLarge, limit)
	}
	return body, nil
}

// StripURL drops the request URL that net/http embeds in client errors.
// The URL carries the session key.
func StripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}
