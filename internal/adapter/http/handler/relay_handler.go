package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/budgetbloom/cardledger/internal/adapter/loader"
	"github.com/budgetbloom/cardledger/internal/infrastructure/metrics"
)

// RelayConfig configures the pass-through relay.
type RelayConfig struct {
	UpstreamBaseURL string
	UserAgent       string
	Timeout         time.Duration
	// MaxBodyBytes bounds a relayed page; zero means loader.DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// RelayHandler forwards statement page requests to the upstream card system
// unchanged, so browser clients can read the HTML despite CORS.
type RelayHandler struct {
	cfg     RelayConfig
	client  *http.Client
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewRelayHandler creates a new RelayHandler. A nil client gets one with cfg.Timeout.
func NewRelayHandler(cfg RelayConfig, client *http.Client, m *metrics.Metrics, logger zerolog.Logger) *RelayHandler {
	if cfg.UserAgent == "" {
		cfg.UserAgent = loader.DefaultUserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = loader.DefaultMaxBodyBytes
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	cfg.UpstreamBaseURL = strings.TrimRight(cfg.UpstreamBaseURL, "/")

	return &RelayHandler{cfg: cfg, client: client, metrics: m, logger: logger}
}

// ServeHTTP relays the request path and query to the upstream.
func (h *RelayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("skey") == "" {
		h.record(r.URL.Path, http.StatusBadRequest)
		writeError(w, http.StatusBadRequest, "missing skey", "")
		return
	}

	target := h.cfg.UpstreamBaseURL + r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	safe := loader.Redact(target)

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		h.record(r.URL.Path, http.StatusBadGateway)
		writeError(w, http.StatusBadGateway, "relay failed", "invalid upstream URL")
		return
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", h.cfg.UserAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		err = loader.StripURL(err)
		h.logger.Warn().Err(err).Str("url", safe).Msg("relay request failed")
		h.record(r.URL.Path, http.StatusBadGateway)
		writeError(w, http.StatusBadGateway, "relay failed", err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, h.cfg.MaxBodyBytes))
		h.logger.Warn().Int("status", resp.StatusCode).Str("url", safe).Msg("upstream returned error status")
		h.record(r.URL.Path, resp.StatusCode)
		writeError(w, resp.StatusCode, "upstream error", fmt.Sprintf("upstream returned status %d", resp.StatusCode))
		return
	}

	body, err := loader.ReadBody(resp.Body, h.cfg.MaxBodyBytes)
	if err != nil {
		if errors.Is(err, loader.ErrBodyTooLarge) {
			h.logger.Warn().Str("url", safe).Int64("limit", h.cfg.MaxBodyBytes).Msg("upstream page too large")
		}
		h.record(r.URL.Path, http.StatusBadGateway)
		writeError(w, http.StatusBadGateway, "relay failed", err.Error())
		return
	}

	h.record(r.URL.Path, http.StatusOK)
	h.logger.Debug().Str("url", safe).Int("bytes", len(body)).Msg("relayed upstream page")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *RelayHandler) record(path string, status int) {
	if h.metrics == nil {
		return
	}
	h.metrics.RelayRequests.WithLabelValues(path, strconv.Itoa(status)).Inc()
}
