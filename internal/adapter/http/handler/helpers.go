package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/budgetbloom/cardledger/internal/adapter/http/dto"
	"github.com/budgetbloom/cardledger/internal/domain"
)

// SessionKeyHeader carries the session key when it should stay out of the URL.
const SessionKeyHeader = "X-Session-Key"

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	var te *domain.TransportError

	switch {
	case errors.Is(err, domain.ErrMissingSessionKey):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidScope):
		return http.StatusBadRequest
	case errors.Is(err, dto.ErrAmbiguousInsightSource):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrGeneratorUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &te):
		if te.Kind == domain.TransportFetchFailed && errors.Is(te.Err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseBoolQuery parses a boolean query parameter; a bare flag (?refresh) is true.
func parseBoolQuery(r *http.Request, key string) bool {
	q := r.URL.Query()
	if !q.Has(key) {
		return false
	}
	val := q.Get(key)
	if val == "" {
		return true
	}
	b, err := strconv.ParseBool(val)
	return err == nil && b
}

// sessionKey reads the session key from the skey query parameter or SessionKeyHeader.
func sessionKey(r *http.Request) string {
	if key := strings.TrimSpace(r.URL.Query().Get("skey")); key != "" {
		return key
	}
	return strings.TrimSpace(r.Header.Get(SessionKeyHeader))
}

// scopeFromQuery builds a statement scope from page, acct, startdate and enddate.
func scopeFromQuery(r *http.Request) domain.Scope {
	q := r.URL.Query()
	return domain.Scope{
		Page:      domain.Page(strings.ToLower(q.Get("page"))),
		Account:   q.Get("acct"),
		StartDate: q.Get("startdate"),
		EndDate:   q.Get("enddate"),
	}
}
