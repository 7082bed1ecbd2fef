package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/budgetbloom/cardledger/internal/adapter/http/dto"
	"github.com/budgetbloom/cardledger/internal/domain"
	"github.com/budgetbloom/cardledger/internal/usecase"
)

// SnapshotService defines the behavior needed by SnapshotHandler.
type SnapshotService interface {
	GetSnapshot(ctx context.Context, input usecase.SnapshotInput) (domain.AccountSnapshot, error)
	Invalidate(ctx context.Context, sessionKey string) error
	History(ctx context.Context, input usecase.HistoryInput) ([]domain.LedgerEntry, error)
}

// SnapshotHandler serves snapshots and transaction history.
type SnapshotHandler struct {
	snapshotUC SnapshotService
	logger     zerolog.Logger
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(snapshotUC SnapshotService, logger zerolog.Logger) *SnapshotHandler {
	return &SnapshotHandler{snapshotUC: snapshotUC, logger: logger}
}

// Get returns the assembled snapshot for a session.
func (h *SnapshotHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := sessionKey(r)
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing skey", "")
		return
	}

	snapshot, err := h.snapshotUC.GetSnapshot(r.Context(), usecase.SnapshotInput{
		SessionKey: key,
		Scope:      scopeFromQuery(r),
		Refresh:    parseBoolQuery(r, "refresh"),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to load snapshot", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SnapshotFromDomain(snapshot))
}

// Invalidate drops every cached snapshot for a session.
func (h *SnapshotHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	key := sessionKey(r)
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing skey", "")
		return
	}

	if err := h.snapshotUC.Invalidate(r.Context(), key); err != nil {
		writeError(w, mapDomainError(err), "failed to invalidate snapshot", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// History returns ledger entries newest first.
//
// account is a comma-separated list of label substrings; "*" returns every
// account and omitting it keeps the meal plan entries only.
func (h *SnapshotHandler) History(w http.ResponseWriter, r *http.Request) {
	key := sessionKey(r)
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing skey", "")
		return
	}

	q := r.URL.Query()
	input := usecase.HistoryInput{
		SessionKey: key,
		Account:    q.Get("acct"),
		StartDate:  q.Get("startdate"),
		EndDate:    q.Get("enddate"),
		Markers:    parseMarkers(q.Get("account"), q.Has("account")),
		Limit:      parseIntQuery(r, "limit", 0),
	}

	entries, err := h.snapshotUC.History(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to load history", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.HistoryFromDomain(entries))
}

func parseMarkers(raw string, present bool) []string {
	if !present {
		return nil
	}

	markers := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "*" {
			return []string{}
		}
		if part != "" {
			markers = append(markers, part)
		}
	}
	if len(markers) == 0 {
		return nil
	}
	return markers
}
