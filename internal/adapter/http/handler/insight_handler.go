package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/budgetbloom/cardledger/internal/adapter/http/dto"
	"github.com/budgetbloom/cardledger/internal/domain"
	"github.com/budgetbloom/cardledger/internal/usecase"
)

const maxInsightBody = 1 << 20

// InsightService defines the behavior needed by InsightHandler.
type InsightService interface {
	Generate(ctx context.Context, snapshot domain.AccountSnapshot) (*domain.Insight, error)
}

// InsightHandler generates spending insights.
type InsightHandler struct {
	insightUC  InsightService
	snapshotUC SnapshotService
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(insightUC InsightService, snapshotUC SnapshotService) *InsightHandler {
	return &InsightHandler{insightUC: insightUC, snapshotUC: snapshotUC}
}

// Generate builds insights for a posted snapshot or a live session.
func (h *InsightHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req dto.InsightRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxInsightBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, mapDomainError(err), "invalid request", err.Error())
		return
	}

	var snapshot domain.AccountSnapshot
	if req.Snapshot != nil {
		snapshot = req.Snapshot.ToDomain()
	} else {
		var err error
		snapshot, err = h.snapshotUC.GetSnapshot(r.Context(), usecase.SnapshotInput{SessionKey: req.SessionKey})
		if err != nil {
			writeError(w, mapDomainError(err), "failed to load snapshot", err.Error())
			return
		}
	}

	insight, err := h.insightUC.Generate(r.Context(), snapshot)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to generate insights", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.InsightFromDomain(insight))
}
