package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/budgetbloom/cardledger/internal/adapter/http/dto"
	"github.com/budgetbloom/cardledger/internal/domain"
	"github.com/budgetbloom/cardledger/internal/usecase"
)

type snapshotServiceStub struct {
	getFn        func(ctx context.Context, input usecase.SnapshotInput) (domain.AccountSnapshot, error)
	invalidateFn func(ctx context.Context, sessionKey string) error
	historyFn    func(ctx context.Context, input usecase.HistoryInput) ([]domain.LedgerEntry, error)
}

func (s *snapshotServiceStub) GetSnapshot(ctx context.Context, input usecase.SnapshotInput) (domain.AccountSnapshot, error) {
	return s.getFn(ctx, input)
}

func (s *snapshotServiceStub) Invalidate(ctx context.Context, sessionKey string) error {
	return s.invalidateFn(ctx, sessionKey)
}

func (s *snapshotServiceStub) History(ctx context.Context, input usecase.HistoryInput) ([]domain.LedgerEntry, error) {
	return s.historyFn(ctx, input)
}

var updatedAt = time.Date(2025, 11, 15, 11, 9, 0, 0, time.UTC)

func TestSnapshotHandler_Get_Success(t *testing.T) {
	var captured usecase.SnapshotInput
	h := NewSnapshotHandler(&snapshotServiceStub{
		getFn: func(ctx context.Context, input usecase.SnapshotInput) (domain.AccountSnapshot, error) {
			captured = input
			s := domain.EmptySnapshot(updatedAt)
			s.MealSwipes = decimal.NewFromInt(47)
			return s, nil
		},
	}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshot?skey=abc&page=Statement&acct=16&startdate=2025-05-01&enddate=2025-12-31&refresh=true", nil)
	rr := httptest.NewRecorder()
	h.Get(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	want := usecase.SnapshotInput{
		SessionKey: "abc",
		Scope:      domain.Scope{Page: domain.PageStatement, Account: "16", StartDate: "2025-05-01", EndDate: "2025-12-31"},
		Refresh:    true,
	}
	if captured != want {
		t.Fatalf("unexpected input %+v", captured)
	}

	var resp dto.SnapshotResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.MealSwipes.Equal(decimal.NewFromInt(47)) || resp.RecentEntries == nil {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestSnapshotHandler_Get_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		want   int
	}{
		{name: "missing key", target: "/api/v1/snapshot", want: http.StatusBadRequest},
		{name: "bad scope", target: "/api/v1/snapshot?skey=abc&page=weird", err: domain.ErrInvalidScope, want: http.StatusBadRequest},
		{name: "upstream rejected", target: "/api/v1/snapshot?skey=abc", err: domain.NewBadStatus("u", http.StatusForbidden), want: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSnapshotHandler(&snapshotServiceStub{
				getFn: func(ctx context.Context, input usecase.SnapshotInput) (domain.AccountSnapshot, error) {
					return domain.EmptySnapshot(updatedAt), tt.err
				},
			}, zerolog.Nop())

			rr := httptest.NewRecorder()
			h.Get(rr, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
		})
	}
}

func TestSnapshotHandler_Invalidate(t *testing.T) {
	var invalidated string
	h := NewSnapshotHandler(&snapshotServiceStub{
		invalidateFn: func(ctx context.Context, sessionKey string) error {
			invalidated = sessionKey
			return nil
		},
	}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/snapshot", nil)
	req.Header.Set(SessionKeyHeader, "abc")
	rr := httptest.NewRecorder()
	h.Invalidate(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if invalidated != "abc" {
		t.Fatalf("expected key abc invalidated, got %q", invalidated)
	}
}

func TestSnapshotHandler_History(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantMarkers []string
		wantLimit   int
	}{
		{name: "default markers", query: "skey=abc", wantMarkers: nil},
		{name: "explicit markers", query: "skey=abc&account=dining,+flex&limit=5", wantMarkers: []string{"dining", "flex"}, wantLimit: 5},
		{name: "all accounts", query: "skey=abc&account=*", wantMarkers: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured usecase.HistoryInput
			h := NewSnapshotHandler(&snapshotServiceStub{
				historyFn: func(ctx context.Context, input usecase.HistoryInput) ([]domain.LedgerEntry, error) {
					captured = input
					return []domain.LedgerEntry{
						{RawDate: "11/15/2025", OccurredAt: updatedAt, Description: "Busch", Amount: decimal.NewFromInt(-1), AccountLabel: "Meal Plan"},
					}, nil
				},
			}, zerolog.Nop())

			rr := httptest.NewRecorder()
			h.History(rr, httptest.NewRequest(http.MethodGet, "/api/v1/history?"+tt.query, nil))

			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rr.Code)
			}
			if (captured.Markers == nil) != (tt.wantMarkers == nil) || len(captured.Markers) != len(tt.wantMarkers) {
				t.Fatalf("markers = %#v, expected %#v", captured.Markers, tt.wantMarkers)
			}
			for i := range tt.wantMarkers {
				if captured.Markers[i] != tt.wantMarkers[i] {
					t.Fatalf("markers = %#v, expected %#v", captured.Markers, tt.wantMarkers)
				}
			}
			if captured.Limit != tt.wantLimit {
				t.Fatalf("limit = %d, expected %d", captured.Limit, tt.wantLimit)
			}

			var resp dto.HistoryResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Count != 1 || resp.Entries[0].Account != "Meal Plan" {
				t.Fatalf("unexpected response %+v", resp)
			}
		})
	}
}
