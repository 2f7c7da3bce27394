package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dshen0/predboard/internal/domain"
)

type fakeLister struct {
	records []domain.MarketRecord
	err     error
}

func (f *fakeLister) List(ctx context.Context) ([]domain.MarketRecord, error) {
	return f.records, f.err
}

type fakeRunner struct {
	summary domain.CycleSummary
	err     error
	calls   int
}

func (f *fakeRunner) RunCycle(ctx context.Context) (domain.CycleSummary, error) {
	f.calls++
	return f.summary, f.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListMarketsReturnsBareArray(t *testing.T) {
	vol := "50"
	lister := &fakeLister{records: []domain.MarketRecord{
		{ExternalID: "a1", Platform: "polymarket", Question: "q", TotalVolume: "600", Volume24h: &vol},
		{ExternalID: "b1", Platform: "kalshi", Question: "q2", TotalVolume: "50"},
	}}
	h := NewMarketHandler(lister, discard())

	req := httptest.NewRequest(http.MethodGet, "/api/markets", nil)
	rec := httptest.NewRecorder()
	h.ListMarkets(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}

	var got []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("body is not a JSON array: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records", len(got))
	}
	if got[0]["externalId"] != "a1" || got[0]["totalVolume"] != "600" {
		t.Errorf("first record = %v", got[0])
	}
	if got[1]["volume24h"] != nil {
		t.Errorf("missing volume24h should serialize as null, got %v", got[1]["volume24h"])
	}
}

func TestListMarketsEmptySnapshot(t *testing.T) {
	h := NewMarketHandler(&fakeLister{records: []domain.MarketRecord{}}, discard())

	rec := httptest.NewRecorder()
	h.ListMarkets(rec, httptest.NewRequest(http.MethodGet, "/api/markets", nil))

	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("cold-start body = %q, want []", body)
	}
}

func TestListMarketsStoreError(t *testing.T) {
	h := NewMarketHandler(&fakeLister{err: errors.New("connection refused")}, discard())

	rec := httptest.NewRecorder()
	h.ListMarkets(rec, httptest.NewRequest(http.MethodGet, "/api/markets", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Error("store error details must not leak to clients")
	}
}

func TestTriggerRefreshRunsCycleAndReturnsSnapshot(t *testing.T) {
	runner := &fakeRunner{summary: domain.CycleSummary{CycleID: "c1", Records: 1}}
	lister := &fakeLister{records: []domain.MarketRecord{
		{ExternalID: "a1", Platform: "polymarket", TotalVolume: "500"},
	}}
	h := NewRefreshHandler(runner, lister, discard())

	rec := httptest.NewRecorder()
	h.TriggerRefresh(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if runner.calls != 1 {
		t.Fatalf("runner called %d times", runner.calls)
	}

	var resp struct {
		Cycle   domain.CycleSummary   `json:"cycle"`
		Markets []domain.MarketRecord `json:"markets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Cycle.CycleID != "c1" || len(resp.Markets) != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestTriggerRefreshConflict(t *testing.T) {
	runner := &fakeRunner{err: domain.ErrCycleInProgress}
	h := NewRefreshHandler(runner, &fakeLister{}, discard())

	rec := httptest.NewRecorder()
	h.TriggerRefresh(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

type fakeCounter struct {
	count int64
	err   error
}

func (f *fakeCounter) Count(ctx context.Context) (int64, error) {
	return f.count, f.err
}

func TestHealthCheck(t *testing.T) {
	h := NewHealthHandler(&fakeCounter{count: 42}, discard())

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["markets"] != float64(42) {
		t.Errorf("body = %v", body)
	}
}

func TestHealthCheckDegraded(t *testing.T) {
	h := NewHealthHandler(&fakeCounter{err: errors.New("down")}, discard())

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "degraded" {
		t.Errorf("status = %v, want degraded", body["status"])
	}
}
