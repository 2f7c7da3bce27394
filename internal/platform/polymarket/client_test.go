package polymarket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleMarkets = `[
  {
    "id": "516710",
    "question": "Will it happen?",
    "slug": "will-it-happen",
    "description": "Resolves YES if it happens.",
    "volume": "12500.75",
    "volume24hr": 430.5,
    "startDate": "2026-01-01T00:00:00Z",
    "endDate": "2026-12-31T23:59:59Z",
    "active": true,
    "closed": false
  },
  {
    "id": "516711",
    "question": "",
    "slug": "",
    "description": "",
    "volume": "not-a-number",
    "volume24hr": null,
    "startDate": "garbage",
    "endDate": "",
    "active": "true",
    "closed": "false"
  },
  {
    "id": "",
    "question": "No id, should be dropped",
    "active": true,
    "closed": false
  },
  {
    "id": "516712",
    "question": "Already settled",
    "active": true,
    "closed": true
  }
]`

func TestFetchNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("limit") != "5" || q.Get("active") != "true" || q.Get("closed") != "false" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleMarkets))
	}))
	defer srv.Close()

	client := NewClient(Config{
		BaseURL: srv.URL,
		SiteURL: "https://polymarket.com",
		Limit:   5,
		Timeout: 5 * time.Second,
	})

	records, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.ExternalID != "516710" {
		t.Errorf("ExternalID = %q", first.ExternalID)
	}
	if first.Platform != "polymarket" {
		t.Errorf("Platform = %q", first.Platform)
	}
	if first.URL != "https://polymarket.com/market/will-it-happen" {
		t.Errorf("URL = %q", first.URL)
	}
	if first.TotalVolume != "12500.75" {
		t.Errorf("TotalVolume = %q", first.TotalVolume)
	}
	if first.Volume24h == nil || *first.Volume24h != "430.5" {
		t.Errorf("Volume24h = %v", first.Volume24h)
	}
	if first.EndDate == nil || !first.EndDate.Equal(time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("EndDate = %v", first.EndDate)
	}

	second := records[1]
	if second.Question != "Untitled market" {
		t.Errorf("empty question not replaced, got %q", second.Question)
	}
	if second.TotalVolume != "0" {
		t.Errorf("bad volume not coerced, got %q", second.TotalVolume)
	}
	if second.Volume24h != nil {
		t.Errorf("null 24h volume should stay nil, got %v", *second.Volume24h)
	}
	if second.StartDate != nil {
		t.Errorf("garbage start date should be nil, got %v", second.StartDate)
	}
	if second.URL != "https://polymarket.com" {
		t.Errorf("missing slug should fall back to site URL, got %q", second.URL)
	}
}

func TestFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestFetchRejectsObjectBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"markets": []}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("expected error on non-array body")
	}
}
