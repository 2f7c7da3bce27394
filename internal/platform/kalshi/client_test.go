package kalshi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleMarkets = `{
  "markets": [
    {
      "ticker": "FED-26DEC-T3.00",
      "event_ticker": "FED-26DEC",
      "title": "Fed funds rate above 3.00% after the December meeting?",
      "status": "open",
      "volume": 88210,
      "volume_24h": 1204,
      "rules_primary": "Resolves YES if the target range lower bound exceeds 3.00%.",
      "open_time": "2026-01-05T14:00:00Z",
      "close_time": "2026-12-16T21:00:00Z"
    },
    {
      "ticker": "",
      "title": "No ticker, dropped",
      "status": "open"
    },
    {
      "ticker": "OLD-MARKET",
      "title": "Settled long ago",
      "status": "settled",
      "result": "yes"
    }
  ],
  "cursor": ""
}`

func TestFetchNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("limit") != "100" || q.Get("status") != "open" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleMarkets))
	}))
	defer srv.Close()

	client := NewClient(Config{
		BaseURL: srv.URL,
		SiteURL: "https://kalshi.com",
		Timeout: 5 * time.Second,
	})

	records, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.ExternalID != "FED-26DEC-T3.00" {
		t.Errorf("ExternalID = %q", rec.ExternalID)
	}
	if rec.Platform != "kalshi" {
		t.Errorf("Platform = %q", rec.Platform)
	}
	if rec.URL != "https://kalshi.com/markets/fed-26dec" {
		t.Errorf("URL = %q", rec.URL)
	}
	if rec.TotalVolume != "88210" {
		t.Errorf("TotalVolume = %q", rec.TotalVolume)
	}
	if rec.Volume24h == nil || *rec.Volume24h != "1204" {
		t.Errorf("Volume24h = %v", rec.Volume24h)
	}
	if rec.EndDate == nil || !rec.EndDate.Equal(time.Date(2026, 12, 16, 21, 0, 0, 0, time.UTC)) {
		t.Errorf("EndDate = %v", rec.EndDate)
	}
}

func TestFetchMissingMarketsField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cursor": ""}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("expected error when markets field is absent")
	}
}

func TestFetchRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"code":"rate_limited","message":"slow down"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("expected error on 429")
	}
}
