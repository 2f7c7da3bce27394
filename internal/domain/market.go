package domain

import "time"

// Platform identifies the external source a record was ingested from.
type Platform string

const (
	PlatformPolymarket Platform = "polymarket"
	PlatformKalshi     Platform = "kalshi"
)

// Field caps applied during normalization. Longer values are truncated, not
// rejected, so one oversized title never drops a record.
const (
	QuestionMaxLen = 500
	RulesMaxLen    = 2000
)

// QuestionPlaceholder is used when a source omits the market title entirely.
const QuestionPlaceholder = "Untitled market"

// MarketRecord is the canonical, post-normalization shape for a listing from
// any platform. Volume fields are decimal strings: the store column is NUMERIC
// and adapters coerce arbitrary source representations through SafeDecimal, so
// values survive round-trips without float drift.
//
// LastUpdated is assigned by the store on every upsert touch; adapters leave
// it zero.
type MarketRecord struct {
	ExternalID      string     `json:"externalId"`
	Platform        Platform   `json:"platform"`
	Question        string     `json:"question"`
	URL             string     `json:"url"`
	TotalVolume     string     `json:"totalVolume"`
	Volume24h       *string    `json:"volume24h"`
	StartDate       *time.Time `json:"startDate"`
	EndDate         *time.Time `json:"endDate"`
	ResolutionRules string     `json:"resolutionRules"`
	LastUpdated     time.Time  `json:"lastUpdated"`
}

// CycleSummary describes the outcome of one refresh cycle. It is published on
// the signal bus after the cycle settles so dashboard clients can re-fetch.
type CycleSummary struct {
	CycleID   string    `json:"cycleId"`
	Records   int       `json:"records"`
	Sources   int       `json:"sources"`
	Failed    int       `json:"failed"`
	Evicted   int64     `json:"evicted"`
	StartedAt time.Time `json:"startedAt"`
	Duration  string    `json:"duration"`
}

// MarketsChannel is the signal-bus channel carrying CycleSummary payloads.
const MarketsChannel = "markets"
