package kalshi

import (
	"strconv"
	"strings"

	"github.com/dshen0/predboard/internal/domain"
)

// APIMarket represents a market as returned by the Kalshi REST API. Volumes
// are whole-contract counts, not dollar notionals.
type APIMarket struct {
	Ticker       string `json:"ticker"`
	EventTicker  string `json:"event_ticker"`
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle"`
	Status       string `json:"status"` // "open", "closed", "settled"
	Volume       int64  `json:"volume"`
	Volume24H    int64  `json:"volume_24h"`
	OpenInterest int64  `json:"open_interest"`
	RulesPrimary string `json:"rules_primary"`
	OpenTime     string `json:"open_time"`
	CloseTime    string `json:"close_time"`
	Result       string `json:"result"` // "yes", "no", "" (unsettled)
}

// IsOpen reports whether the market is still tradeable.
func (m *APIMarket) IsOpen() bool {
	return m.Status == "open" || m.Status == "active"
}

// ToRecord converts an API market into a canonical record. siteURL is the
// public site root used to build the market link.
func (m *APIMarket) ToRecord(siteURL string) domain.MarketRecord {
	question := domain.Truncate(m.Title, domain.QuestionMaxLen)
	if question == "" {
		question = domain.QuestionPlaceholder
	}

	link := siteURL
	if m.EventTicker != "" {
		link = siteURL + "/markets/" + strings.ToLower(m.EventTicker)
	}

	vol24 := strconv.FormatInt(m.Volume24H, 10)

	return domain.MarketRecord{
		ExternalID:      m.Ticker,
		Platform:        domain.PlatformKalshi,
		Question:        question,
		URL:             link,
		TotalVolume:     strconv.FormatInt(m.Volume, 10),
		Volume24h:       &vol24,
		StartDate:       domain.SafeTime(m.OpenTime),
		EndDate:         domain.SafeTime(m.CloseTime),
		ResolutionRules: domain.Truncate(m.RulesPrimary, domain.RulesMaxLen),
	}
}
