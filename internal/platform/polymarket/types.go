package polymarket

import (
	"bytes"
	"encoding/json"

	"github.com/dshen0/predboard/internal/domain"
)

// flexString tolerates both JSON strings and raw numbers. The Gamma API
// returns volume fields as either depending on endpoint version.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(data)
	return nil
}

// flexBool tolerates booleans arriving as true/false, "true"/"false", or
// 0/1.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte(`"true"`)), bytes.Equal(data, []byte("1")):
		*f = true
	case bytes.Equal(data, []byte("false")), bytes.Equal(data, []byte(`"false"`)), bytes.Equal(data, []byte("0")), bytes.Equal(data, []byte("null")):
		*f = false
	default:
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			*f = false
			return nil
		}
		*f = flexBool(b)
	}
	return nil
}

// APIMarket is a single market as returned by the Gamma /markets endpoint.
type APIMarket struct {
	ID          string     `json:"id"`
	Question    string     `json:"question"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Volume      flexString `json:"volume"`
	Volume24hr  flexString `json:"volume24hr"`
	StartDate   string     `json:"startDate"`
	EndDate     string     `json:"endDate"`
	Active      flexBool   `json:"active"`
	Closed      flexBool   `json:"closed"`
}

// IsOpen reports whether the market is tradeable. The listing query already
// filters server side but the API has been observed to leak closed entries.
func (m *APIMarket) IsOpen() bool {
	return bool(m.Active) && !bool(m.Closed)
}

// ToRecord converts an API market into a canonical record. siteURL is the
// public site root used to build the market link.
func (m *APIMarket) ToRecord(siteURL string) domain.MarketRecord {
	question := domain.Truncate(m.Question, domain.QuestionMaxLen)
	if question == "" {
		question = domain.QuestionPlaceholder
	}

	link := siteURL
	if m.Slug != "" {
		link = siteURL + "/market/" + m.Slug
	}

	return domain.MarketRecord{
		ExternalID:      m.ID,
		Platform:        domain.PlatformPolymarket,
		Question:        question,
		URL:             link,
		TotalVolume:     domain.SafeDecimal(string(m.Volume)),
		Volume24h:       domain.SafeDecimalPtr(string(m.Volume24hr)),
		StartDate:       domain.SafeTime(m.StartDate),
		EndDate:         domain.SafeTime(m.EndDate),
		ResolutionRules: domain.Truncate(m.Description, domain.RulesMaxLen),
	}
}
