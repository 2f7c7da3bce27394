package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// SafeDecimal coerces a raw numeric string from an external payload into a
// canonical decimal string. Empty, unparseable, NaN, and infinite inputs all
// become "0". The sign is preserved: some sources report signed deltas and
// clamping them would silently corrupt the data.
func SafeDecimal(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "0"
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SafeDecimalPtr is SafeDecimal for optional fields: absent input stays nil
// instead of collapsing to "0", so downstream consumers can distinguish
// "no 24h figure" from "zero volume".
func SafeDecimalPtr(raw string) *string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	s := SafeDecimal(raw)
	return &s
}

// timeLayouts are tried in order when parsing source timestamps. Polymarket
// sends RFC 3339 with fractional seconds, Kalshi without; a few endpoints emit
// bare dates.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// SafeTime parses a source date string, returning nil for anything
// unparseable. Bad dates from a source must never fail the whole record.
func SafeTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}

// Truncate caps s at max bytes without splitting a UTF-8 rune.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	// Back off a partial rune at the boundary.
	for len(cut) > 0 && (cut[len(cut)-1]&0xC0) == 0x80 {
		cut = cut[:len(cut)-1]
	}
	return cut
}
