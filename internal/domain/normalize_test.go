package domain

import (
	"strings"
	"testing"
	"time"
)

func TestSafeDecimal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain integer", in: "500", want: "500"},
		{name: "decimal", in: "123.45", want: "123.45"},
		{name: "negative preserved", in: "-5", want: "-5"},
		{name: "scientific notation", in: "1e3", want: "1000"},
		{name: "empty", in: "", want: "0"},
		{name: "whitespace", in: "   ", want: "0"},
		{name: "non-numeric", in: "abc", want: "0"},
		{name: "nan", in: "NaN", want: "0"},
		{name: "positive infinity", in: "Inf", want: "0"},
		{name: "negative infinity", in: "-Inf", want: "0"},
		{name: "trailing garbage", in: "12x", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeDecimal(tt.in); got != tt.want {
				t.Errorf("SafeDecimal(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSafeDecimalPtr(t *testing.T) {
	if got := SafeDecimalPtr(""); got != nil {
		t.Errorf("SafeDecimalPtr(\"\") = %q, want nil", *got)
	}
	if got := SafeDecimalPtr("garbage"); got == nil || *got != "0" {
		t.Errorf("SafeDecimalPtr(\"garbage\") = %v, want \"0\"", got)
	}
	if got := SafeDecimalPtr("42.5"); got == nil || *got != "42.5" {
		t.Errorf("SafeDecimalPtr(\"42.5\") = %v, want \"42.5\"", got)
	}
}

func TestSafeTime(t *testing.T) {
	got := SafeTime("2026-03-01T12:30:00Z")
	if got == nil {
		t.Fatal("expected RFC3339 input to parse")
	}
	want := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("SafeTime = %v, want %v", got, want)
	}

	if got := SafeTime("2026-03-01T12:30:00.123Z"); got == nil {
		t.Error("expected fractional-seconds input to parse")
	}
	if got := SafeTime("2026-03-01"); got == nil {
		t.Error("expected bare date to parse")
	}
	if got := SafeTime("not a date"); got != nil {
		t.Errorf("expected nil for junk input, got %v", got)
	}
	if got := SafeTime(""); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 500); got != "short" {
		t.Errorf("Truncate under cap changed the string: %q", got)
	}

	long := strings.Repeat("a", 600)
	if got := Truncate(long, QuestionMaxLen); len(got) != QuestionMaxLen {
		t.Errorf("Truncate length = %d, want %d", len(got), QuestionMaxLen)
	}

	// Multi-byte boundary: must not split a rune.
	s := strings.Repeat("é", 300) // 2 bytes each
	got := Truncate(s, 501)
	if len(got) != 500 {
		t.Errorf("Truncate at rune boundary: len = %d, want 500", len(got))
	}
}
