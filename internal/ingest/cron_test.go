package ingest

import (
	"testing"
	"time"
)

func TestNextRun(t *testing.T) {
	base := time.Date(2026, 3, 10, 14, 30, 45, 0, time.UTC) // a Tuesday

	tests := []struct {
		name string
		expr string
		want time.Time
	}{
		{
			name: "every minute",
			expr: "* * * * *",
			want: time.Date(2026, 3, 10, 14, 31, 0, 0, time.UTC),
		},
		{
			name: "daily at 3am",
			expr: "0 3 * * *",
			want: time.Date(2026, 3, 11, 3, 0, 0, 0, time.UTC),
		},
		{
			name: "first of month",
			expr: "0 0 1 * *",
			want: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "comma list of hours",
			expr: "0 6,18 * * *",
			want: time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC),
		},
		{
			name: "step minutes",
			expr: "*/15 * * * *",
			want: time.Date(2026, 3, 10, 14, 45, 0, 0, time.UTC),
		},
		{
			name: "sunday only",
			expr: "0 12 * * 0",
			want: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := nextRun(tt.expr, base)
			if err != nil {
				t.Fatalf("nextRun(%q): %v", tt.expr, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("nextRun(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestNextRunInvalid(t *testing.T) {
	for _, expr := range []string{
		"", "* * * *", "a b c d e", "*/0 * * * *", "60 25 * *",
		"60 * * * *", "* 25 * * *", "* * 0 * *", "* * * 13 *", "* * * * 7",
		"*/75 * * * *",
	} {
		if _, err := nextRun(expr, time.Now()); err == nil {
			t.Errorf("nextRun(%q): expected error", expr)
		}
	}
}
