package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if got := cfg.Refresh.IntervalDuration(); got != 60*time.Second {
		t.Errorf("default refresh interval = %v, want 60s", got)
	}
	if got := cfg.Refresh.RequestTimeoutDuration(); got != 30*time.Second {
		t.Errorf("default request timeout = %v, want 30s", got)
	}
	if got := cfg.Refresh.StalenessThresholdMinutes; got != 1440 {
		t.Errorf("default staleness threshold = %d, want 1440", got)
	}
	if got := cfg.Sources.Polymarket.Limit; got != 100 {
		t.Errorf("default polymarket limit = %d, want 100", got)
	}
	if got := cfg.Sources.Kalshi.Limit; got != 100 {
		t.Errorf("default kalshi limit = %d, want 100", got)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "verbose"
	cfg.Server.Port = 0
	cfg.Sources.Polymarket.Limit = 0
	cfg.Redis.Addr = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"log_level", "server: port", "sources.polymarket", "redis: addr"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("validation error missing %q:\n%s", want, err.Error())
		}
	}
}

func TestValidateStalenessMustExceedInterval(t *testing.T) {
	cfg := Defaults()
	cfg.Refresh.Interval = duration{2 * time.Hour}

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "staleness threshold") {
		t.Errorf("expected staleness/interval ordering error, got: %v", err)
	}
}

func TestValidateRequiresASource(t *testing.T) {
	cfg := Defaults()
	cfg.Sources.Polymarket.Enabled = false
	cfg.Sources.Kalshi.Enabled = false

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "at least one source") {
		t.Errorf("expected source requirement error, got: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PREDBOARD_REFRESH_INTERVAL", "5m")
	t.Setenv("PREDBOARD_SOURCES_KALSHI_LIMIT", "25")
	t.Setenv("PREDBOARD_DATABASE_DSN", "postgres://u:p@db:5432/predboard")
	t.Setenv("PREDBOARD_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	if got := cfg.Refresh.IntervalDuration(); got != 5*time.Minute {
		t.Errorf("interval override = %v, want 5m", got)
	}
	if got := cfg.Sources.Kalshi.Limit; got != 25 {
		t.Errorf("kalshi limit override = %d, want 25", got)
	}
	if got := cfg.Database.DSN; got != "postgres://u:p@db:5432/predboard" {
		t.Errorf("dsn override = %q", got)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors override = %v", cfg.Server.CORSOrigins)
	}
}

func TestEnvOverrideIgnoresBadValues(t *testing.T) {
	t.Setenv("PREDBOARD_REFRESH_INTERVAL", "not-a-duration")
	t.Setenv("PREDBOARD_SOURCES_KALSHI_LIMIT", "many")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	if got := cfg.Refresh.IntervalDuration(); got != 60*time.Second {
		t.Errorf("bad duration should keep default, got %v", got)
	}
	if got := cfg.Sources.Kalshi.Limit; got != 100 {
		t.Errorf("bad int should keep default, got %d", got)
	}
}

