// Package config defines the top-level configuration for the predboard
// backend and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by PREDBOARD_* environment variables.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Sources  SourcesConfig  `toml:"sources"`
	Refresh  RefreshConfig  `toml:"refresh"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	LogLevel string         `toml:"log_level"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for the archival
// job. Archival is skipped entirely when Enabled is false.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// SourceConfig holds per-platform adapter parameters.
type SourceConfig struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
	SiteURL string `toml:"site_url"`
	Limit   int    `toml:"limit"`
}

// SourcesConfig groups the adapter configurations.
type SourcesConfig struct {
	Polymarket SourceConfig `toml:"polymarket"`
	Kalshi     SourceConfig `toml:"kalshi"`
}

// RefreshConfig holds the ingestion cycle parameters.
type RefreshConfig struct {
	// Interval between refresh cycles.
	Interval duration `toml:"interval"`
	// RequestTimeout is the hard per-adapter HTTP timeout.
	RequestTimeout duration `toml:"request_timeout"`
	// StalenessThresholdMinutes: records not refreshed within this trailing
	// window are evicted after a successful upsert. Deliberately long
	// relative to the interval so whole-cycle outages of a source do not
	// delete its markets.
	StalenessThresholdMinutes int `toml:"staleness_threshold_minutes"`
	// RetentionDays drives the age-based purge performed by the archiver.
	RetentionDays int `toml:"retention_days"`
	// ArchiveCron is a 5-field cron expression for the archival job.
	ArchiveCron string `toml:"archive_cron"`
}

// IntervalDuration returns the refresh interval as a time.Duration.
func (r RefreshConfig) IntervalDuration() time.Duration { return r.Interval.Duration }

// RequestTimeoutDuration returns the adapter HTTP timeout as a time.Duration.
func (r RefreshConfig) RequestTimeoutDuration() time.Duration { return r.RequestTimeout.Duration }

// StalenessThreshold returns the eviction window as a time.Duration.
func (r RefreshConfig) StalenessThreshold() time.Duration {
	return time.Duration(r.StalenessThresholdMinutes) * time.Minute
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "60s", "5m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "60s" or "5m".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Database: DatabaseConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "predboard",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   10,
			MaxRetries: 3,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "predboard-archive",
			ForcePathStyle: true,
		},
		Sources: SourcesConfig{
			Polymarket: SourceConfig{
				Enabled: true,
				BaseURL: "https://gamma-api.polymarket.com",
				SiteURL: "https://polymarket.com",
				Limit:   100,
			},
			Kalshi: SourceConfig{
				Enabled: true,
				BaseURL: "https://api.elections.kalshi.com/trade-api/v2",
				SiteURL: "https://kalshi.com",
				Limit:   100,
			},
		},
		Refresh: RefreshConfig{
			Interval:                  duration{60 * time.Second},
			RequestTimeout:            duration{30 * time.Second},
			StalenessThresholdMinutes: 1440,
			RetentionDays:             90,
			ArchiveCron:               "0 3 * * *",
		},
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Notify: NotifyConfig{
			Events: []string{"systemic_outage", "store_error"},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Database
	if strings.TrimSpace(c.Database.DSN) == "" {
		if c.Database.Host == "" {
			errs = append(errs, "database: host must not be empty (or set database.dsn)")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database: port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.Database == "" {
			errs = append(errs, "database: database must not be empty")
		}
	}
	if c.Database.PoolMaxConns < 1 {
		errs = append(errs, "database: pool_max_conns must be >= 1")
	}
	if c.Database.PoolMinConns > c.Database.PoolMaxConns {
		errs = append(errs, "database: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}

	// S3 (only meaningful when archival is enabled)
	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when enabled")
		}
	}

	// Sources
	if !c.Sources.Polymarket.Enabled && !c.Sources.Kalshi.Enabled {
		errs = append(errs, "sources: at least one source must be enabled")
	}
	for name, src := range map[string]SourceConfig{
		"polymarket": c.Sources.Polymarket,
		"kalshi":     c.Sources.Kalshi,
	} {
		if !src.Enabled {
			continue
		}
		if src.BaseURL == "" {
			errs = append(errs, fmt.Sprintf("sources.%s: base_url must not be empty", name))
		}
		if src.Limit < 1 {
			errs = append(errs, fmt.Sprintf("sources.%s: limit must be >= 1", name))
		}
	}

	// Refresh
	if c.Refresh.Interval.Duration <= 0 {
		errs = append(errs, "refresh: interval must be positive")
	}
	if c.Refresh.RequestTimeout.Duration <= 0 {
		errs = append(errs, "refresh: request_timeout must be positive")
	}
	if c.Refresh.StalenessThresholdMinutes < 1 {
		errs = append(errs, "refresh: staleness_threshold_minutes must be >= 1")
	}
	if d := c.Refresh.StalenessThreshold(); d <= c.Refresh.Interval.Duration {
		errs = append(errs, "refresh: staleness threshold must exceed the refresh interval, otherwise a single slow cycle evicts live markets")
	}
	if c.Refresh.RetentionDays < 1 {
		errs = append(errs, "refresh: retention_days must be >= 1")
	}
	if len(strings.Fields(c.Refresh.ArchiveCron)) != 5 {
		errs = append(errs, fmt.Sprintf("refresh: archive_cron must be a 5-field cron expression, got %q", c.Refresh.ArchiveCron))
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
