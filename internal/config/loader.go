package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies PREDBOARD_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known PREDBOARD_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// --- Database ---
	setStr(&cfg.Database.DSN, "PREDBOARD_DATABASE_DSN")
	setStr(&cfg.Database.Host, "PREDBOARD_DATABASE_HOST")
	setInt(&cfg.Database.Port, "PREDBOARD_DATABASE_PORT")
	setStr(&cfg.Database.Database, "PREDBOARD_DATABASE_NAME")
	setStr(&cfg.Database.User, "PREDBOARD_DATABASE_USER")
	setStr(&cfg.Database.Password, "PREDBOARD_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "PREDBOARD_DATABASE_SSLMODE")
	setInt(&cfg.Database.PoolMaxConns, "PREDBOARD_DATABASE_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "PREDBOARD_DATABASE_POOL_MIN_CONNS")
	setBool(&cfg.Database.RunMigrations, "PREDBOARD_DATABASE_RUN_MIGRATIONS")

	// --- Redis ---
	setStr(&cfg.Redis.Addr, "PREDBOARD_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "PREDBOARD_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "PREDBOARD_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "PREDBOARD_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "PREDBOARD_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "PREDBOARD_REDIS_TLS_ENABLED")

	// --- S3 ---
	setBool(&cfg.S3.Enabled, "PREDBOARD_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "PREDBOARD_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "PREDBOARD_S3_REGION")
	setStr(&cfg.S3.Bucket, "PREDBOARD_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "PREDBOARD_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "PREDBOARD_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "PREDBOARD_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "PREDBOARD_S3_FORCE_PATH_STYLE")

	// --- Sources ---
	setBool(&cfg.Sources.Polymarket.Enabled, "PREDBOARD_SOURCES_POLYMARKET_ENABLED")
	setStr(&cfg.Sources.Polymarket.BaseURL, "PREDBOARD_SOURCES_POLYMARKET_BASE_URL")
	setInt(&cfg.Sources.Polymarket.Limit, "PREDBOARD_SOURCES_POLYMARKET_LIMIT")
	setBool(&cfg.Sources.Kalshi.Enabled, "PREDBOARD_SOURCES_KALSHI_ENABLED")
	setStr(&cfg.Sources.Kalshi.BaseURL, "PREDBOARD_SOURCES_KALSHI_BASE_URL")
	setInt(&cfg.Sources.Kalshi.Limit, "PREDBOARD_SOURCES_KALSHI_LIMIT")

	// --- Refresh ---
	setDuration(&cfg.Refresh.Interval, "PREDBOARD_REFRESH_INTERVAL")
	setDuration(&cfg.Refresh.RequestTimeout, "PREDBOARD_REFRESH_REQUEST_TIMEOUT")
	setInt(&cfg.Refresh.StalenessThresholdMinutes, "PREDBOARD_REFRESH_STALENESS_THRESHOLD_MINUTES")
	setInt(&cfg.Refresh.RetentionDays, "PREDBOARD_REFRESH_RETENTION_DAYS")
	setStr(&cfg.Refresh.ArchiveCron, "PREDBOARD_REFRESH_ARCHIVE_CRON")

	// --- Server ---
	setInt(&cfg.Server.Port, "PREDBOARD_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "PREDBOARD_SERVER_CORS_ORIGINS")

	// --- Notify ---
	setStr(&cfg.Notify.TelegramToken, "PREDBOARD_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "PREDBOARD_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "PREDBOARD_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "PREDBOARD_NOTIFY_EVENTS")

	// --- Top-level ---
	setStr(&cfg.LogLevel, "PREDBOARD_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
