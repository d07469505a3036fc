package config

import (
	"os"
	"strconv"

	"metervoice/internal/database"
)

// Config metervoice (HTTP API) configuration.
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled   bool
	AutoMigrate bool
	Database    database.Config
	Redis       struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	SMS     SMSConfig
	Gateway GatewayConfig
}

// SMSConfig outbound SMS gateway settings.
type SMSConfig struct {
	BaseURL string // gateway endpoint
	APIKey  string
	Sender  string // sender id shown on the operator's phone
	Timeout int    // request timeout in seconds
}

// GatewayConfig voice-platform facing settings.
type GatewayConfig struct {
	JWTSecret  string // HS256 shared secret presented by the voice platform
	SessionTTL int    // call-session cache TTL in seconds
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// Default to true for local dev: if DB is unavailable, metervoice falls
	// back to the in-memory store so the voice flow can still be exercised.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.AutoMigrate = getEnv("AUTO_MIGRATE", "false") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "metervoice")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.SMS.BaseURL = getEnv("SMS_BASE_URL", "")
	cfg.SMS.APIKey = getEnv("SMS_API_KEY", "")
	cfg.SMS.Sender = getEnv("SMS_SENDER", "MeterVoice")
	cfg.SMS.Timeout = parseInt(getEnv("SMS_TIMEOUT_SECONDS", "10"), 10)

	cfg.Gateway.JWTSecret = getEnv("GATEWAY_JWT_SECRET", "")
	cfg.Gateway.SessionTTL = parseInt(getEnv("CALL_SESSION_TTL_SECONDS", "900"), 900)

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
