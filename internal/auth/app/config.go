package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds everything the auth service needs at startup. Values come
// from three layers: built-in defaults, an optional TOML config file
// (AUTH_CONFIG_FILE), and environment variables, strongest last.
type Config struct {
	Issuer string `toml:"issuer"` // Issuer name shown in authenticator apps

	DatabaseFile string `toml:"database_file"` // Path to SQLite database file (default: ./sprintdeck.db)
	PepperFile   string `toml:"pepper_file"`   // Path to password-hash pepper file (default: ./pepper)

	SessionBackend  string        `toml:"session_backend"`   // "sqlite" (default) or "redis"
	SessionRedisURL string        `toml:"session_redis_url"` // Redis URL, required when SessionBackend is "redis"
	SessionTTL      time.Duration `toml:"-"`                 // Session lifetime (default: 168h); `session_ttl` string in TOML

	Env       string `toml:"env"`        // Environment (dev, staging, prod) (default: dev)
	LogLevel  string `toml:"log_level"`  // Log level (debug, info, warn, error) (default: info)
	LogFormat string `toml:"log_format"` // Log format (json, text) (default: json)

	Port                 int           `toml:"port"` // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration `toml:"-"`    // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration `toml:"-"`    // Expired-session sweep interval (default: 1h)
}

// fileDurations carries the duration fields of the TOML file as strings so
// they can be written as "30m" rather than nanosecond integers.
type fileDurations struct {
	SessionTTL           string `toml:"session_ttl"`
	ShutdownGracePeriod  string `toml:"shutdown_grace_period"`
	HousekeepingInterval string `toml:"housekeeping_interval"`
}

func defaultConfig() Config {
	return Config{
		Issuer:               "Sprintdeck",
		DatabaseFile:         "sprintdeck.db",
		PepperFile:           "pepper",
		SessionBackend:       "sqlite",
		SessionTTL:           7 * 24 * time.Hour,
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
		HousekeepingInterval: 1 * time.Hour,
	}
}

// LoadConfig assembles the configuration from defaults, the optional TOML
// file and the environment.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("AUTH_CONFIG_FILE"); path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv()

	if cfg.SessionBackend != "sqlite" && cfg.SessionBackend != "redis" {
		return Config{}, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
	if cfg.SessionBackend == "redis" && cfg.SessionRedisURL == "" {
		return Config{}, fmt.Errorf("session backend is redis but no redis url configured")
	}

	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	// Second pass for the human-readable duration strings.
	var durs fileDurations
	if _, err := toml.DecodeFile(path, &durs); err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	if err := overrideDuration(&cfg.SessionTTL, durs.SessionTTL); err != nil {
		return fmt.Errorf("invalid session_ttl in %s: %w", path, err)
	}
	if err := overrideDuration(&cfg.ShutdownGracePeriod, durs.ShutdownGracePeriod); err != nil {
		return fmt.Errorf("invalid shutdown_grace_period in %s: %w", path, err)
	}
	if err := overrideDuration(&cfg.HousekeepingInterval, durs.HousekeepingInterval); err != nil {
		return fmt.Errorf("invalid housekeeping_interval in %s: %w", path, err)
	}
	return nil
}

func overrideDuration(dst *time.Duration, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

// applyEnv overrides config fields from environment variables when set.
func (cfg *Config) applyEnv() {
	overrideString(&cfg.Issuer, "AUTH_ISSUER")
	overrideString(&cfg.DatabaseFile, "AUTH_DATABASE_FILE")
	overrideString(&cfg.PepperFile, "AUTH_PEPPER_FILE")
	overrideString(&cfg.SessionBackend, "SESSION_BACKEND")
	overrideString(&cfg.SessionRedisURL, "SESSION_REDIS_URL")
	overrideString(&cfg.Env, "ENV")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideString(&cfg.LogFormat, "LOG_FORMAT")
	overrideInt(&cfg.Port, "PORT")
	overrideEnvDuration(&cfg.SessionTTL, "SESSION_TTL")
	overrideEnvDuration(&cfg.ShutdownGracePeriod, "SHUTDOWN_GRACE_PERIOD")
	overrideEnvDuration(&cfg.HousekeepingInterval, "HOUSEKEEPING_INTERVAL")
}

func overrideString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func overrideInt(dst *int, key string) {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			*dst = intValue
		}
	}
}

func overrideEnvDuration(dst *time.Duration, key string) {
	value := os.Getenv(key)
	if value == "" {
		return
	}
	if duration, err := time.ParseDuration(value); err == nil {
		*dst = duration
	}
}
