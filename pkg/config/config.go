package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Classification engine
	Engine EngineConfig

	// Universe refresh
	Universe UniverseConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// EngineConfig holds the limit-up classification parameters.
// Constructed once at startup and passed into the pipeline; components
// never reach back into process environment.
type EngineConfig struct {
	// StreakWindowDays bounds the rolling bar window used for streaks.
	StreakWindowDays int

	// CandidateRet is the inclusive minimum return for the open/candidate
	// watchlist (0.10 == 10%).
	CandidateRet float64

	// ThemeRet is the minimum return for a no_limit symbol to enter the
	// limit-up board as a theme row.
	ThemeRet float64

	// PeersPerSectorCap limits same-sector peer rows per sector.
	PeersPerSectorCap int

	// UseOvershootLock enables the looser locked test that tolerates
	// data-source prices above the theoretical limit. Off by default;
	// only some vendor feeds need it.
	UseOvershootLock bool

	// AutoNoLimitFromPrice reclassifies a standard symbol as no_limit when
	// its high exceeds the limit price by more than AutoNoLimitExceedTicks
	// ticks and its return is at least AutoNoLimitMinRet.
	AutoNoLimitFromPrice   bool
	AutoNoLimitExceedTicks int
	AutoNoLimitMinRet      float64

	// NoLimitSymbols is the manually curated set of symbols trading
	// without a move ceiling (fresh listings, special regimes).
	NoLimitSymbols map[string]struct{}

	// MarketsFile optionally overrides the built-in market registry (YAML).
	MarketsFile string

	// Markets lists the market codes the scheduler classifies.
	Markets []string

	// ClassifySchedule overrides the nightly classify cron expression.
	ClassifySchedule string
}

// UniverseConfig holds symbol-universe refresh settings
type UniverseConfig struct {
	// ISINListURL is the exchange page carrying the listed-symbol table.
	ISINListURL string

	// RequestsPerSecond throttles refresh fetches.
	RequestsPerSecond float64
}

// Load reads configuration from environment variables
// ⭐ SSOT: only this function calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8097"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		Engine: EngineConfig{
			StreakWindowDays:       getEnvAsInt("STREAK_WINDOW_DAYS", 30),
			CandidateRet:           getEnvAsFloat("CANDIDATE_RET", 0.10),
			ThemeRet:               getEnvAsFloat("NO_LIMIT_THEME_RET", 0.10),
			PeersPerSectorCap:      getEnvAsInt("PEERS_BY_SECTOR_CAP", 50),
			UseOvershootLock:       getEnvAsBool("USE_OVERSHOOT_LOCK", false),
			AutoNoLimitFromPrice:   getEnvAsBool("AUTO_NO_LIMIT_FROM_PRICE", true),
			AutoNoLimitExceedTicks: getEnvAsInt("AUTO_NO_LIMIT_EXCEED_TICKS", 2),
			AutoNoLimitMinRet:      getEnvAsFloat("AUTO_NO_LIMIT_MIN_RET", 0.11),
			NoLimitSymbols:         getEnvAsSet("NO_LIMIT_SYMBOLS"),
			MarketsFile:            getEnv("MARKETS_FILE", ""),
			Markets:                getEnvAsList("MARKETS", "TW"),
			ClassifySchedule:       getEnv("CLASSIFY_SCHEDULE", ""),
		},

		Universe: UniverseConfig{
			ISINListURL:       getEnv("UNIVERSE_ISIN_URL", "https://isin.twse.com.tw/isin/C_public.jsp?strMode=2"),
			RequestsPerSecond: getEnvAsFloat("UNIVERSE_RPS", 1.0),
		},

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Engine.StreakWindowDays <= 0 {
		return fmt.Errorf("STREAK_WINDOW_DAYS must be positive")
	}

	if c.Engine.CandidateRet < 0 {
		return fmt.Errorf("CANDIDATE_RET must not be negative")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList parses a comma-separated list, trimming blanks.
func getEnvAsList(key, defaultValue string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		raw = defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, strings.ToUpper(part))
		}
	}
	return out
}

func getEnvAsSet(key string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, part := range strings.Split(os.Getenv(key), ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out[part] = struct{}{}
		}
	}
	return out
}
