package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type StoreBackend string

const (
	StoreMemory   StoreBackend = "memory"
	StorePostgres StoreBackend = "postgres"
	StoreRedis    StoreBackend = "redis"
)

type Config struct {
	Port          int
	AllowedOrigin string

	StoreBackend StoreBackend
	DatabaseURL  string
	RedisURL     string
	RoomTTL      time.Duration

	LogLevel  string
	LogPretty bool

	DefaultTimeLimit int
	MinPlayers       int
	ActionRate       float64
	ActionBurst      int
	CategoriesFile   string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Could not read .env file")
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		AllowedOrigin:  getString("ALLOWED_ORIGIN", "*"),
		StoreBackend:   StoreBackend(strings.ToLower(getString("STORE_BACKEND", string(StoreMemory)))),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       getString("REDIS_URL", "localhost:6379"),
		LogLevel:       getString("LOG_LEVEL", "info"),
		CategoriesFile: os.Getenv("CATEGORIES_FILE"),
	}

	var err error
	if cfg.Port, err = getInt("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.RoomTTL, err = getDuration("ROOM_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.LogPretty, err = getBool("LOG_PRETTY", true); err != nil {
		return nil, err
	}
	if cfg.DefaultTimeLimit, err = getInt("DEFAULT_TIME_LIMIT", 60); err != nil {
		return nil, err
	}
	if cfg.MinPlayers, err = getInt("MIN_PLAYERS", 3); err != nil {
		return nil, err
	}
	if cfg.ActionRate, err = getFloat("ACTION_RATE", 5); err != nil {
		return nil, err
	}
	if cfg.ActionBurst, err = getInt("ACTION_BURST", 10); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case StoreMemory, StoreRedis:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("STORE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.DefaultTimeLimit <= 0 {
		return fmt.Errorf("DEFAULT_TIME_LIMIT must be positive, got %d", c.DefaultTimeLimit)
	}
	if c.MinPlayers < 1 {
		return fmt.Errorf("MIN_PLAYERS must be at least 1, got %d", c.MinPlayers)
	}
	if c.ActionRate <= 0 || c.ActionBurst <= 0 {
		return fmt.Errorf("ACTION_RATE and ACTION_BURST must be positive")
	}
	return nil
}

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := getString(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := getString(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := getString(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := getString(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
