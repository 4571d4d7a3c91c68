package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	ListenAddr string

	AdvisorBaseURL string
	AdvisorTimeout time.Duration
	AdvisorRetries int

	RedisURL    string
	DatabaseURL string

	SessionTTL   time.Duration
	HistoryLimit int

	RedName   string
	BlackName string

	MessageDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:     ":8690",
		AdvisorTimeout: 20 * time.Second,
		AdvisorRetries: 1,
		SessionTTL:     24 * time.Hour,
		HistoryLimit:   20,
		RedName:        "Red",
		BlackName:      "Black",
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}

	cfg.AdvisorBaseURL = strings.TrimSpace(os.Getenv("ADVISOR_BASE_URL"))
	if v := strings.TrimSpace(os.Getenv("ADVISOR_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.AdvisorTimeout = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("ADVISOR_RETRIES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.AdvisorRetries = n
		}
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("SESSION_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SessionTTL = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("HISTORY_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryLimit = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("RED_NAME")); v != "" {
		cfg.RedName = v
	}
	if v := strings.TrimSpace(os.Getenv("BLACK_NAME")); v != "" {
		cfg.BlackName = v
	}

	cfg.MessageDir = strings.TrimSpace(os.Getenv("MESSAGE_TEMPLATE_DIR"))

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}
