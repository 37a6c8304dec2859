package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the server.
type Config struct {
	ListenAddr    string
	DatabaseURL   string
	UploadDir     string
	JWTSecret     string
	TokenTTL      time.Duration
	Environment   string
	SweepInterval time.Duration
	ReminderHour  int
	TelegramToken string
}

// Production reports whether error responses should hide internals.
func (c Config) Production() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:    strings.TrimSpace(os.Getenv("LISTEN_ADDR")),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		UploadDir:     strings.TrimSpace(os.Getenv("UPLOAD_DIR")),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		TokenTTL:      parseHours(strings.TrimSpace(os.Getenv("TOKEN_TTL_HOURS"))),
		Environment:   strings.TrimSpace(os.Getenv("ENVIRONMENT")),
		SweepInterval: parseHours(strings.TrimSpace(os.Getenv("SWEEP_INTERVAL_HOURS"))),
		ReminderHour:  parseHourOfDay(strings.TrimSpace(os.Getenv("REMINDER_HOUR")), 9),
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "taskhub.db"
	}

	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}

	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 72 * time.Hour
	}

	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = 6 * time.Hour
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func parseHourOfDay(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	hour, err := strconv.Atoi(raw)
	if err != nil || hour < 0 || hour > 23 {
		return fallback
	}
	return hour
}

func parseHours(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return 0
	}
	return time.Duration(hours) * time.Hour
}
