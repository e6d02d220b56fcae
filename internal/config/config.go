package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/centromex/request-relay-bot/internal/settings"
)

var ErrMissingToken = errors.New("BOT_TOKEN not set in environment")

type Config struct {
	TelegramToken        string
	OwnerID              int64
	AdminChatID          int64
	DefaultDeadlineHours int
	PollTimeoutSeconds   int
	Debug                bool

	LogLevel  string
	LogFormat string

	MetricsAddr string

	PurgeSchedule string
	Retention     time.Duration
}

// Load reads an optional .env file and then the environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		// existing environment variables win over the file
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (Config, error) {
	cfg := Config{
		TelegramToken: strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		Debug:         getEnvBool("BOT_DEBUG"),
		LogLevel:      strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:     strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),
		MetricsAddr:   os.Getenv("METRICS_ADDR"),
		PurgeSchedule: getEnvOrDefault("LEDGER_PURGE_SCHEDULE", "@every 1h"),
	}
	if cfg.TelegramToken == "" {
		return Config{}, ErrMissingToken
	}

	var err error
	if cfg.OwnerID, err = getEnvInt64("BOT_OWNER_ID", 0); err != nil {
		return Config{}, err
	}
	if cfg.AdminChatID, err = getEnvInt64("ADMIN_CHAT_ID", 0); err != nil {
		return Config{}, err
	}

	hours, err := getEnvInt64("DEFAULT_DEADLINE_HOURS", settings.DefaultDeadlineHours)
	if err != nil {
		return Config{}, err
	}
	if hours < settings.MinDeadlineHours || hours > settings.MaxDeadlineHours {
		return Config{}, fmt.Errorf("invalid DEFAULT_DEADLINE_HOURS %d: must be between %d and %d",
			hours, settings.MinDeadlineHours, settings.MaxDeadlineHours)
	}
	cfg.DefaultDeadlineHours = int(hours)

	poll, err := getEnvInt64("POLL_TIMEOUT_SECONDS", 60)
	if err != nil {
		return Config{}, err
	}
	if poll < 1 {
		poll = 60
	}
	cfg.PollTimeoutSeconds = int(poll)

	retention, err := getEnvInt64("LEDGER_RETENTION_HOURS", 48)
	if err != nil {
		return Config{}, err
	}
	if retention < 1 {
		retention = 48
	}
	cfg.Retention = time.Duration(retention) * time.Hour

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvBool(key string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && parsed
}
