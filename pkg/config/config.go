package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"atlwatch/pkg/core"
	"atlwatch/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/xhit/go-str2duration/v2"
)

// Source identifies which price API backs the tracker.
type Source string

const (
	SourceCoinGecko Source = "coingecko"
	SourceBinance   Source = "binance"
)

// Config is the full environment-supplied configuration. There are no
// command line flags; everything comes from the environment (an optional
// .env file is honored).
type Config struct {
	Asset      string // display symbol used in notifications
	Source     Source
	CoinID     string // coingecko token id
	VsCurrency string // coingecko quote currency
	Pair       string // binance symbol

	CheckInterval time.Duration
	RunFor        time.Duration // 0 means run until a termination signal
	StateFile     string

	Telegram core.TelegramSettings
}

// Load reads configuration from the environment. Missing credentials and
// unparsable values are startup errors; the loop must never start
// misconfigured.
func Load(log logger.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug("no .env file loaded")
	}

	cfg := &Config{
		Asset:      getEnvString("ATLWATCH_ASSET", "ARB"),
		Source:     Source(getEnvString("ATLWATCH_PRICE_SOURCE", string(SourceCoinGecko))),
		CoinID:     getEnvString("ATLWATCH_COIN_ID", "arbitrum"),
		VsCurrency: getEnvString("ATLWATCH_VS_CURRENCY", "usd"),
		Pair:       getEnvString("ATLWATCH_PAIR", "ARBUSDT"),
		StateFile:  getEnvString("ATLWATCH_STATE_FILE", "atl.db"),
	}

	if cfg.Source != SourceCoinGecko && cfg.Source != SourceBinance {
		return nil, fmt.Errorf("unknown price source %q", cfg.Source)
	}

	interval, err := parseDurationEnv("ATLWATCH_CHECK_INTERVAL", "1m")
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		return nil, fmt.Errorf("ATLWATCH_CHECK_INTERVAL must be positive")
	}
	cfg.CheckInterval = interval

	runFor, err := parseDurationEnv("ATLWATCH_RUN_FOR", "0s")
	if err != nil {
		return nil, err
	}
	if runFor < 0 {
		return nil, fmt.Errorf("ATLWATCH_RUN_FOR must not be negative")
	}
	cfg.RunFor = runFor

	telegram, err := loadTelegram()
	if err != nil {
		return nil, err
	}
	cfg.Telegram = telegram

	return cfg, nil
}

func loadTelegram() (core.TelegramSettings, error) {
	settings := core.TelegramSettings{
		Enabled: true,
		Token:   os.Getenv("ATLWATCH_TELEGRAM_TOKEN"),
	}

	if raw := os.Getenv("ATLWATCH_TELEGRAM_ENABLED"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return settings, fmt.Errorf("invalid ATLWATCH_TELEGRAM_ENABLED: %w", err)
		}
		settings.Enabled = enabled
	}

	if !settings.Enabled {
		return settings, nil
	}

	if settings.Token == "" {
		return settings, fmt.Errorf("ATLWATCH_TELEGRAM_TOKEN is required, set it or disable telegram with ATLWATCH_TELEGRAM_ENABLED=false")
	}

	users, err := parseUsers(os.Getenv("ATLWATCH_TELEGRAM_USERS"))
	if err != nil {
		return settings, err
	}
	if len(users) == 0 {
		return settings, fmt.Errorf("ATLWATCH_TELEGRAM_USERS is required when telegram is enabled")
	}
	settings.Users = users

	return settings, nil
}

// parseUsers splits a comma-separated list of Telegram chat IDs.
func parseUsers(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	users := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid telegram user id %q: %w", part, err)
		}
		users = append(users, id)
	}

	return users, nil
}

func parseDurationEnv(key, defaultValue string) (time.Duration, error) {
	raw := getEnvString(key, defaultValue)
	d, err := str2duration.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// getEnvString returns the value of the environment variable or the default if not set
func getEnvString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
