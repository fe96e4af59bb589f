package config

import (
	"testing"
	"time"

	"atlwatch/pkg/logger/zerolog"

	"github.com/stretchr/testify/require"
)

func testLog(t *testing.T) *zerolog.Adapter {
	t.Helper()
	log, err := zerolog.New("disabled", time.RFC3339, false, true)
	require.NoError(t, err)
	return log
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("ATLWATCH_TELEGRAM_TOKEN", "123:abc")
	t.Setenv("ATLWATCH_TELEGRAM_USERS", "111,222")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(testLog(t))
	require.NoError(t, err)

	require.Equal(t, "ARB", cfg.Asset)
	require.Equal(t, SourceCoinGecko, cfg.Source)
	require.Equal(t, "arbitrum", cfg.CoinID)
	require.Equal(t, "usd", cfg.VsCurrency)
	require.Equal(t, time.Minute, cfg.CheckInterval)
	require.Equal(t, time.Duration(0), cfg.RunFor)
	require.Equal(t, "atl.db", cfg.StateFile)
	require.True(t, cfg.Telegram.Enabled)
	require.Equal(t, []int{111, 222}, cfg.Telegram.Users)
}

func TestLoad_MissingTokenFails(t *testing.T) {
	t.Setenv("ATLWATCH_TELEGRAM_TOKEN", "")
	t.Setenv("ATLWATCH_TELEGRAM_USERS", "111")

	_, err := Load(testLog(t))
	require.Error(t, err)
	require.Contains(t, err.Error(), "ATLWATCH_TELEGRAM_TOKEN")
}

func TestLoad_MissingUsersFails(t *testing.T) {
	t.Setenv("ATLWATCH_TELEGRAM_TOKEN", "123:abc")
	t.Setenv("ATLWATCH_TELEGRAM_USERS", "")

	_, err := Load(testLog(t))
	require.Error(t, err)
	require.Contains(t, err.Error(), "ATLWATCH_TELEGRAM_USERS")
}

func TestLoad_DisabledTelegramNeedsNoCredentials(t *testing.T) {
	t.Setenv("ATLWATCH_TELEGRAM_ENABLED", "false")
	t.Setenv("ATLWATCH_TELEGRAM_TOKEN", "")
	t.Setenv("ATLWATCH_TELEGRAM_USERS", "")

	cfg, err := Load(testLog(t))
	require.NoError(t, err)
	require.False(t, cfg.Telegram.Enabled)
}

func TestLoad_BadUserIDFails(t *testing.T) {
	t.Setenv("ATLWATCH_TELEGRAM_TOKEN", "123:abc")
	t.Setenv("ATLWATCH_TELEGRAM_USERS", "111,not-a-number")

	_, err := Load(testLog(t))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not-a-number")
}

func TestLoad_BadIntervalFails(t *testing.T) {
	setRequired(t)
	t.Setenv("ATLWATCH_CHECK_INTERVAL", "soon")

	_, err := Load(testLog(t))
	require.Error(t, err)
	require.Contains(t, err.Error(), "ATLWATCH_CHECK_INTERVAL")
}

func TestLoad_UnknownSourceFails(t *testing.T) {
	setRequired(t)
	t.Setenv("ATLWATCH_PRICE_SOURCE", "kraken")

	_, err := Load(testLog(t))
	require.Error(t, err)
	require.Contains(t, err.Error(), "kraken")
}

func TestLoad_ParsesDurations(t *testing.T) {
	setRequired(t)
	t.Setenv("ATLWATCH_CHECK_INTERVAL", "30s")
	t.Setenv("ATLWATCH_RUN_FOR", "1h30m")

	cfg, err := Load(testLog(t))
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, cfg.CheckInterval)
	require.Equal(t, 90*time.Minute, cfg.RunFor)
}

func TestLoad_BinanceSource(t *testing.T) {
	setRequired(t)
	t.Setenv("ATLWATCH_PRICE_SOURCE", "binance")
	t.Setenv("ATLWATCH_PAIR", "ARBUSDT")

	cfg, err := Load(testLog(t))
	require.NoError(t, err)
	require.Equal(t, SourceBinance, cfg.Source)
	require.Equal(t, "ARBUSDT", cfg.Pair)
}
