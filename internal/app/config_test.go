package app

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "session-secret")
	t.Setenv("CSRF_SECRET", "csrf-secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.APIBaseURL)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.LowStockThreshold)
	assert.Equal(t, 183, cfg.ExpiryHorizonDays)
	assert.Empty(t, cfg.PGDSN)
	assert.Empty(t, cfg.GotenbergURL)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "en", cfg.Locale().String())
	assert.Equal(t, "Africa/Addis_Ababa", cfg.Location().String())
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("API_BASE_URL", "https://api.hawi.example")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("LOW_STOCK_THRESHOLD", "25")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "https://api.hawi.example", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.APITimeout)
	assert.Equal(t, 25, cfg.LowStockThreshold)
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			SessionSecret:     "s",
			CSRFSecret:        "c",
			APIBaseURL:        "http://api",
			LogFormat:         "text",
			LogLevel:          "info",
			CurrencyLocale:    "en",
			AppTimezone:       "UTC",
			ExpiryHorizonDays: 30,
		}
	}
	require.NoError(t, base().Validate())

	cases := map[string]func(*Config){
		"log format":   func(c *Config) { c.LogFormat = "xml" },
		"log level":    func(c *Config) { c.LogLevel = "loud" },
		"locale":       func(c *Config) { c.CurrencyLocale = "not a locale!" },
		"timezone":     func(c *Config) { c.AppTimezone = "Mars/Olympus" },
		"threshold":    func(c *Config) { c.LowStockThreshold = -1 },
		"horizon":      func(c *Config) { c.ExpiryHorizonDays = 0 },
		"api base url": func(c *Config) { c.APIBaseURL = " " },
	}
	for name, mutate := range cases {
		cfg := base()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestNewLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{LogFormat: "json", LogLevel: "warn"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", slog.String("k", "v"))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
