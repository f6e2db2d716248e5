package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/language"
)

// Config holds runtime configuration for the console.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	AppTimezone       string        `envconfig:"APP_TIMEZONE" default:"Africa/Addis_Ababa"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	APIBaseURL string        `envconfig:"API_BASE_URL" default:"http://127.0.0.1:8000"`
	APITimeout time.Duration `envconfig:"API_TIMEOUT"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	PGDSN        string `envconfig:"PG_DSN"`
	GotenbergURL string `envconfig:"GOTENBERG_URL"`

	PharmacyName      string `envconfig:"PHARMACY_NAME" default:"Hawi Pharmacy"`
	CurrencyLocale    string `envconfig:"CURRENCY_LOCALE" default:"en"`
	LowStockThreshold int    `envconfig:"LOW_STOCK_THRESHOLD" default:"10"`
	ExpiryHorizonDays int    `envconfig:"EXPIRY_HORIZON_DAYS" default:"183"`

	RateLimitPerMinute      int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"300"`
	LoginRateLimitPerMinute int `envconfig:"LOGIN_RATE_LIMIT_PER_MINUTE" default:"10"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SessionSecret) == "" {
		return errors.New("session secret must be provided")
	}
	if strings.TrimSpace(c.CSRFSecret) == "" {
		return errors.New("csrf secret must be provided")
	}
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return errors.New("api base url must be provided")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log format %q: want text or json", c.LogFormat)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := language.Parse(c.CurrencyLocale); err != nil {
		return fmt.Errorf("currency locale %q: %w", c.CurrencyLocale, err)
	}
	if _, err := time.LoadLocation(c.AppTimezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.AppTimezone, err)
	}
	if c.LowStockThreshold < 0 {
		return errors.New("low stock threshold must not be negative")
	}
	if c.ExpiryHorizonDays <= 0 {
		return errors.New("expiry horizon must be positive")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Locale returns the currency locale tag.
func (c *Config) Locale() language.Tag {
	tag, err := language.Parse(c.CurrencyLocale)
	if err != nil {
		return language.English
	}
	return tag
}

// Location returns the console time zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}
