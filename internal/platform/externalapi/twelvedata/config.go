// Package twelvedata provides a quote client for the Twelve Data stock market API.
package twelvedata

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	defaultBaseURL = "https://api.twelvedata.com"
	defaultTimeout = 5 * time.Second
	// defaultRateLimit matches the basic plan's credits per minute.
	defaultRateLimit = 8
)

// Config holds configuration for the Twelve Data API client.
type Config struct {
	TwelveDataAPIKey string        // API key for authentication
	BaseURL          string        // Base URL for the API (e.g., "https://api.twelvedata.com")
	Timeout          time.Duration // HTTP request timeout
	RateLimit        int           // Calls per minute, 0 disables limiting
}

// LoadConfig loads Twelve Data configuration from environment variables.
// QUOTE_TIMEOUT and QUOTE_RATE_LIMIT are shared with the Alpha Vantage client.
func LoadConfig() Config {
	cfg := Config{
		TwelveDataAPIKey: os.Getenv("TWELVE_DATA_API_KEY"),
		BaseURL:          os.Getenv("TWELVE_DATA_BASE_URL"),
		Timeout:          defaultTimeout,
		RateLimit:        defaultRateLimit,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TwelveDataAPIKey == "" {
		slog.Warn("TWELVE_DATA_API_KEY is not set; quotes will fail")
	}
	if v := os.Getenv("QUOTE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		} else {
			slog.Warn("invalid QUOTE_TIMEOUT, using default", "value", v, "default", defaultTimeout)
		}
	}
	if v := os.Getenv("QUOTE_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RateLimit = n
		} else {
			slog.Warn("invalid QUOTE_RATE_LIMIT, using default", "value", v, "default", defaultRateLimit)
		}
	}
	return cfg
}
