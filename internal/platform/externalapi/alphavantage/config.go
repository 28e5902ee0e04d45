// Package alphavantage provides a quote client for the Alpha Vantage stock market API.
package alphavantage

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	defaultBaseURL   = "https://www.alphavantage.co"
	defaultPricePath = `$["Global Quote"]["05. price"]`
	defaultTimeout   = 5 * time.Second
	// defaultRateLimit matches the free tier's calls per minute.
	defaultRateLimit = 5
)

// Config holds configuration for the Alpha Vantage API client.
type Config struct {
	APIKey    string        // API key for authentication
	BaseURL   string        // Base URL for the API (e.g., "https://www.alphavantage.co")
	PricePath string        // JSONPath of the price within the response body
	Timeout   time.Duration // HTTP request timeout
	RateLimit int           // Calls per minute, 0 disables limiting
}

// LoadConfig loads Alpha Vantage configuration from environment variables.
func LoadConfig() Config {
	cfg := Config{
		APIKey:    os.Getenv("ALPHA_VANTAGE_API_KEY"),
		BaseURL:   os.Getenv("ALPHA_VANTAGE_BASE_URL"),
		PricePath: os.Getenv("QUOTE_PRICE_PATH"),
		Timeout:   defaultTimeout,
		RateLimit: defaultRateLimit,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PricePath == "" {
		cfg.PricePath = defaultPricePath
	}
	if cfg.APIKey == "" {
		slog.Warn("ALPHA_VANTAGE_API_KEY is not set; quotes will fail")
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
