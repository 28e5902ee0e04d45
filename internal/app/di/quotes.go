package di

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"investment_game/internal/feature/portfolio/usecase"
	"investment_game/internal/platform/cache"
	"investment_game/internal/platform/externalapi/alphavantage"
	"investment_game/internal/platform/externalapi/twelvedata"
	infrahttp "investment_game/internal/platform/http"
	"investment_game/internal/shared/ratelimiter"
)

const (
	ProviderAlphaVantage = "alphavantage"
	ProviderTwelveData   = "twelvedata"
)

// NewQuoteProvider creates the upstream quote client selected by QUOTE_PROVIDER,
// rate limited and wrapped in the Redis cache. A nil rdb disables caching.
func NewQuoteProvider(rdb *redis.Client) usecase.QuoteProvider {
	return cache.NewCachingQuoteProvider(rdb, quoteCacheTTL(), upstreamQuotes(os.Getenv("QUOTE_PROVIDER")), "quotes")
}

func upstreamQuotes(provider string) usecase.QuoteProvider {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderTwelveData:
		cfg := twelvedata.LoadConfig()
		limiter := ratelimiter.NewRateLimiter(cfg.RateLimit, time.Minute)
		return twelvedata.NewTwelveDataQuotes(cfg, infrahttp.NewHTTPClient(cfg.Timeout), limiter)
	case "", ProviderAlphaVantage:
	default:
		slog.Warn("unknown QUOTE_PROVIDER, using alphavantage", "value", provider)
	}

	cfg := alphavantage.LoadConfig()
	limiter := ratelimiter.NewRateLimiter(cfg.RateLimit, time.Minute)
	return alphavantage.NewClient(cfg, infrahttp.NewHTTPClient(cfg.Timeout), limiter)
}

// quoteCacheTTL reads QUOTE_CACHE_TTL; zero lets the cache pick its default.
func quoteCacheTTL() time.Duration {
	v := os.Getenv("QUOTE_CACHE_TTL")
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid QUOTE_CACHE_TTL, using default", "value", v)
		return 0
	}
	return d
}
