// Package cache provides caching decorators for outbound lookups.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"investment_game/internal/feature/portfolio/usecase"
)

// DefaultQuoteTTL keeps quotes fresh enough for trading while absorbing page refresh bursts.
const DefaultQuoteTTL = time.Minute

// CachingQuoteProvider decorates a QuoteProvider with a short-lived Redis cache.
// Only successful quotes are cached.
type CachingQuoteProvider struct {
	inner     usecase.QuoteProvider
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.QuoteProvider = (*CachingQuoteProvider)(nil)

// NewCachingQuoteProvider decorates a QuoteProvider with Redis caching.
// If ttl is 0, it defaults to DefaultQuoteTTL. If namespace is empty, it uses "quotes".
// A nil rdb bypasses the cache.
func NewCachingQuoteProvider(rdb *redis.Client, ttl time.Duration, inner usecase.QuoteProvider, namespace string) *CachingQuoteProvider {
	if ttl <= 0 {
		ttl = DefaultQuoteTTL
	}
	if namespace == "" {
		namespace = "quotes"
	}
	return &CachingQuoteProvider{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// FetchPrice returns a cached price, falling back to the wrapped provider.
func (c *CachingQuoteProvider) FetchPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	if c.rdb == nil {
		return c.inner.FetchPrice(ctx, ticker)
	}

	key := c.cacheKey(ticker)

	// 1) Check cache
	s, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		if price, perr := decimal.NewFromString(s); perr == nil && price.IsPositive() {
			return price, nil
		}
		slog.Warn("deleting corrupt quote cache entry", "key", key)
		_ = c.rdb.Del(ctx, key).Err()
	case !errors.Is(err, redis.Nil):
		slog.Warn("quote cache read failed", "key", key, "error", err)
	}

	// 2) Fallback to provider
	price, err := c.inner.FetchPrice(ctx, ticker)
	if err != nil {
		return decimal.Zero, err
	}

	// 3) Store in cache (best effort)
	if err := c.rdb.Set(ctx, key, price.String(), c.ttl).Err(); err != nil {
		slog.Warn("quote cache write failed", "key", key, "error", err)
	}
	return price, nil
}

// cacheKey generates a cache key for a ticker.
func (c *CachingQuoteProvider) cacheKey(ticker string) string {
	return fmt.Sprintf("%s:%s", c.namespace, safe(ticker))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
