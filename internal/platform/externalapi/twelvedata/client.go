package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"investment_game/internal/feature/portfolio/usecase"
	"investment_game/internal/platform/externalapi/twelvedata/dto"
	"investment_game/internal/shared/ratelimiter"
)

// TwelveDataQuotes is a QuoteProvider backed by the Twelve Data price endpoint.
type TwelveDataQuotes struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

var _ usecase.QuoteProvider = (*TwelveDataQuotes)(nil)

// NewTwelveDataQuotes creates a TwelveDataQuotes. limiter may be nil.
func NewTwelveDataQuotes(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *TwelveDataQuotes {
	return &TwelveDataQuotes{cfg: cfg, client: client, limiter: limiter}
}

// FetchPrice returns the latest price of ticker.
// Every failure wraps usecase.ErrQuoteUnavailable.
func (t *TwelveDataQuotes) FetchPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	if t.limiter != nil {
		if err := t.limiter.WaitIfNeeded(ctx); err != nil {
			return decimal.Zero, unavailable(ticker, "rate limit wait: %v", err)
		}
	}

	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("apikey", t.cfg.TwelveDataAPIKey)
	u := fmt.Sprintf("%s/price?%s", strings.TrimRight(t.cfg.BaseURL, "/"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, unavailable(ticker, "build request: %v", err)
	}

	res, err := t.client.Do(req)
	if err != nil {
		return decimal.Zero, unavailable(ticker, "request: %v", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decimal.Zero, unavailable(ticker, "http %d", res.StatusCode)
	}

	var body dto.PriceResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return decimal.Zero, unavailable(ticker, "decode: %v", err)
	}
	if body.Status == "error" {
		return decimal.Zero, unavailable(ticker, "provider: %s", body.Message)
	}

	price, err := decimal.NewFromString(strings.TrimSpace(body.Price))
	if err != nil {
		return decimal.Zero, unavailable(ticker, "invalid price %q", body.Price)
	}
	if !price.IsPositive() {
		return decimal.Zero, unavailable(ticker, "non-positive price %s", price)
	}
	return price, nil
}

func unavailable(ticker, format string, args ...any) error {
	return fmt.Errorf("%w: twelvedata: %s: %s", usecase.ErrQuoteUnavailable, ticker, fmt.Sprintf(format, args...))
}
