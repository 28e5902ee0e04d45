package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"investment_game/internal/feature/portfolio/usecase"
	"investment_game/internal/shared/ratelimiter"
)

// Client fetches the latest traded price of a ticker from the GLOBAL_QUOTE endpoint.
type Client struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

var _ usecase.QuoteProvider = (*Client)(nil)

// NewClient creates a Client. limiter may be nil.
func NewClient(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *Client {
	if cfg.PricePath == "" {
		cfg.PricePath = defaultPricePath
	}
	return &Client{cfg: cfg, client: client, limiter: limiter}
}

// FetchPrice returns the latest price of ticker.
// Every failure wraps usecase.ErrQuoteUnavailable.
func (c *Client) FetchPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	if c.limiter != nil {
		if err := c.limiter.WaitIfNeeded(ctx); err != nil {
			return decimal.Zero, unavailable(ticker, "rate limit wait: %v", err)
		}
	}

	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", ticker)
	q.Set("apikey", c.cfg.APIKey)
	u := fmt.Sprintf("%s/query?%s", strings.TrimRight(c.cfg.BaseURL, "/"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, unavailable(ticker, "build request: %v", err)
	}

	res, err := c.client.Do(req)
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

	var body any
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return decimal.Zero, unavailable(ticker, "decode: %v", err)
	}

	// Throttling and bad-key responses come back as 200 with a message body.
	if obj, ok := body.(map[string]any); ok {
		for _, key := range []string{"Note", "Information", "Error Message"} {
			if msg, ok := obj[key].(string); ok {
				return decimal.Zero, unavailable(ticker, "provider: %s", msg)
			}
		}
	}

	raw, err := jsonpath.Get(c.cfg.PricePath, body)
	if err != nil {
		return decimal.Zero, unavailable(ticker, "price not found at %s: %v", c.cfg.PricePath, err)
	}
	price, err := parsePrice(raw)
	if err != nil {
		return decimal.Zero, unavailable(ticker, "%v", err)
	}
	if !price.IsPositive() {
		return decimal.Zero, unavailable(ticker, "non-positive price %s", price)
	}
	return price, nil
}

// parsePrice accepts the string form Alpha Vantage uses as well as a plain JSON number.
func parsePrice(raw any) (decimal.Decimal, error) {
	// jsonpath may hand back a one-element list.
	if list, ok := raw.([]any); ok && len(list) > 0 {
		raw = list[0]
	}

	switch v := raw.(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid price %q", v)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Zero, fmt.Errorf("unexpected price type %T", raw)
	}
}

func unavailable(ticker, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", usecase.ErrQuoteUnavailable, ticker, fmt.Sprintf(format, args...))
}
