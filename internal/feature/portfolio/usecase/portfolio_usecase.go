// Package usecase implements the business logic for the portfolio feature.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"investment_game/internal/feature/portfolio/domain"
	"investment_game/internal/feature/portfolio/domain/entity"
)

const (
	// DefaultQuoteTimeout bounds a single price lookup.
	DefaultQuoteTimeout = 5 * time.Second
	// refreshConcurrency is the number of quotes fetched in parallel during a refresh.
	refreshConcurrency = 4
	// maxSaveAttempts is the number of read-apply-save rounds tried on version conflicts.
	maxSaveAttempts = 3
)

// UserRepository abstracts the persistence layer for users and their holdings.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// FindByUsername loads a user with all holdings.
	// It returns domain.ErrUserNotFound if the user does not exist.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// Save writes the full user record back, holdings included.
	// It returns ErrVersionConflict if u.Version no longer matches the stored version,
	// and increments u.Version on success.
	Save(ctx context.Context, u *entity.User) error
}

// QuoteProvider fetches the latest price for a ticker.
type QuoteProvider interface {
	// FetchPrice returns a positive price, or an error wrapping ErrQuoteUnavailable.
	FetchPrice(ctx context.Context, ticker string) (decimal.Decimal, error)
}

// portfolioUsecase implements portfolio viewing and trading.
type portfolioUsecase struct {
	users        UserRepository
	quotes       QuoteProvider
	quoteTimeout time.Duration
	locks        *userLocks
}

// NewPortfolioUsecase creates a new portfolioUsecase.
// A non-positive quoteTimeout falls back to DefaultQuoteTimeout.
func NewPortfolioUsecase(users UserRepository, quotes QuoteProvider, quoteTimeout time.Duration) *portfolioUsecase {
	if quoteTimeout <= 0 {
		quoteTimeout = DefaultQuoteTimeout
	}
	return &portfolioUsecase{
		users:        users,
		quotes:       quotes,
		quoteTimeout: quoteTimeout,
		locks:        newUserLocks(),
	}
}

// Snapshot returns the stored portfolio without touching prices.
func (p *portfolioUsecase) Snapshot(ctx context.Context, username string) (*entity.User, error) {
	return p.users.FindByUsername(ctx, username)
}

// Portfolio refreshes every holding's price, persists the result and returns it.
// Holdings whose quote is unavailable keep their last known price.
func (p *portfolioUsecase) Portfolio(ctx context.Context, username string) (*entity.User, error) {
	snap, err := p.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	// Quotes are fetched before taking the user lock so that slow providers
	// never block trades.
	prices := p.fetchAll(ctx, snap.Tickers())

	return p.mutate(ctx, username, func(u *entity.User) error {
		domain.RefreshPrices(u, func(ticker string) (decimal.Decimal, bool) {
			price, ok := prices[ticker]
			return price, ok
		}).ApplyTo(u)
		return nil
	})
}

// Quote prices a single ticker.
func (p *portfolioUsecase) Quote(ctx context.Context, rawTicker string) (Quote, error) {
	ticker, err := domain.NormalizeTicker(rawTicker)
	if err != nil {
		return Quote{}, err
	}
	price, err := p.fetchPrice(ctx, ticker)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Ticker: ticker, Price: price}, nil
}

// Trade prices cmd.Ticker and settles the order against the user's portfolio.
// If no price is available the trade is aborted and nothing is written.
func (p *portfolioUsecase) Trade(ctx context.Context, cmd TradeCommand) (*TradeResult, error) {
	settle := domain.ApplyBuy
	if cmd.Side == SideSell {
		settle = domain.ApplySell
	}

	price, err := p.fetchPrice(ctx, cmd.Ticker)
	if err != nil {
		return nil, err
	}

	u, err := p.mutate(ctx, cmd.Username, func(u *entity.User) error {
		s, err := settle(u, cmd.Ticker, cmd.Shares, price)
		if err != nil {
			return err
		}
		s.ApplyTo(u)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("trade settled",
		"username", cmd.Username,
		"side", cmd.Side,
		"ticker", cmd.Ticker,
		"shares", cmd.Shares,
		"price", price.String(),
	)

	return &TradeResult{
		Side:   cmd.Side,
		Ticker: cmd.Ticker,
		Shares: cmd.Shares,
		Price:  price,
		Amount: price.Mul(decimal.NewFromInt(cmd.Shares)),
		User:   u,
	}, nil
}

// mutate serializes read-apply-save rounds per user and retries on version conflicts.
func (p *portfolioUsecase) mutate(ctx context.Context, username string, apply func(u *entity.User) error) (*entity.User, error) {
	unlock := p.locks.lock(username)
	defer unlock()

	var err error
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		var u *entity.User
		u, err = p.users.FindByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if err := apply(u); err != nil {
			return nil, err
		}

		err = p.users.Save(ctx, u)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, fmt.Errorf("failed to save portfolio: %w", err)
		}
		slog.Warn("portfolio version conflict, retrying", "username", username, "attempt", attempt)
	}
	return nil, err
}

// fetchPrice looks up one ticker under the per-quote timeout.
func (p *portfolioUsecase) fetchPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	qctx, cancel := context.WithTimeout(ctx, p.quoteTimeout)
	defer cancel()

	price, err := p.quotes.FetchPrice(qctx, ticker)
	if err != nil {
		if !errors.Is(err, ErrQuoteUnavailable) {
			err = fmt.Errorf("%w: %s: %v", ErrQuoteUnavailable, ticker, err)
		}
		return decimal.Zero, err
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s: non-positive price %s", ErrQuoteUnavailable, ticker, price)
	}
	return price, nil
}

// fetchAll prices tickers concurrently. Tickers that cannot be priced are absent from the result.
func (p *portfolioUsecase) fetchAll(ctx context.Context, tickers []string) map[string]decimal.Decimal {
	var (
		mu     sync.Mutex
		prices = make(map[string]decimal.Decimal, len(tickers))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for _, ticker := range tickers {
		g.Go(func() error {
			price, err := p.fetchPrice(gctx, ticker)
			if err != nil {
				slog.Warn("keeping last price", "ticker", ticker, "error", err)
				return nil
			}
			mu.Lock()
			prices[ticker] = price
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return prices
}
