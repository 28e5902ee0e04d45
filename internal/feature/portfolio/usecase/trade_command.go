package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"investment_game/internal/feature/portfolio/domain"
	"investment_game/internal/feature/portfolio/domain/entity"
)

// MaxTradeShares caps the number of shares accepted in a single order.
const MaxTradeShares = 1_000_000

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// TradeCommand is a validated order. Build it with NewTradeCommand.
type TradeCommand struct {
	Side     Side
	Username string
	Ticker   string
	Shares   int64
}

// NewTradeCommand normalizes the ticker and range-checks the share count.
func NewTradeCommand(side Side, username, rawTicker string, shares int64) (TradeCommand, error) {
	if side != SideBuy && side != SideSell {
		return TradeCommand{}, fmt.Errorf("unknown trade side %q", side)
	}
	ticker, err := domain.NormalizeTicker(rawTicker)
	if err != nil {
		return TradeCommand{}, err
	}
	if shares <= 0 || shares > MaxTradeShares {
		return TradeCommand{}, fmt.Errorf("%w: %d (max %d)", domain.ErrInvalidShares, shares, MaxTradeShares)
	}
	return TradeCommand{Side: side, Username: username, Ticker: ticker, Shares: shares}, nil
}

// TradeResult describes a settled trade and the portfolio after it.
type TradeResult struct {
	Side   Side
	Ticker string
	Shares int64
	Price  decimal.Decimal
	// Amount is the cash debited (buy) or credited (sell).
	Amount decimal.Decimal
	User   *entity.User
}

// Quote is a single price lookup.
type Quote struct {
	Ticker string
	Price  decimal.Decimal
}
