package domain

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"investment_game/internal/feature/portfolio/domain/entity"
)

// maxTickerLength bounds the length of a normalized ticker.
const maxTickerLength = 16

// Settlement is the portfolio state produced by a trade or price refresh.
// It is computed from a snapshot and applied only once the caller decides to persist it.
type Settlement struct {
	Holdings []entity.Holding
	Cash     decimal.Decimal
	Total    decimal.Decimal
}

// ApplyTo copies the settled state onto u.
func (s Settlement) ApplyTo(u *entity.User) {
	u.Holdings = s.Holdings
	u.CashBalance = s.Cash
	u.TotalBalance = s.Total
}

// NormalizeTicker trims and upper-cases a raw ticker.
func NormalizeTicker(raw string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if t == "" || len(t) > maxTickerLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidTicker, raw)
	}
	if strings.IndexFunc(t, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTicker, raw)
	}
	return t, nil
}

// TotalBalance returns cash plus the market value of every holding.
func TotalBalance(cash decimal.Decimal, holdings []entity.Holding) decimal.Decimal {
	total := cash
	for _, h := range holdings {
		total = total.Add(h.MarketValue())
	}
	return total
}

// ApplyBuy settles the purchase of shares of ticker at price.
// Buying a held ticker merges into the existing holding with a weighted-average cost.
func ApplyBuy(u *entity.User, ticker string, shares int64, price decimal.Decimal) (Settlement, error) {
	if err := checkTrade(shares, price); err != nil {
		return Settlement{}, err
	}

	qty := decimal.NewFromInt(shares)
	cost := price.Mul(qty)
	if cost.GreaterThan(u.CashBalance) {
		return Settlement{}, fmt.Errorf("%w: cost %s exceeds cash %s", ErrInsufficientFunds, cost, u.CashBalance)
	}

	holdings := cloneHoldings(u.Holdings)
	if i := indexOf(holdings, ticker); i >= 0 {
		h := holdings[i]
		newShares := h.Shares + shares
		h.AvgCost = h.CostBasis().Add(cost).Div(decimal.NewFromInt(newShares))
		h.Shares = newShares
		h.LastPrice = price
		holdings[i] = h
	} else {
		holdings = append(holdings, entity.Holding{
			Ticker:    ticker,
			Shares:    shares,
			AvgCost:   price,
			LastPrice: price,
		})
	}

	cash := u.CashBalance.Sub(cost)
	return Settlement{Holdings: holdings, Cash: cash, Total: TotalBalance(cash, holdings)}, nil
}

// ApplySell settles the sale of shares of ticker at price.
// The cost basis of the remaining shares is unchanged; a fully sold holding is removed.
func ApplySell(u *entity.User, ticker string, shares int64, price decimal.Decimal) (Settlement, error) {
	if err := checkTrade(shares, price); err != nil {
		return Settlement{}, err
	}

	holdings := cloneHoldings(u.Holdings)
	i := indexOf(holdings, ticker)
	if i < 0 {
		return Settlement{}, fmt.Errorf("%w: %s", ErrNoSuchHolding, ticker)
	}
	h := holdings[i]
	if shares > h.Shares {
		return Settlement{}, fmt.Errorf("%w: holding %d, selling %d", ErrInsufficientShares, h.Shares, shares)
	}

	proceeds := price.Mul(decimal.NewFromInt(shares))
	if remaining := h.Shares - shares; remaining == 0 {
		holdings = append(holdings[:i], holdings[i+1:]...)
	} else {
		h.Shares = remaining
		h.LastPrice = price
		holdings[i] = h
	}

	cash := u.CashBalance.Add(proceeds)
	return Settlement{Holdings: holdings, Cash: cash, Total: TotalBalance(cash, holdings)}, nil
}

// RefreshPrices updates LastPrice for every holding lookup can price.
// Holdings lookup cannot price keep their stale LastPrice.
func RefreshPrices(u *entity.User, lookup func(ticker string) (decimal.Decimal, bool)) Settlement {
	holdings := cloneHoldings(u.Holdings)
	for i, h := range holdings {
		if p, ok := lookup(h.Ticker); ok && p.IsPositive() {
			holdings[i].LastPrice = p
		}
	}
	return Settlement{Holdings: holdings, Cash: u.CashBalance, Total: TotalBalance(u.CashBalance, holdings)}
}

func checkTrade(shares int64, price decimal.Decimal) error {
	if shares <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidShares, shares)
	}
	if !price.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidPrice, price)
	}
	return nil
}

func indexOf(holdings []entity.Holding, ticker string) int {
	for i, h := range holdings {
		if h.Ticker == ticker {
			return i
		}
	}
	return -1
}

func cloneHoldings(in []entity.Holding) []entity.Holding {
	out := make([]entity.Holding, len(in))
	copy(out, in)
	return out
}
