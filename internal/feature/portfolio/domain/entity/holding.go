package entity

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Holding is a user's position in a single ticker.
type Holding struct {
	Ticker    string          // Upper-case symbol, unique within a user's holdings
	Shares    int64           // Number of shares held, always > 0 once settled
	AvgCost   decimal.Decimal // Weighted-average price paid per held share
	LastPrice decimal.Decimal // Most recently observed market price
}

// MarketValue returns LastPrice * Shares.
func (h Holding) MarketValue() decimal.Decimal {
	return h.LastPrice.Mul(decimal.NewFromInt(h.Shares))
}

// CostBasis returns AvgCost * Shares.
func (h Holding) CostBasis() decimal.Decimal {
	return h.AvgCost.Mul(decimal.NewFromInt(h.Shares))
}

// PercentChange returns (LastPrice - AvgCost) / AvgCost * 100.
// A zero AvgCost yields zero rather than dividing by zero.
func (h Holding) PercentChange() decimal.Decimal {
	if h.AvgCost.IsZero() {
		return decimal.Zero
	}
	return h.LastPrice.Sub(h.AvgCost).Div(h.AvgCost).Mul(hundred)
}
