package dto

import (
	"github.com/shopspring/decimal"

	"investment_game/internal/feature/portfolio/domain/entity"
	"investment_game/internal/feature/portfolio/usecase"
)

// HoldingView is one row of the holdings table, also used as the JSON shape.
type HoldingView struct {
	Ticker        string          `json:"ticker"`
	Shares        int64           `json:"shares"`
	AvgCost       decimal.Decimal `json:"avgCost"`
	LastPrice     decimal.Decimal `json:"lastPrice"`
	MarketValue   decimal.Decimal `json:"marketValue"`
	PercentChange decimal.Decimal `json:"percentChange"`
}

// PortfolioView is the data rendered by main.tmpl and returned by GET /api/v1/portfolio.
type PortfolioView struct {
	Username     string          `json:"username"`
	CashBalance  decimal.Decimal `json:"cashBalance"`
	TotalBalance decimal.Decimal `json:"totalBalance"`
	Holdings     []HoldingView   `json:"holdings"`

	// Set after a /getStockPrice lookup.
	HasQuote    bool            `json:"-"`
	StockTicker string          `json:"-"`
	StockPrice  decimal.Decimal `json:"-"`
}

// NewPortfolioView projects a user onto the view.
func NewPortfolioView(u *entity.User) PortfolioView {
	holdings := make([]HoldingView, 0, len(u.Holdings))
	for _, h := range u.Holdings {
		holdings = append(holdings, HoldingView{
			Ticker:        h.Ticker,
			Shares:        h.Shares,
			AvgCost:       h.AvgCost,
			LastPrice:     h.LastPrice,
			MarketValue:   h.MarketValue(),
			PercentChange: h.PercentChange().Round(2),
		})
	}
	return PortfolioView{
		Username:     u.Username,
		CashBalance:  u.CashBalance,
		TotalBalance: u.TotalBalance,
		Holdings:     holdings,
	}
}

// WithQuote adds a price lookup to the view.
func (v PortfolioView) WithQuote(q usecase.Quote) PortfolioView {
	v.HasQuote = true
	v.StockTicker = q.Ticker
	v.StockPrice = q.Price
	return v
}

// QuoteResponse is the body of GET /api/v1/quotes/:ticker.
type QuoteResponse struct {
	Ticker string          `json:"ticker"`
	Price  decimal.Decimal `json:"price"`
}

// TradeResponse is the body of a settled API trade.
type TradeResponse struct {
	Side      string          `json:"side"`
	Ticker    string          `json:"ticker"`
	Shares    int64           `json:"shares"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	Portfolio PortfolioView   `json:"portfolio"`
}

// NewTradeResponse converts a settled trade.
func NewTradeResponse(r *usecase.TradeResult) TradeResponse {
	return TradeResponse{
		Side:      string(r.Side),
		Ticker:    r.Ticker,
		Shares:    r.Shares,
		Price:     r.Price,
		Amount:    r.Amount,
		Portfolio: NewPortfolioView(r.User),
	}
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
