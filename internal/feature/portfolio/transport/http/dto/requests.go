// Package dto defines data transfer objects for the portfolio feature's HTTP transport layer.
package dto

// QuoteForm is the /getStockPrice form.
type QuoteForm struct {
	StockTicker string `form:"stockTicker" binding:"required,max=16"`
}

// BuyForm is the /buy form.
type BuyForm struct {
	StockTicker string `form:"stockTicker" binding:"required,max=16"`
	NumShares   int64  `form:"numShares" binding:"required,gt=0,lte=1000000"`
}

// SellForm is the /sell form. The field name differs from BuyForm to match the page's markup.
type SellForm struct {
	StockTicker   string `form:"stockTicker" binding:"required,max=16"`
	SellNumShares int64  `form:"sellNumShares" binding:"required,gt=0,lte=1000000"`
}

// TradeRequest is the JSON body of POST /api/v1/trades/{buy,sell}.
type TradeRequest struct {
	Ticker string `json:"ticker" binding:"required,max=16"`
	Shares int64  `json:"shares" binding:"required,gt=0,lte=1000000"`
}
