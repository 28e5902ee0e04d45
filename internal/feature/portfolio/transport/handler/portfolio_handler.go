// Package handler provides the HTTP handlers for the portfolio feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"investment_game/internal/feature/portfolio/domain"
	"investment_game/internal/feature/portfolio/domain/entity"
	"investment_game/internal/feature/portfolio/transport/http/dto"
	"investment_game/internal/feature/portfolio/usecase"
	"investment_game/internal/shared/authctx"
)

// PortfolioUsecase defines the portfolio operations used by the handlers.
type PortfolioUsecase interface {
	// Snapshot returns the stored portfolio without refreshing prices.
	Snapshot(ctx context.Context, username string) (*entity.User, error)
	// Portfolio refreshes prices, persists and returns the portfolio.
	Portfolio(ctx context.Context, username string) (*entity.User, error)
	// Quote prices a single ticker.
	Quote(ctx context.Context, rawTicker string) (usecase.Quote, error)
	// Trade settles a buy or sell.
	Trade(ctx context.Context, cmd usecase.TradeCommand) (*usecase.TradeResult, error)
}

// PortfolioHandler serves the HTML portfolio pages. Every route sits behind the session middleware.
type PortfolioHandler struct {
	portfolio PortfolioUsecase
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolio PortfolioUsecase) *PortfolioHandler {
	return &PortfolioHandler{portfolio: portfolio}
}

// Main handles GET /main: refreshes prices and renders the portfolio.
func (h *PortfolioHandler) Main(c *gin.Context) {
	username, ok := authctx.Username(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	u, err := h.portfolio.Portfolio(c.Request.Context(), username)
	if err != nil {
		h.fail(c, "portfolio load failed", username, err)
		return
	}
	c.HTML(http.StatusOK, "main.tmpl", dto.NewPortfolioView(u))
}

// GetStockPrice handles POST /getStockPrice: renders the portfolio together with one quote.
func (h *PortfolioHandler) GetStockPrice(c *gin.Context) {
	username, ok := authctx.Username(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	var form dto.QuoteForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("quote validation failed", "error", err, "remote_addr", c.ClientIP())
		c.String(http.StatusBadRequest, msgInvalidRequest)
		return
	}

	q, err := h.portfolio.Quote(c.Request.Context(), form.StockTicker)
	if err != nil {
		h.fail(c, "quote failed", username, err)
		return
	}
	u, err := h.portfolio.Snapshot(c.Request.Context(), username)
	if err != nil {
		h.fail(c, "portfolio load failed", username, err)
		return
	}
	c.HTML(http.StatusOK, "main.tmpl", dto.NewPortfolioView(u).WithQuote(q))
}

// Buy handles POST /buy.
func (h *PortfolioHandler) Buy(c *gin.Context) {
	var form dto.BuyForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("buy validation failed", "error", err, "remote_addr", c.ClientIP())
		c.String(http.StatusBadRequest, msgInvalidRequest)
		return
	}
	h.trade(c, usecase.SideBuy, form.StockTicker, form.NumShares)
}

// Sell handles POST /sell.
func (h *PortfolioHandler) Sell(c *gin.Context) {
	var form dto.SellForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("sell validation failed", "error", err, "remote_addr", c.ClientIP())
		c.String(http.StatusBadRequest, msgInvalidRequest)
		return
	}
	h.trade(c, usecase.SideSell, form.StockTicker, form.SellNumShares)
}

func (h *PortfolioHandler) trade(c *gin.Context, side usecase.Side, ticker string, shares int64) {
	username, ok := authctx.Username(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	cmd, err := usecase.NewTradeCommand(side, username, ticker, shares)
	if err != nil {
		h.fail(c, "trade rejected", username, err)
		return
	}
	if _, err := h.portfolio.Trade(c.Request.Context(), cmd); err != nil {
		h.fail(c, "trade rejected", username, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/main")
}

// fail answers with a plain-text message, or sends a user whose record vanished back to the login page.
func (h *PortfolioHandler) fail(c *gin.Context, msg, username string, err error) {
	if errors.Is(err, domain.ErrUserNotFound) {
		slog.Warn(msg, "error", err, "username", username, "remote_addr", c.ClientIP())
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	status, text := classify(err)
	if status == http.StatusInternalServerError {
		slog.Error(msg, "error", err, "username", username, "remote_addr", c.ClientIP())
	} else {
		slog.Warn(msg, "error", err, "username", username, "remote_addr", c.ClientIP())
	}
	c.String(status, text)
}
