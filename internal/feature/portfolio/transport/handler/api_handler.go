package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"investment_game/internal/feature/portfolio/transport/http/dto"
	"investment_game/internal/feature/portfolio/usecase"
	"investment_game/internal/shared/authctx"
)

// APIHandler serves the JSON portfolio API. Every route sits behind the JWT middleware.
type APIHandler struct {
	portfolio PortfolioUsecase
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(portfolio PortfolioUsecase) *APIHandler {
	return &APIHandler{portfolio: portfolio}
}

// GetPortfolio handles GET /api/v1/portfolio.
func (h *APIHandler) GetPortfolio(c *gin.Context) {
	username, ok := authctx.Username(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: msgNotAuthenticated})
		return
	}

	u, err := h.portfolio.Portfolio(c.Request.Context(), username)
	if err != nil {
		h.fail(c, "portfolio load failed", username, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPortfolioView(u))
}

// GetQuote handles GET /api/v1/quotes/:ticker.
func (h *APIHandler) GetQuote(c *gin.Context) {
	username, _ := authctx.Username(c)

	q, err := h.portfolio.Quote(c.Request.Context(), c.Param("ticker"))
	if err != nil {
		h.fail(c, "quote failed", username, err)
		return
	}
	c.JSON(http.StatusOK, dto.QuoteResponse{Ticker: q.Ticker, Price: q.Price})
}

// Buy handles POST /api/v1/trades/buy.
func (h *APIHandler) Buy(c *gin.Context) {
	h.trade(c, usecase.SideBuy)
}

// Sell handles POST /api/v1/trades/sell.
func (h *APIHandler) Sell(c *gin.Context) {
	h.trade(c, usecase.SideSell)
}

func (h *APIHandler) trade(c *gin.Context, side usecase.Side) {
	username, ok := authctx.Username(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: msgNotAuthenticated})
		return
	}

	var req dto.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("trade validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msgInvalidRequest})
		return
	}

	cmd, err := usecase.NewTradeCommand(side, username, req.Ticker, req.Shares)
	if err != nil {
		h.fail(c, "trade rejected", username, err)
		return
	}
	res, err := h.portfolio.Trade(c.Request.Context(), cmd)
	if err != nil {
		h.fail(c, "trade rejected", username, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTradeResponse(res))
}

func (h *APIHandler) fail(c *gin.Context, msg, username string, err error) {
	status, text := classify(err)
	if status == http.StatusInternalServerError {
		slog.Error(msg, "error", err, "username", username, "remote_addr", c.ClientIP())
	} else {
		slog.Warn(msg, "error", err, "username", username, "remote_addr", c.ClientIP())
	}
	c.JSON(status, dto.ErrorResponse{Error: text})
}
