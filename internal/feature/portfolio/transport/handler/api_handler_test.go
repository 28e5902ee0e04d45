package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investment_game/internal/feature/portfolio/domain"
	"investment_game/internal/feature/portfolio/domain/entity"
	"investment_game/internal/feature/portfolio/usecase"
)

func newAPIRouter(uc PortfolioUsecase, username string) *gin.Engine {
	h := NewAPIHandler(uc)
	r := gin.New()
	g := r.Group("/api/v1", withUser(username))
	g.GET("/portfolio", h.GetPortfolio)
	g.GET("/quotes/:ticker", h.GetQuote)
	g.POST("/trades/buy", h.Buy)
	g.POST("/trades/sell", h.Sell)
	return r
}

func serveJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAPIHandler_GetPortfolio(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := newAPIRouter(&mockPortfolioUsecase{}, "alice")

		w := serveJSON(r, http.MethodGet, "/api/v1/portfolio", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "7000", body["cashBalance"])
		assert.Equal(t, "11000", body["totalBalance"])

		holdings := body["holdings"].([]any)
		require.Len(t, holdings, 1)
		ibm := holdings[0].(map[string]any)
		assert.Equal(t, "IBM", ibm["ticker"])
		assert.Equal(t, float64(20), ibm["shares"])
		assert.Equal(t, "4000", ibm["marketValue"])
		assert.Equal(t, "33.33", ibm["percentChange"])
	})

	t.Run("unauthorized without username", func(t *testing.T) {
		r := newAPIRouter(&mockPortfolioUsecase{}, "")

		w := serveJSON(r, http.MethodGet, "/api/v1/portfolio", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		uc := &mockPortfolioUsecase{PortfolioFunc: func(ctx context.Context, username string) (*entity.User, error) {
			return nil, domain.ErrUserNotFound
		}}
		r := newAPIRouter(uc, "ghost")

		w := serveJSON(r, http.MethodGet, "/api/v1/portfolio", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAPIHandler_GetQuote(t *testing.T) {
	tests := []struct {
		name       string
		quoteErr   error
		wantStatus int
		wantBody   string
	}{
		{"success", nil, http.StatusOK, `{"ticker":"IBM","price":"182.52"}`},
		{"unavailable", fmt.Errorf("%w: http 500", usecase.ErrQuoteUnavailable), http.StatusBadGateway, `{"error":"Error fetching stock price."}`},
		{"invalid ticker", domain.ErrInvalidTicker, http.StatusUnprocessableEntity, `{"error":"Invalid stock ticker."}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockPortfolioUsecase{QuoteFunc: func(ctx context.Context, rawTicker string) (usecase.Quote, error) {
				assert.Equal(t, "ibm", rawTicker)
				if tt.quoteErr != nil {
					return usecase.Quote{}, tt.quoteErr
				}
				return usecase.Quote{Ticker: "IBM", Price: d("182.52")}, nil
			}}
			r := newAPIRouter(uc, "alice")

			w := serveJSON(r, http.MethodGet, "/api/v1/quotes/ibm", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestAPIHandler_Trade(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       any
		tradeErr   error
		wantStatus int
		wantSide   usecase.Side
	}{
		{"success: buy", "/api/v1/trades/buy", map[string]any{"ticker": "ibm", "shares": 10}, nil, http.StatusOK, usecase.SideBuy},
		{"success: sell", "/api/v1/trades/sell", map[string]any{"ticker": "IBM", "shares": 5}, nil, http.StatusOK, usecase.SideSell},
		{"failure: insufficient funds", "/api/v1/trades/buy", map[string]any{"ticker": "IBM", "shares": 999}, domain.ErrInsufficientFunds, http.StatusUnprocessableEntity, usecase.SideBuy},
		{"failure: missing shares", "/api/v1/trades/buy", map[string]any{"ticker": "IBM"}, nil, http.StatusBadRequest, ""},
		{"failure: shares as string", "/api/v1/trades/buy", map[string]any{"ticker": "IBM", "shares": "10"}, nil, http.StatusBadRequest, ""},
		{"failure: store down", "/api/v1/trades/sell", map[string]any{"ticker": "IBM", "shares": 1}, fmt.Errorf("failed to save portfolio: %w", context.DeadlineExceeded), http.StatusInternalServerError, usecase.SideSell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *usecase.TradeCommand
			uc := &mockPortfolioUsecase{TradeFunc: func(ctx context.Context, cmd usecase.TradeCommand) (*usecase.TradeResult, error) {
				got = &cmd
				if tt.tradeErr != nil {
					return nil, tt.tradeErr
				}
				price := d("200")
				return &usecase.TradeResult{
					Side:   cmd.Side,
					Ticker: cmd.Ticker,
					Shares: cmd.Shares,
					Price:  price,
					Amount: price.Mul(d(fmt.Sprint(cmd.Shares))),
					User:   testUser(),
				}, nil
			}}
			r := newAPIRouter(uc, "alice")

			w := serveJSON(r, http.MethodPost, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantSide == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantSide, got.Side)
			assert.Equal(t, "IBM", got.Ticker)
			assert.Equal(t, "alice", got.Username)

			if tt.wantStatus == http.StatusOK {
				var body map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, string(tt.wantSide), body["side"])
				assert.Equal(t, "IBM", body["ticker"])
				assert.Contains(t, body, "portfolio")
			}
		})
	}
}
