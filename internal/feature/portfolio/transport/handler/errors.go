package handler

import (
	"errors"
	"net/http"

	"investment_game/internal/feature/portfolio/domain"
	"investment_game/internal/feature/portfolio/usecase"
)

// Messages shown to the user. The first five are the game's historical wording.
const (
	msgQuoteUnavailable   = "Error fetching stock price."
	msgInsufficientFunds  = "Insufficient funds."
	msgInsufficientShares = "Not enough shares to sell."
	msgInvalidTicker      = "Invalid stock ticker."
	msgInvalidShares      = "Number of shares must be between 1 and 1,000,000."
	msgConflict           = "Your portfolio changed while trading, please try again."
	msgNotAuthenticated   = "Not authenticated."
	msgInvalidRequest     = "Invalid request."
	msgInternal           = "Something went wrong."
)

// classify maps a usecase error to an HTTP status and a user-facing message.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrQuoteUnavailable):
		return http.StatusBadGateway, msgQuoteUnavailable
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, msgInsufficientFunds
	case errors.Is(err, domain.ErrInsufficientShares), errors.Is(err, domain.ErrNoSuchHolding):
		return http.StatusUnprocessableEntity, msgInsufficientShares
	case errors.Is(err, domain.ErrInvalidTicker):
		return http.StatusUnprocessableEntity, msgInvalidTicker
	case errors.Is(err, domain.ErrInvalidShares):
		return http.StatusUnprocessableEntity, msgInvalidShares
	case errors.Is(err, usecase.ErrVersionConflict):
		return http.StatusConflict, msgConflict
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusUnauthorized, msgNotAuthenticated
	default:
		return http.StatusInternalServerError, msgInternal
	}
}
