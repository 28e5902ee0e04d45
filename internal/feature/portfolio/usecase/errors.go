package usecase

import "errors"

var (
	// ErrQuoteUnavailable is returned when the market-data provider cannot price a ticker.
	// Provider adapters wrap every failure (transport, status, payload) with it.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrVersionConflict is returned by UserRepository.Save when the stored record
	// was modified after it was read.
	ErrVersionConflict = errors.New("portfolio was modified concurrently")
)
