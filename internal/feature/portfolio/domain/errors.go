// Package domain implements the trade-settlement rules of the portfolio feature.
package domain

import "errors"

// Settlement errors. A trade that fails with one of these leaves the user untouched.
var (
	// ErrInsufficientFunds indicates that a buy costs more than the available cash.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientShares indicates that a sell asks for more shares than are held.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrNoSuchHolding indicates that a sell targets a ticker the user does not hold.
	ErrNoSuchHolding = errors.New("no such holding")

	// ErrInvalidShares indicates a non-positive share count.
	ErrInvalidShares = errors.New("share count must be positive")

	// ErrInvalidPrice indicates a non-positive price.
	ErrInvalidPrice = errors.New("price must be positive")

	// ErrInvalidTicker indicates a ticker that is empty or malformed.
	ErrInvalidTicker = errors.New("invalid ticker")
)

// User store errors shared by the auth and portfolio features.
var (
	// ErrUserNotFound indicates that no user exists with the given username.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken indicates that a user with the given username already exists.
	ErrUsernameTaken = errors.New("username already exists")
)
