// Package entity defines the domain entities for the portfolio feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCashBalance is the virtual cash every new account starts with.
var DefaultCashBalance = decimal.NewFromInt(10000)

// User is a registered player together with their portfolio.
type User struct {
	// ID is the store-assigned identifier (zero for document stores keyed by username).
	ID uint

	// Username identifies the user and must be unique.
	Username string

	// PasswordHash is the bcrypt hash of the user's password, never the raw value.
	PasswordHash string

	// CashBalance is the uninvested cash available for buys.
	CashBalance decimal.Decimal

	// TotalBalance is CashBalance plus the market value of all holdings.
	// It is a cached projection recomputed on every view and trade.
	TotalBalance decimal.Decimal

	// Holdings is kept in insertion order.
	Holdings []Holding

	// Version is the optimistic-concurrency token checked on every save.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser returns a user with the default balances and no holdings.
func NewUser(username, passwordHash string) *User {
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		CashBalance:  DefaultCashBalance,
		TotalBalance: DefaultCashBalance,
		Holdings:     []Holding{},
	}
}

// Holding returns the holding for ticker and whether it exists.
func (u *User) Holding(ticker string) (Holding, bool) {
	for _, h := range u.Holdings {
		if h.Ticker == ticker {
			return h, true
		}
	}
	return Holding{}, false
}

// Tickers returns the tickers of all holdings in insertion order.
func (u *User) Tickers() []string {
	out := make([]string, 0, len(u.Holdings))
	for _, h := range u.Holdings {
		out = append(out, h.Ticker)
	}
	return out
}
