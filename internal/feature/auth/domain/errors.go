// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

// Domain errors for authentication operations.
// These errors represent business logic failures and should be handled appropriately by upper layers.
var (
	// ErrInvalidCredentials indicates that the username is unknown or the password does not match.
	// Both cases share one error so callers cannot tell which usernames exist.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNotAuthenticated indicates a request without a valid session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidUsername indicates an empty or over-long username.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrPasswordTooShort indicates a password below the minimum length.
	ErrPasswordTooShort = errors.New("password too short")

	// ErrPasswordTooLong indicates a password longer than bcrypt can hash.
	ErrPasswordTooLong = errors.New("password too long")
)
