package jwtmw

import (
	"log/slog"
	"os"
	"time"
)

const (
	// EnvKeyJWTSecret is the environment variable holding the HMAC signing key.
	EnvKeyJWTSecret = "JWT_SECRET"
	// EnvKeyJWTExpiration is the environment variable holding the token lifetime.
	EnvKeyJWTExpiration = "JWT_EXPIRATION"
	// DefaultExpiration is the token lifetime when JWT_EXPIRATION is unset or invalid.
	DefaultExpiration = time.Hour
)

// LoadExpiration reads the token lifetime from the environment.
func LoadExpiration() time.Duration {
	v := os.Getenv(EnvKeyJWTExpiration)
	if v == "" {
		return DefaultExpiration
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid JWT_EXPIRATION, using default", "value", v, "default", DefaultExpiration)
		return DefaultExpiration
	}
	return d
}
