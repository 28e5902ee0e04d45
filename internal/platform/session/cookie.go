package session

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	// CookieName is the name of the signed session cookie.
	CookieName = "investment_game"
	// sessionIDKey is the cookie value key holding the server-side session ID.
	sessionIDKey = "sid"
	// DefaultTTL is the session lifetime when SESSION_TTL is unset or invalid.
	DefaultTTL = 24 * time.Hour
)

// Config holds the cookie and session lifetime settings.
type Config struct {
	Secret []byte        // HMAC key signing the cookie
	TTL    time.Duration // Lifetime of both the cookie and the server-side session
	Secure bool          // Send the cookie over HTTPS only
}

// LoadConfig loads session configuration from environment variables.
// A missing SESSION_SECRET is replaced by a random key, which logs everybody out on restart.
func LoadConfig() Config {
	secret := []byte(os.Getenv("SESSION_SECRET"))
	if len(secret) == 0 {
		slog.Warn("SESSION_SECRET is not set; using a random key")
		secret = securecookie.GenerateRandomKey(32)
	}

	ttl := DefaultTTL
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			ttl = d
		} else {
			slog.Warn("invalid SESSION_TTL, using default", "value", v, "default", DefaultTTL)
		}
	}

	secure, _ := strconv.ParseBool(os.Getenv("COOKIE_SECURE"))

	return Config{Secret: secret, TTL: ttl, Secure: secure}
}

// CookieJar stores the session ID in a signed, HTTP-only cookie.
type CookieJar struct {
	store *sessions.CookieStore
}

// NewCookieJar creates a CookieJar from cfg.
func NewCookieJar(cfg Config) *CookieJar {
	store := sessions.NewCookieStore(cfg.Secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieJar{store: store}
}

// SessionID returns the session ID carried by r, or "" if there is none
// or the cookie fails verification.
func (j *CookieJar) SessionID(r *http.Request) string {
	s, err := j.store.Get(r, CookieName)
	if err != nil {
		return ""
	}
	id, _ := s.Values[sessionIDKey].(string)
	return id
}

// Bind writes a cookie carrying id.
func (j *CookieJar) Bind(w http.ResponseWriter, r *http.Request, id string) error {
	// Get returns a fresh session alongside the error for a tampered cookie.
	s, _ := j.store.Get(r, CookieName)
	s.Values[sessionIDKey] = id
	return s.Save(r, w)
}

// Clear expires the session cookie.
func (j *CookieJar) Clear(w http.ResponseWriter, r *http.Request) error {
	s, _ := j.store.Get(r, CookieName)
	delete(s.Values, sessionIDKey)
	s.Options.MaxAge = -1
	return s.Save(r, w)
}
