package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authdomain "investment_game/internal/feature/auth/domain"
	"investment_game/internal/shared/authctx"
)

// Authenticator resolves a session ID to a username.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID string) (string, error)
}

// RequireSession returns a Gin middleware that admits only requests with a valid session.
// Anonymous requests are redirected to the login page.
func RequireSession(auth Authenticator, jar *CookieJar) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, err := auth.Authenticate(c.Request.Context(), jar.SessionID(c.Request))
		if err != nil {
			if !errors.Is(err, authdomain.ErrNotAuthenticated) {
				slog.Error("session lookup failed", "error", err, "remote_addr", c.ClientIP())
				c.String(http.StatusInternalServerError, "Something went wrong.")
				c.Abort()
				return
			}
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}

		authctx.SetUsername(c, username)
		c.Next()
	}
}
