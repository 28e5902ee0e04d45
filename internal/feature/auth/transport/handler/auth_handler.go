// Package handler provides the HTTP handlers for the auth feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"investment_game/internal/feature/auth/domain"
	"investment_game/internal/feature/auth/domain/entity"
	"investment_game/internal/feature/auth/transport/http/dto"
	"investment_game/internal/feature/auth/usecase"
	portfoliodomain "investment_game/internal/feature/portfolio/domain"
)

const (
	msgInvalidCredentials = "Invalid username/password combination!"
	msgUsernameTaken      = "Username already exists!"
	msgInvalidUsername    = "Username must be between 1 and 64 characters."
	msgPasswordTooShort   = "Password must be at least 8 characters."
	msgPasswordTooLong    = "Password must be at most 72 bytes."
	msgInvalidRequest     = "Invalid request."
	msgInternal           = "Something went wrong."
)

// AuthUsecase defines the authentication operations used by the handlers.
// Following Go convention, the interface is defined by the consumer (handler), not the provider (usecase).
type AuthUsecase interface {
	// Register creates a user with the default balances.
	Register(ctx context.Context, username, password string) error
	// Login verifies the credentials and opens a session.
	Login(ctx context.Context, username, password string, client usecase.ClientInfo) (*entity.Session, error)
	// IssueToken verifies the credentials and returns a bearer token.
	IssueToken(ctx context.Context, username, password string) (string, error)
	// Logout revokes a session.
	Logout(ctx context.Context, sessionID string) error
}

// SessionCookies reads and writes the session ID cookie.
type SessionCookies interface {
	SessionID(r *http.Request) string
	Bind(w http.ResponseWriter, r *http.Request, id string) error
	Clear(w http.ResponseWriter, r *http.Request) error
}

// AuthHandler handles login, registration and logout.
type AuthHandler struct {
	auth    AuthUsecase
	cookies SessionCookies
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth AuthUsecase, cookies SessionCookies) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies}
}

// LoginPage handles GET /.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.tmpl", dto.FormView{})
}

// Login handles POST /: opens a session and redirects to the portfolio.
func (h *AuthHandler) Login(c *gin.Context) {
	var form dto.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.String(http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	client := usecase.ClientInfo{UserAgent: c.Request.UserAgent(), IPAddress: c.ClientIP()}
	session, err := h.auth.Login(c.Request.Context(), form.Username, form.Password, client)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			slog.Warn("login failed", "username", form.Username, "remote_addr", c.ClientIP())
			c.String(http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		slog.Error("login failed", "error", err, "username", form.Username, "remote_addr", c.ClientIP())
		c.String(http.StatusInternalServerError, msgInternal)
		return
	}

	if err := h.cookies.Bind(c.Writer, c.Request, session.ID); err != nil {
		slog.Error("failed to write session cookie", "error", err, "remote_addr", c.ClientIP())
		c.String(http.StatusInternalServerError, msgInternal)
		return
	}
	slog.Info("user login successful", "username", session.Username, "remote_addr", c.ClientIP())
	c.Redirect(http.StatusSeeOther, "/main")
}

// RegisterPage handles GET /register.
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.tmpl", dto.FormView{})
}

// Register handles POST /register: creates the user and sends them to the login page.
func (h *AuthHandler) Register(c *gin.Context) {
	var form dto.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		c.String(http.StatusBadRequest, msgInvalidRequest)
		return
	}

	err := h.auth.Register(c.Request.Context(), form.Username, form.Password)
	switch {
	case err == nil:
		slog.Info("user registered", "username", form.Username, "remote_addr", c.ClientIP())
		c.Redirect(http.StatusSeeOther, "/")
	case errors.Is(err, portfoliodomain.ErrUsernameTaken):
		slog.Warn("register failed", "error", err, "username", form.Username, "remote_addr", c.ClientIP())
		c.String(http.StatusConflict, msgUsernameTaken)
	case errors.Is(err, domain.ErrInvalidUsername):
		slog.Warn("register failed", "error", err, "remote_addr", c.ClientIP())
		c.String(http.StatusUnprocessableEntity, msgInvalidUsername)
	case errors.Is(err, domain.ErrPasswordTooShort):
		slog.Warn("register failed", "error", err, "username", form.Username, "remote_addr", c.ClientIP())
		c.String(http.StatusUnprocessableEntity, msgPasswordTooShort)
	case errors.Is(err, domain.ErrPasswordTooLong):
		slog.Warn("register failed", "error", err, "username", form.Username, "remote_addr", c.ClientIP())
		c.String(http.StatusUnprocessableEntity, msgPasswordTooLong)
	default:
		slog.Error("register failed", "error", err, "username", form.Username, "remote_addr", c.ClientIP())
		c.String(http.StatusInternalServerError, msgInternal)
	}
}

// Logout handles GET /logout: revokes the session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), h.cookies.SessionID(c.Request)); err != nil {
		// The cookie is cleared regardless; the session expires on its own.
		slog.Error("logout failed", "error", err, "remote_addr", c.ClientIP())
	}
	if err := h.cookies.Clear(c.Writer, c.Request); err != nil {
		slog.Warn("failed to clear session cookie", "error", err, "remote_addr", c.ClientIP())
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// APILogin handles POST /api/v1/login and returns a bearer token.
func (h *AuthHandler) APILogin(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msgInvalidRequest})
		return
	}

	token, err := h.auth.IssueToken(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			slog.Warn("login failed", "username", req.Username, "remote_addr", c.ClientIP())
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: msgInvalidCredentials})
			return
		}
		slog.Error("login failed", "error", err, "username", req.Username, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: msgInternal})
		return
	}
	slog.Info("user login successful", "username", req.Username, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}
