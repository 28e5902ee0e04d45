package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"investment_game/internal/feature/auth/domain"
	"investment_game/internal/feature/auth/domain/entity"
	portfoliodomain "investment_game/internal/feature/portfolio/domain"
	portfolioentity "investment_game/internal/feature/portfolio/domain/entity"
)

const (
	// minPasswordLength is the minimum number of characters in a password.
	minPasswordLength = 8
	// maxPasswordLength is the number of bytes bcrypt accepts.
	maxPasswordLength = 72
	// maxUsernameLength matches the users.username column size.
	maxUsernameLength = 64
	// DefaultSessionTTL is used when NewAuthUsecase is given a non-positive TTL.
	DefaultSessionTTL = 24 * time.Hour
)

// dummyHash is compared against when the user does not exist so that
// unknown usernames take as long as wrong passwords.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository is the part of the user store the auth feature needs.
type UserRepository interface {
	// Create persists a new user.
	// It returns portfoliodomain.ErrUsernameTaken if the username is already registered.
	Create(ctx context.Context, user *portfolioentity.User) error

	// FindByUsername returns portfoliodomain.ErrUserNotFound if the user does not exist.
	FindByUsername(ctx context.Context, username string) (*portfolioentity.User, error)
}

// TokenGenerator issues bearer tokens for the JSON API.
type TokenGenerator interface {
	// GenerateToken returns a signed token whose subject is username.
	GenerateToken(username string) (string, error)
}

// ClientInfo describes the client opening a session.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// authUsecase implements registration, login and session checks.
type authUsecase struct {
	users      UserRepository
	sessions   SessionRepository
	tokens     TokenGenerator
	sessionTTL time.Duration
}

// NewAuthUsecase creates a new authUsecase.
func NewAuthUsecase(users UserRepository, sessions SessionRepository, tokens TokenGenerator, sessionTTL time.Duration) *authUsecase {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &authUsecase{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		sessionTTL: sessionTTL,
	}
}

// normalizeUsername trims surrounding whitespace and checks the length.
func normalizeUsername(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	if username == "" || utf8.RuneCountInString(username) > maxUsernameLength {
		return "", domain.ErrInvalidUsername
	}
	return username, nil
}

// validatePassword checks whether the password meets the security requirements.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters long", domain.ErrPasswordTooShort, minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("%w: must be at most %d bytes long", domain.ErrPasswordTooLong, maxPasswordLength)
	}
	return nil
}

// Register creates a user with the default balances and a bcrypt-hashed password.
func (a *authUsecase) Register(ctx context.Context, rawUsername, password string) error {
	username, err := normalizeUsername(rawUsername)
	if err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	// Fast path; the store's unique index still decides concurrent registrations.
	if _, err := a.users.FindByUsername(ctx, username); err == nil {
		return portfoliodomain.ErrUsernameTaken
	} else if !errors.Is(err, portfoliodomain.ErrUserNotFound) {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return a.users.Create(ctx, portfolioentity.NewUser(username, string(hashed)))
}

// verify checks the password for username, running bcrypt even when the user is absent.
func (a *authUsecase) verify(ctx context.Context, rawUsername, password string) (*portfolioentity.User, error) {
	username := strings.TrimSpace(rawUsername)
	user, err := a.users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, portfoliodomain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	passwordHash := dummyHash
	if err == nil {
		passwordHash = user.PasswordHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	if err != nil || compareErr != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// Login verifies the credentials and opens a server-side session.
func (a *authUsecase) Login(ctx context.Context, username, password string, client ClientInfo) (*entity.Session, error) {
	user, err := a.verify(ctx, username, password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &entity.Session{
		ID:        uuid.NewString(),
		Username:  user.Username,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(a.sessionTTL),
	}
	if err := a.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// IssueToken verifies the credentials and returns a bearer token.
func (a *authUsecase) IssueToken(ctx context.Context, username, password string) (string, error) {
	user, err := a.verify(ctx, username, password)
	if err != nil {
		return "", err
	}

	token, err := a.tokens.GenerateToken(user.Username)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a session ID to its username.
// Missing, expired and revoked sessions all yield domain.ErrNotAuthenticated.
func (a *authUsecase) Authenticate(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", domain.ErrNotAuthenticated
	}

	session, err := a.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return "", domain.ErrNotAuthenticated
		}
		return "", fmt.Errorf("failed to load session: %w", err)
	}

	switch {
	case session.IsRevoked():
		return "", fmt.Errorf("%w: %w", domain.ErrNotAuthenticated, ErrSessionRevoked)
	case session.IsExpired():
		return "", fmt.Errorf("%w: %w", domain.ErrNotAuthenticated, ErrSessionExpired)
	}
	return session.Username, nil
}

// Logout revokes the session. An unknown session is not an error.
func (a *authUsecase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := a.sessions.Revoke(ctx, sessionID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// PurgeExpired deletes expired sessions from the store.
func (a *authUsecase) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := a.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return n, nil
}
