package di

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "investment_game/internal/feature/auth/adapters"
	"investment_game/internal/feature/auth/usecase"
	"investment_game/internal/platform/session"
)

// ErrNoSessionStore is returned when neither Redis nor a relational database is available.
var ErrNoSessionStore = errors.New("no session store: configure Redis or a relational database")

// NewSessionRepository creates a SessionRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the relational database.
func NewSessionRepository(rdb *redis.Client, db *gorm.DB) (usecase.SessionRepository, error) {
	if rdb != nil {
		return session.NewSessionRedis(rdb, "session"), nil
	}
	if db != nil {
		return authadapters.NewSessionGorm(db), nil
	}
	return nil, ErrNoSessionStore
}
