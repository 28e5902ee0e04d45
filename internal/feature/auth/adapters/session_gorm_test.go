package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"investment_game/internal/feature/auth/domain/entity"
	"investment_game/internal/feature/auth/usecase"
)

// setupSessionTestDB prepares an in-memory SQLite database for session testing.
func setupSessionTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	// Create Session table
	err = db.AutoMigrate(&SessionModel{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

// seedSession creates a test session in the database for testing.
func seedSession(t *testing.T, db *gorm.DB, id, username string, expiresAt time.Time, revokedAt *time.Time) *entity.Session {
	t.Helper()

	now := time.Now()
	session := &SessionModel{
		ID:        id,
		Username:  username,
		UserAgent: "test-agent",
		IPAddress: "127.0.0.1",
		CreatedAt: now,
		ExpiresAt: expiresAt,
		RevokedAt: revokedAt,
	}
	err := db.Create(session).Error
	require.NoError(t, err, "failed to seed session")

	return session.ToEntity()
}

func TestNewSessionGorm(t *testing.T) {
	db := setupSessionTestDB(t)

	repo := NewSessionGorm(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestSessionGorm_Create(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		session   *entity.Session
		duplicate bool
		wantErr   bool
	}{
		{
			name: "success: session creation",
			session: &entity.Session{
				ID:        "test-session-id-001",
				Username:  "alice",
				UserAgent: "Mozilla/5.0",
				IPAddress: "192.168.1.1",
				CreatedAt: time.Now(),
				ExpiresAt: time.Now().Add(24 * time.Hour),
			},
		},
		{
			name: "failure: duplicate session ID",
			session: &entity.Session{
				ID:        "duplicate-id",
				Username:  "alice",
				UserAgent: "test-agent",
				IPAddress: "127.0.0.1",
				CreatedAt: time.Now(),
				ExpiresAt: time.Now().Add(24 * time.Hour),
			},
			duplicate: true,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := setupSessionTestDB(t)
			repo := NewSessionGorm(db)

			if tt.duplicate {
				seedSession(t, db, tt.session.ID, "alice", time.Now().Add(24*time.Hour), nil)
			}

			err := repo.Create(context.Background(), tt.session)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			var found SessionModel
			require.NoError(t, db.Where("id = ?", tt.session.ID).First(&found).Error)
			assert.Equal(t, tt.session.Username, found.Username)
			assert.Equal(t, tt.session.UserAgent, found.UserAgent)
		})
	}
}

func TestSessionGorm_FindByID(t *testing.T) {
	t.Parallel()

	t.Run("success: find session by ID", func(t *testing.T) {
		t.Parallel()

		db := setupSessionTestDB(t)
		repo := NewSessionGorm(db)
		seedSession(t, db, "find-session-id", "alice", time.Now().Add(24*time.Hour), nil)

		found, err := repo.FindByID(context.Background(), "find-session-id")

		require.NoError(t, err)
		assert.Equal(t, "find-session-id", found.ID)
		assert.Equal(t, "alice", found.Username)
		assert.True(t, found.IsValid())
	})

	t.Run("failure: session not found", func(t *testing.T) {
		t.Parallel()

		repo := NewSessionGorm(setupSessionTestDB(t))

		found, err := repo.FindByID(context.Background(), "nonexistent-id")

		assert.ErrorIs(t, err, usecase.ErrSessionNotFound)
		assert.Nil(t, found)
	})
}

func TestSessionGorm_Revoke(t *testing.T) {
	t.Parallel()

	t.Run("success: revoke session", func(t *testing.T) {
		t.Parallel()

		db := setupSessionTestDB(t)
		repo := NewSessionGorm(db)
		seedSession(t, db, "revoke-session-id", "alice", time.Now().Add(24*time.Hour), nil)

		err := repo.Revoke(context.Background(), "revoke-session-id")
		require.NoError(t, err)

		found, err := repo.FindByID(context.Background(), "revoke-session-id")
		require.NoError(t, err)
		assert.True(t, found.IsRevoked())
	})

	t.Run("failure: session not found", func(t *testing.T) {
		t.Parallel()

		repo := NewSessionGorm(setupSessionTestDB(t))

		err := repo.Revoke(context.Background(), "nonexistent-id")
		assert.ErrorIs(t, err, usecase.ErrSessionNotFound)
	})
}

func TestSessionGorm_DeleteExpired(t *testing.T) {
	t.Parallel()

	db := setupSessionTestDB(t)
	repo := NewSessionGorm(db)

	// Setup: create expired and active sessions
	seedSession(t, db, "expired-1", "alice", time.Now().Add(-1*time.Hour), nil)
	seedSession(t, db, "expired-2", "bob", time.Now().Add(-2*time.Hour), nil)
	seedSession(t, db, "active", "alice", time.Now().Add(24*time.Hour), nil)

	deleted, err := repo.DeleteExpired(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(2), deleted, "should delete 2 expired sessions")

	// Verify only active session remains
	var count int64
	db.Model(&SessionModel{}).Count(&count)
	assert.Equal(t, int64(1), count, "only active session should remain")
}
