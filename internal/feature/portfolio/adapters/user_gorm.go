// Package adapters provides user store implementations for the portfolio feature.
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"investment_game/internal/feature/portfolio/domain"
	"investment_game/internal/feature/portfolio/domain/entity"
	"investment_game/internal/feature/portfolio/usecase"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// userGorm is a GORM implementation of the user store.
// It works with any GORM dialect; PostgreSQL in production, SQLite locally and in tests.
type userGorm struct {
	db *gorm.DB
}

// Compile-time check to ensure userGorm implements UserRepository.
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm creates a new instance of userGorm.
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create inserts a new user with version 1.
// It returns domain.ErrUsernameTaken if the username is already registered.
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	m := UserModelFromEntity(u)
	m.Version = 1
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUsernameTaken
		}
		return err
	}
	u.ID = m.ID
	u.Version = m.Version
	u.CreatedAt = m.CreatedAt
	u.UpdatedAt = m.UpdatedAt
	return nil
}

// FindByUsername loads a user and its holdings in insertion order.
func (r *userGorm) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var m UserModel
	err := r.db.WithContext(ctx).
		Preload("Holdings", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("username = ?", username).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// Save writes balances and holdings back in one transaction.
// The row is only updated if its version still equals u.Version.
func (r *userGorm) Save(ctx context.Context, u *entity.User) error {
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&UserModel{}).
			Where("id = ? AND version = ?", u.ID, u.Version).
			Updates(map[string]any{
				"cash_balance":  u.CashBalance,
				"total_balance": u.TotalBalance,
				"version":       u.Version + 1,
				"updated_at":    now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.ErrVersionConflict
		}

		// Holdings are rewritten wholesale; a user holds a handful at most.
		if err := tx.Where("user_id = ?", u.ID).Delete(&HoldingModel{}).Error; err != nil {
			return err
		}
		if len(u.Holdings) == 0 {
			return nil
		}
		models := holdingModelsFromEntity(u.ID, u.Holdings)
		return tx.Create(&models).Error
	})
	if err != nil {
		return err
	}

	u.Version++
	u.UpdatedAt = now
	return nil
}

// isUniqueViolation reports whether err is a unique-constraint failure.
// gorm.ErrDuplicatedKey requires gorm.Config.TranslateError; the pgconn check covers
// connections opened without it.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
