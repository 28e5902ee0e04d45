package adapters

import (
	"time"

	"github.com/shopspring/decimal"

	"investment_game/internal/feature/portfolio/domain/entity"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID           uint            `gorm:"primaryKey"`
	Username     string          `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string          `gorm:"size:255;not null"`
	CashBalance  decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	TotalBalance decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	Version      int64           `gorm:"not null"`
	Holdings     []HoldingModel  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// HoldingModel is the GORM model for the holdings table.
// Position preserves the insertion order of a user's holdings.
type HoldingModel struct {
	ID        uint            `gorm:"primaryKey"`
	UserID    uint            `gorm:"uniqueIndex:idx_holdings_user_ticker;not null"`
	Ticker    string          `gorm:"uniqueIndex:idx_holdings_user_ticker;size:16;not null"`
	Position  int             `gorm:"not null"`
	Shares    int64           `gorm:"not null"`
	AvgCost   decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	LastPrice decimal.Decimal `gorm:"type:decimal(20,8);not null"`
}

// TableName returns the table name for GORM.
func (HoldingModel) TableName() string {
	return "holdings"
}

// ToEntity converts the GORM model to a domain entity.
func (m *UserModel) ToEntity() *entity.User {
	holdings := make([]entity.Holding, len(m.Holdings))
	for i, h := range m.Holdings {
		holdings[i] = entity.Holding{
			Ticker:    h.Ticker,
			Shares:    h.Shares,
			AvgCost:   h.AvgCost,
			LastPrice: h.LastPrice,
		}
	}
	return &entity.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		CashBalance:  m.CashBalance,
		TotalBalance: m.TotalBalance,
		Holdings:     holdings,
		Version:      m.Version,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// UserModelFromEntity converts a domain entity to a GORM model.
func UserModelFromEntity(u *entity.User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CashBalance:  u.CashBalance,
		TotalBalance: u.TotalBalance,
		Version:      u.Version,
		Holdings:     holdingModelsFromEntity(u.ID, u.Holdings),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func holdingModelsFromEntity(userID uint, holdings []entity.Holding) []HoldingModel {
	out := make([]HoldingModel, len(holdings))
	for i, h := range holdings {
		out[i] = HoldingModel{
			UserID:    userID,
			Ticker:    h.Ticker,
			Position:  i,
			Shares:    h.Shares,
			AvgCost:   h.AvgCost,
			LastPrice: h.LastPrice,
		}
	}
	return out
}
