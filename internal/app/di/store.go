// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"gorm.io/gorm"

	authusecase "investment_game/internal/feature/auth/usecase"
	portfolioadapters "investment_game/internal/feature/portfolio/adapters"
	portfoliousecase "investment_game/internal/feature/portfolio/usecase"
	"investment_game/internal/platform/db"
)

// UserStore is the user persistence needed by both the auth and portfolio features.
type UserStore interface {
	authusecase.UserRepository
	portfoliousecase.UserRepository
}

// Store bundles the opened user store with its underlying connection.
type Store struct {
	Users UserStore
	// DB is nil when users live in MongoDB.
	DB    *gorm.DB
	mongo *mongo.Client
}

// OpenStore opens the user store selected by cfg.Driver.
func OpenStore(ctx context.Context, cfg db.Config) (*Store, error) {
	if cfg.Driver == db.DriverMongo {
		client, database, err := db.OpenMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		users := portfolioadapters.NewUserMongo(database)
		if err := users.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("failed to create mongo indexes: %w", err)
		}
		return &Store{Users: users, mongo: client}, nil
	}

	gdb, err := db.OpenDB(cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Users: portfolioadapters.NewUserGorm(gdb), DB: gdb}, nil
}

// Ping checks that the underlying database answers.
func (s *Store) Ping(ctx context.Context) error {
	if s.mongo != nil {
		return s.mongo.Ping(ctx, readpref.Primary())
	}
	if s.DB != nil {
		sqlDB, err := s.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
	return nil
}

// Close releases the underlying connection.
func (s *Store) Close(ctx context.Context) error {
	if s.mongo != nil {
		return s.mongo.Disconnect(ctx)
	}
	if s.DB != nil {
		sqlDB, err := s.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
