// Package db opens the relational and document stores backing the user and session data.
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authadapters "investment_game/internal/feature/auth/adapters"
	portfolioadapters "investment_game/internal/feature/portfolio/adapters"
)

// Supported values of DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

const (
	connectTimeout = 60 * time.Second
	retryInterval  = 3 * time.Second
)

// Config holds the database connection settings.
type Config struct {
	Driver        string
	User          string
	Password      string
	Name          string
	Host          string
	Port          string
	SSLMode       string
	InstanceName  string // Cloud SQL instance, connects over the unix socket when set
	SQLitePath    string
	MongoURI      string
	RunMigrations bool
}

// LoadConfigFromEnv loads database configuration from environment variables.
func LoadConfigFromEnv() Config {
	cfg := Config{
		Driver:       os.Getenv("DB_DRIVER"),
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		SSLMode:      os.Getenv("DB_SSLMODE"),
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
		SQLitePath:   os.Getenv("SQLITE_PATH"),
		MongoURI:     os.Getenv("MONGO_URI"),
	}
	cfg.RunMigrations, _ = strconv.ParseBool(os.Getenv("RUN_MIGRATIONS"))

	if cfg.Driver == "" {
		cfg.Driver = DriverPostgres
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "investment_game.db"
	}
	if cfg.Name == "" {
		cfg.Name = "investment_game"
	}
	return cfg
}

// BuildDSN returns the PostgreSQL DSN for cfg.
func BuildDSN(cfg Config) string {
	if cfg.InstanceName != "" {
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.InstanceName, cfg.User, cfg.Password, cfg.Name)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// ConnectWithRetry calls open until it succeeds or the next attempt would start after timeout.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %v: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "interval", retryInterval)
		time.Sleep(retryInterval)
	}
}

func openPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
}

func openSQLite(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
}

// OpenDB connects to the relational store selected by cfg.Driver and migrates it when asked.
func OpenDB(cfg Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case DriverPostgres:
		db, err = ConnectWithRetry(BuildDSN(cfg), connectTimeout, openPostgres)
	case DriverSQLite:
		db, err = openSQLite(cfg.SQLitePath)
		if err == nil {
			// A single connection serialises writers instead of failing with SQLITE_BUSY.
			if sqlDB, serr := db.DB(); serr == nil {
				sqlDB.SetMaxOpenConns(1)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported relational driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations || cfg.Driver == DriverSQLite {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	slog.Info("database connected", "driver", cfg.Driver)
	return db, nil
}

// Migrate creates or updates the users, holdings and sessions tables.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database")
	}
	if err := db.AutoMigrate(
		&portfolioadapters.UserModel{},
		&portfolioadapters.HoldingModel{},
		&authadapters.SessionModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
