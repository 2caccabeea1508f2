// Package store is the persistent store of crewboard: users, crews and
// search messages, kept in sqlite (default) or PostgreSQL through gorm.
//
// A Store is an explicit handle; there is no package-level database.
package store

import (
	"context"
	"fmt"
	"strings"

	"crewboard/model"

	"github.com/cdfmlr/crud/log"
	"github.com/glebarez/sqlite" // pure go sqlite driver
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var logger = log.ZoneLogger("crewboard/store")

// Store owns every User, Crew and SearchMessage.
type Store struct {
	db *gorm.DB
}

// Open connects to the database named by dsn and migrates the schema.
//
// DSNs starting with postgres:// or postgresql:// use PostgreSQL,
// anything else is a sqlite file path.
func Open(dsn string) (*Store, error) {
	db, err := connectDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("Open: connectDB failed: %w", err)
	}

	if err := db.AutoMigrate(model.All()...); err != nil {
		return nil, fmt.Errorf("Open: AutoMigrate failed: %w", err)
	}

	logger.WithField("driver", db.Dialector.Name()).Info("Open: store ready")

	return &Store{db: db}, nil
}

func connectDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty dsn")
	}

	db, err := gorm.Open(dialector(dsn), &gorm.Config{
		Logger: log.Logger4Gorm,
	})
	if err != nil {
		return nil, err
	}

	if db.Dialector.Name() == "sqlite" {
		// sqlite allows one writer at a time
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func dialector(dsn string) gorm.Dialector {
	if isPostgresDSN(dsn) {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://")
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
