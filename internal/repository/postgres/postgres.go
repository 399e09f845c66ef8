// Package postgres implements the repository interfaces with GORM on
// PostgreSQL.
package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sakif/linknest/internal/model"
)

// DB wraps a GORM connection and provides the repository methods. The
// server owns its lifecycle: New opens it, Close releases the pool.
type DB struct {
	db *gorm.DB
}

// New opens a PostgreSQL connection pool and migrates the schema.
// AutoMigrate creates the unique indexes on username and email that back
// the registration conflict checks and the OAuth upsert.
func New(dsn string) (*DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Surface unique-constraint violations as gorm.ErrDuplicatedKey so
		// repositories can translate them into conflict errors.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres: getting connection pool: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	if err := db.AutoMigrate(&model.User{}, &model.Link{}, &model.SocialLink{}); err != nil {
		return nil, fmt.Errorf("postgres: migrating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close releases the underlying connection pool.
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("postgres: getting connection pool: %w", err)
	}
	return sqlDB.Close()
}
