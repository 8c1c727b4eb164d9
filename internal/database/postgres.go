package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/Amadou-dot/infrasight-sub002/internal/config"
)

// NewPostgresDB opens a connection pool against one of the two stores.
func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.GetDSN()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Close closes a connection pool, tolerating nil handles.
func Close(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
