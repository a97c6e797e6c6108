package shared

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// NewDatabase opens a connection pool for driver ("pgx" or "sqlite3") at dsn.
// For sqlite3 the dsn can be ":memory:" for an in-memory database.
// Returns an open database connection or an error if connection fails.
func NewDatabase(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to an in-memory sqlite database is a separate database.
	if driver == "sqlite3" && dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// OpenDatabase opens and configures the database described by cfg.
func OpenDatabase(cfg DatabaseConfig) (*sql.DB, error) {
	db, err := NewDatabase(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite3" && cfg.DSN == ":memory:" {
		return db, nil
	}
	ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)
	return db, nil
}

// ConfigureDatabase sets connection pool settings for the database.
// Recommended for production use to limit connections and improve performance.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
}
