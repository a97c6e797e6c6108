package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/geniust/internal/models"
)

// PreferenceStore is the persistence contract used by the bot and HTTP handlers.
type PreferenceStore interface {
	GetOrCreate(ctx context.Context, chatID int64) (*models.UserRecord, error)
	Get(ctx context.Context, chatID int64) (*models.UserRecord, error)
	UpdateColumn(ctx context.Context, chatID int64, column models.Column, value any) error
	UpdateToken(ctx context.Context, chatID int64, token string, platform models.Platform) error
	UpdatePreferences(ctx context.Context, chatID int64, prefs models.Preferences) error
	GetPreferences(ctx context.Context, chatID int64) (*models.Preferences, error)
	DeletePreferences(ctx context.Context, chatID int64) error
}

// withTx runs fn in a transaction on a dedicated pooled connection.
//
// The transaction commits when fn returns nil and rolls back otherwise; the connection is
// returned to the pool in both cases.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
