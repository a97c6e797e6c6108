package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/shared"
	"github.com/goccy/go-json"
)

const (
	ensureUserQuery = `INSERT INTO users (chat_id) VALUES ($1) ON CONFLICT (chat_id) DO NOTHING`

	selectUserQuery = `
		SELECT chat_id, include_annotations, lyrics_lang, bot_lang, genius_token, spotify_token
		FROM users
		WHERE chat_id = $1
	`

	upsertPreferencesQuery = `
		INSERT INTO user_preferences (chat_id, genres, artists, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (chat_id) DO UPDATE
		SET genres = excluded.genres, artists = excluded.artists, updated_at = CURRENT_TIMESTAMP
	`

	selectPreferencesQuery = `SELECT genres, artists FROM user_preferences WHERE chat_id = $1`

	deletePreferencesQuery = `DELETE FROM user_preferences WHERE chat_id = $1`
)

// columnStatements holds the only UPDATE statements [UserRepository.UpdateColumn] may run.
var columnStatements = map[models.Column]string{
	models.ColumnIncludeAnnotations: `UPDATE users SET include_annotations = $1, updated_at = CURRENT_TIMESTAMP WHERE chat_id = $2`,
	models.ColumnLyricsLang:         `UPDATE users SET lyrics_lang = $1, updated_at = CURRENT_TIMESTAMP WHERE chat_id = $2`,
	models.ColumnBotLang:            `UPDATE users SET bot_lang = $1, updated_at = CURRENT_TIMESTAMP WHERE chat_id = $2`,
}

var tokenStatements = map[models.Platform]string{
	models.PlatformGenius:  `UPDATE users SET genius_token = $1, updated_at = CURRENT_TIMESTAMP WHERE chat_id = $2`,
	models.PlatformSpotify: `UPDATE users SET spotify_token = $1, updated_at = CURRENT_TIMESTAMP WHERE chat_id = $2`,
}

// UserRepository implements [PreferenceStore] over database/sql.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate returns the user row for chatID, inserting one with default settings first if needed.
func (r *UserRepository) GetOrCreate(ctx context.Context, chatID int64) (*models.UserRecord, error) {
	var user *models.UserRecord
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, ensureUserQuery, chatID); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		var err error
		user, err = scanUser(tx.QueryRowContext(ctx, selectUserQuery, chatID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Get returns the user row for chatID or [shared.ErrNotFound].
func (r *UserRepository) Get(ctx context.Context, chatID int64) (*models.UserRecord, error) {
	var user *models.UserRecord
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		user, err = scanUser(tx.QueryRowContext(ctx, selectUserQuery, chatID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateColumn sets a single user setting. include_annotations takes a bool, the language columns a string.
// Unknown columns and mistyped values fail with [shared.ErrInvalidArgument] before any query runs.
func (r *UserRepository) UpdateColumn(ctx context.Context, chatID int64, column models.Column, value any) error {
	stmt, ok := columnStatements[column]
	if !ok {
		return fmt.Errorf("%w: unknown column %q", shared.ErrInvalidArgument, column)
	}

	switch column {
	case models.ColumnIncludeAnnotations:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: %s expects a bool, got %T", shared.ErrInvalidArgument, column, value)
		}
	default:
		s, ok := value.(string)
		if !ok || s == "" {
			return fmt.Errorf("%w: %s expects a non-empty string", shared.ErrInvalidArgument, column)
		}
	}

	return r.exec(ctx, chatID, stmt, value, chatID)
}

// UpdateToken stores the OAuth token for platform.
func (r *UserRepository) UpdateToken(ctx context.Context, chatID int64, token string, platform models.Platform) error {
	stmt, ok := tokenStatements[platform]
	if !ok {
		return fmt.Errorf("%w: unknown platform %q", shared.ErrInvalidArgument, platform)
	}
	return r.exec(ctx, chatID, stmt, token, chatID)
}

// UpdatePreferences saves the genres and artists picked in the recommendation flow.
func (r *UserRepository) UpdatePreferences(ctx context.Context, chatID int64, prefs models.Preferences) error {
	genres, err := encodeList(prefs.Genres)
	if err != nil {
		return err
	}
	artists, err := encodeList(prefs.Artists)
	if err != nil {
		return err
	}
	return r.exec(ctx, chatID, upsertPreferencesQuery, chatID, genres, artists)
}

// GetPreferences returns saved preferences or [shared.ErrNotFound].
func (r *UserRepository) GetPreferences(ctx context.Context, chatID int64) (*models.Preferences, error) {
	var prefs *models.Preferences
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var genres, artists string
		err := tx.QueryRowContext(ctx, selectPreferencesQuery, chatID).Scan(&genres, &artists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: preferences for chat %d", shared.ErrNotFound, chatID)
		}
		if err != nil {
			return fmt.Errorf("failed to query preferences: %w", err)
		}

		prefs = &models.Preferences{}
		if err := json.Unmarshal([]byte(genres), &prefs.Genres); err != nil {
			return fmt.Errorf("failed to decode genres: %w", err)
		}
		if err := json.Unmarshal([]byte(artists), &prefs.Artists); err != nil {
			return fmt.Errorf("failed to decode artists: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

// DeletePreferences removes saved genres and artists. Settings and tokens are kept.
func (r *UserRepository) DeletePreferences(ctx context.Context, chatID int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deletePreferencesQuery, chatID); err != nil {
			return fmt.Errorf("failed to delete preferences: %w", err)
		}
		return nil
	})
}

// exec makes sure the user row exists and then runs stmt in the same transaction.
func (r *UserRepository) exec(ctx context.Context, chatID int64, stmt string, args ...any) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, ensureUserQuery, chatID); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return nil
	})
}

func scanUser(row *sql.Row) (*models.UserRecord, error) {
	var (
		user            models.UserRecord
		genius, spotify sql.NullString
	)
	err := row.Scan(&user.ChatID, &user.IncludeAnnotations, &user.LyricsLang, &user.BotLang, &genius, &spotify)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if genius.Valid {
		user.GeniusToken = &genius.String
	}
	if spotify.Valid {
		user.SpotifyToken = &spotify.String
	}
	return &user, nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(b), nil
}
