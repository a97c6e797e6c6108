package repositories

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("GetOrCreate applies defaults", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		user, err := repo.GetOrCreate(ctx, 1)
		if err != nil {
			t.Fatalf("GetOrCreate() error = %v", err)
		}

		if user.ChatID != 1 {
			t.Errorf("expected chat id 1, got %d", user.ChatID)
		}
		if !user.IncludeAnnotations {
			t.Error("include_annotations should default to true")
		}
		if user.LyricsLang != models.DefaultLyricsLang {
			t.Errorf("expected lyrics_lang %q, got %q", models.DefaultLyricsLang, user.LyricsLang)
		}
		if user.BotLang != models.DefaultBotLang {
			t.Errorf("expected bot_lang %q, got %q", models.DefaultBotLang, user.BotLang)
		}
		if user.GeniusToken != nil || user.SpotifyToken != nil {
			t.Error("tokens should be unset")
		}
	})

	t.Run("GetOrCreate is idempotent", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		if _, err := repo.GetOrCreate(ctx, 7); err != nil {
			t.Fatal(err)
		}
		if err := repo.UpdateColumn(ctx, 7, models.ColumnBotLang, "fa"); err != nil {
			t.Fatal(err)
		}

		user, err := repo.GetOrCreate(ctx, 7)
		if err != nil {
			t.Fatal(err)
		}
		if user.BotLang != "fa" {
			t.Errorf("second GetOrCreate should not reset settings, got bot_lang %q", user.BotLang)
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		if _, err := repo.Get(ctx, 42); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		if _, err := repo.GetOrCreate(ctx, 42); err != nil {
			t.Fatal(err)
		}
		if _, err := repo.Get(ctx, 42); err != nil {
			t.Errorf("Get() error = %v", err)
		}
	})

	t.Run("UpdateColumn", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		tc := []struct {
			column models.Column
			value  any
			check  func(*models.UserRecord) bool
		}{
			{models.ColumnIncludeAnnotations, false, func(u *models.UserRecord) bool { return !u.IncludeAnnotations }},
			{models.ColumnLyricsLang, "English", func(u *models.UserRecord) bool { return u.LyricsLang == "English" }},
			{models.ColumnBotLang, "fa", func(u *models.UserRecord) bool { return u.BotLang == "fa" }},
		}

		for _, tt := range tc {
			t.Run(string(tt.column), func(t *testing.T) {
				if err := repo.UpdateColumn(ctx, 3, tt.column, tt.value); err != nil {
					t.Fatalf("UpdateColumn() error = %v", err)
				}
				user, err := repo.Get(ctx, 3)
				if err != nil {
					t.Fatal(err)
				}
				if !tt.check(user) {
					t.Errorf("column %s not updated: %+v", tt.column, user)
				}
			})
		}
	})

	t.Run("UpdateColumn last write wins", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		for _, lang := range []string{"en", "fa", "en"} {
			if err := repo.UpdateColumn(ctx, 5, models.ColumnBotLang, lang); err != nil {
				t.Fatal(err)
			}
		}
		user, err := repo.Get(ctx, 5)
		if err != nil {
			t.Fatal(err)
		}
		if user.BotLang != "en" {
			t.Errorf("expected en, got %q", user.BotLang)
		}
	})

	t.Run("UpdateToken", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		if err := repo.UpdateToken(ctx, 1, "genius-token", models.PlatformGenius); err != nil {
			t.Fatalf("UpdateToken(genius) error = %v", err)
		}
		if err := repo.UpdateToken(ctx, 1, "spotify-refresh", models.PlatformSpotify); err != nil {
			t.Fatalf("UpdateToken(spotify) error = %v", err)
		}

		user, err := repo.Get(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		if got := user.Token(models.PlatformGenius); got != "genius-token" {
			t.Errorf("genius token = %q", got)
		}
		if got := user.Token(models.PlatformSpotify); got != "spotify-refresh" {
			t.Errorf("spotify token = %q", got)
		}
	})

	t.Run("Preferences round trip", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		if _, err := repo.GetPreferences(ctx, 9); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		prefs := models.Preferences{Genres: []string{"pop", "rap"}, Artists: []string{"Nas"}}
		if err := repo.UpdatePreferences(ctx, 9, prefs); err != nil {
			t.Fatalf("UpdatePreferences() error = %v", err)
		}

		updated := models.Preferences{Genres: []string{"rock"}}
		if err := repo.UpdatePreferences(ctx, 9, updated); err != nil {
			t.Fatalf("UpdatePreferences() second call error = %v", err)
		}

		got, err := repo.GetPreferences(ctx, 9)
		if err != nil {
			t.Fatalf("GetPreferences() error = %v", err)
		}
		if !slices.Equal(got.Genres, []string{"rock"}) {
			t.Errorf("genres = %v", got.Genres)
		}
		if got.Artists == nil || len(got.Artists) != 0 {
			t.Errorf("artists = %v, want empty", got.Artists)
		}
	})

	t.Run("DeletePreferences keeps tokens", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		if err := repo.UpdateToken(ctx, 2, "tok", models.PlatformGenius); err != nil {
			t.Fatal(err)
		}
		if err := repo.UpdatePreferences(ctx, 2, models.Preferences{Genres: []string{"pop"}}); err != nil {
			t.Fatal(err)
		}

		if err := repo.DeletePreferences(ctx, 2); err != nil {
			t.Fatalf("DeletePreferences() error = %v", err)
		}

		if _, err := repo.GetPreferences(ctx, 2); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("preferences should be gone, got %v", err)
		}
		user, err := repo.Get(ctx, 2)
		if err != nil {
			t.Fatal(err)
		}
		if user.Token(models.PlatformGenius) != "tok" {
			t.Error("token should survive a preference reset")
		}
	})

	t.Run("DeletePreferences without preferences", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		if err := repo.DeletePreferences(ctx, 100); err != nil {
			t.Errorf("DeletePreferences() error = %v", err)
		}
	})

	t.Run("concurrent updates", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		var wg sync.WaitGroup
		for i := range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := repo.UpdateColumn(ctx, 11, models.ColumnIncludeAnnotations, i%2 == 0); err != nil {
					t.Errorf("UpdateColumn() error = %v", err)
				}
			}()
		}
		wg.Wait()

		if _, err := repo.Get(ctx, 11); err != nil {
			t.Errorf("Get() error = %v", err)
		}
	})
}

func TestRepositoryImplementsPreferenceStore(t *testing.T) {
	var _ PreferenceStore = NewUserRepository(nil)
}
