package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/shared"
)

func TestUserRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("UpdateColumn", func(t *testing.T) {
		t.Run("UnknownColumn", func(t *testing.T) {
			db := setupTestDB(t)
			db.Close()

			repo := NewUserRepository(db)
			err := repo.UpdateColumn(ctx, 1, models.Column("chat_id; DROP TABLE users"), "x")
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument before touching the database, got %v", err)
			}
		})

		t.Run("WrongValueType", func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))

			if err := repo.UpdateColumn(ctx, 1, models.ColumnIncludeAnnotations, "yes"); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
			if err := repo.UpdateColumn(ctx, 1, models.ColumnBotLang, 3); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
			if err := repo.UpdateColumn(ctx, 1, models.ColumnLyricsLang, ""); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	})

	t.Run("UpdateToken", func(t *testing.T) {
		t.Run("UnknownPlatform", func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))
			err := repo.UpdateToken(ctx, 1, "tok", models.Platform("deezer"))
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	})

	t.Run("ClosedDatabase", func(t *testing.T) {
		db := setupTestDB(t)
		db.Close()
		repo := NewUserRepository(db)

		if _, err := repo.GetOrCreate(ctx, 1); err == nil {
			t.Error("GetOrCreate should fail on a closed database")
		}
		if err := repo.UpdateToken(ctx, 1, "tok", models.PlatformGenius); err == nil {
			t.Error("UpdateToken should fail on a closed database")
		}
		if err := repo.DeletePreferences(ctx, 1); err == nil {
			t.Error("DeletePreferences should fail on a closed database")
		}
		if _, err := repo.GetPreferences(ctx, 1); err == nil {
			t.Error("GetPreferences should fail on a closed database")
		}
	})

	t.Run("CanceledContext", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := repo.GetOrCreate(canceled, 1); err == nil {
			t.Error("expected error for canceled context")
		}
		if _, err := repo.GetOrCreate(ctx, 1); err != nil {
			t.Errorf("connection should be released after a failed call: %v", err)
		}
	})
}
