package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/shared"
	"github.com/urfave/cli/v3"
)

type userView struct {
	ChatID             int64               `json:"chat_id"`
	IncludeAnnotations bool                `json:"include_annotations"`
	LyricsLang         string              `json:"lyrics_lang"`
	BotLang            string              `json:"bot_lang"`
	Genius             bool                `json:"genius_linked"`
	Spotify            bool                `json:"spotify_linked"`
	Preferences        *models.Preferences `json:"preferences,omitempty"`
}

// UserShow prints a chat's settings, linked accounts and saved preferences.
func (r *Runner) UserShow(ctx context.Context, cmd *cli.Command) error {
	store, db, err := r.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	chatID := cmd.Int64("chat")
	user, err := store.Get(ctx, chatID)
	if err != nil {
		return err
	}

	prefs, err := store.GetPreferences(ctx, chatID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	view := userView{
		ChatID:             user.ChatID,
		IncludeAnnotations: user.IncludeAnnotations,
		LyricsLang:         user.LyricsLang,
		BotLang:            user.BotLang,
		Genius:             user.Token(models.PlatformGenius) != "",
		Spotify:            user.Token(models.PlatformSpotify) != "",
		Preferences:        prefs,
	}

	if cmd.Bool("json") {
		return r.writeJSON(view, true)
	}

	r.writePlainHeader(fmt.Sprintf("Chat %d", view.ChatID))
	r.writePlain("include_annotations: %t\n", view.IncludeAnnotations)
	r.writePlain("lyrics_lang:         %s\n", view.LyricsLang)
	r.writePlain("bot_lang:            %s\n", view.BotLang)
	r.writePlain("genius:              %s\n", linked(view.Genius))
	r.writePlain("spotify:             %s\n", linked(view.Spotify))
	if prefs != nil {
		r.writePlain("genres:              %s\n", strings.Join(prefs.Genres, ", "))
		r.writePlain("artists:             %s\n", strings.Join(prefs.Artists, ", "))
	}
	return nil
}

// UserReset clears saved preferences; settings and tokens stay.
func (r *Runner) UserReset(ctx context.Context, cmd *cli.Command) error {
	store, db, err := r.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	chatID := cmd.Int64("chat")
	user, err := store.GetOrCreate(ctx, chatID)
	if err != nil {
		return err
	}
	if err := store.DeletePreferences(ctx, chatID); err != nil {
		return err
	}

	r.logger.Info("preferences reset", "chat_id", chatID)
	return r.writePlain("%s\n", shared.DefaultTexts().Get(user.BotLang, shared.TextPreferencesReset))
}

// UserSet updates a single setting column.
func (r *Runner) UserSet(ctx context.Context, cmd *cli.Command) error {
	column := models.Column(cmd.String("column"))
	value, err := parseColumnValue(column, cmd.String("value"))
	if err != nil {
		return err
	}

	store, db, err := r.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	chatID := cmd.Int64("chat")
	if err := store.UpdateColumn(ctx, chatID, column, value); err != nil {
		return err
	}
	return r.writePlain("✓ %s = %v\n", column, value)
}

// parseColumnValue converts raw into the type column stores.
func parseColumnValue(column models.Column, raw string) (any, error) {
	if column != models.ColumnIncludeAnnotations {
		return raw, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s expects true or false, got %q", shared.ErrInvalidArgument, column, raw)
	}
	return b, nil
}

func linked(ok bool) string {
	if ok {
		return "linked"
	}
	return "not linked"
}
