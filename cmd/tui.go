package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/recommender"
	"github.com/desertthunder/geniust/internal/shared"
	"github.com/desertthunder/geniust/internal/ui"
	"github.com/urfave/cli/v3"
)

// Shuffle launches the interactive recommendation flow.
//
// With --chat, saved preferences skip the selection steps and new ones are saved.
func (r *Runner) Shuffle(ctx context.Context, cmd *cli.Command) error {
	model, closeFn, err := r.shuffleModel(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	fileLogger, err := shared.NewFileLogger("./tmp/geniust-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return model.Err()
}

func (r *Runner) shuffleModel(ctx context.Context, cmd *cli.Command) (*ui.Model, func(), error) {
	engine, err := r.engine()
	if err != nil {
		return nil, nil, err
	}

	songType, err := recommender.ParseSongType(cmd.String("song-type"))
	if err != nil {
		return nil, nil, err
	}

	opts := ui.Options{BotLang: cmd.String("lang"), SongType: songType}
	if cmd.IsSet("age") {
		age := int(cmd.Int("age"))
		opts.Age = &age
	}

	closeFn := func() {}
	if cmd.IsSet("chat") {
		store, db, err := r.openStore()
		if err != nil {
			return nil, nil, err
		}
		closeFn = func() { db.Close() }

		chatID := cmd.Int64("chat")
		user, err := store.GetOrCreate(ctx, chatID)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		if !cmd.IsSet("lang") {
			opts.BotLang = user.BotLang
		}

		saved, err := store.GetPreferences(ctx, chatID)
		switch {
		case err == nil:
			opts.Saved = saved
		case !errors.Is(err, shared.ErrNotFound):
			closeFn()
			return nil, nil, err
		}

		opts.Save = func(p models.Preferences) error {
			return store.UpdatePreferences(ctx, chatID, p)
		}
	}

	model, err := ui.NewModel(engine, opts)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return model, closeFn, nil
}
