package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthURL issues a login URL for --chat, the same one the bot sends when a user taps "log in".
//
// The pending state lives in the configured session store, so the server must share it
// (redis) for the callback to succeed.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	platform, err := models.ParsePlatform(cmd.String("platform"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	if r.config.Session.Backend != "redis" {
		r.logger.Warn("session backend is not shared with the server, the callback will reject this state", "backend", r.config.Session.Backend)
	}

	store, db, err := r.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	reconciler, err := r.reconciler(ctx, store)
	if err != nil {
		return err
	}

	chatID := cmd.Int64("chat")
	url, err := reconciler.BeginAuth(ctx, chatID, platform)
	if err != nil {
		return err
	}

	r.writePlain("%s\n", url)
	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
		}
	}
	return nil
}
