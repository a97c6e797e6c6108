package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/geniust/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if host := cmd.String("host"); host != "" {
		r.config.Server.Host = host
	}
	if cmd.IsSet("port") {
		r.config.Server.Port = int(cmd.Int("port"))
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	engine, err := r.engine()
	if err != nil {
		return err
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
	if platforms := reconciler.Platforms(); len(platforms) == 0 {
		r.logger.Warn("no oauth credentials configured, /callback will reject logins")
	} else {
		r.logger.Info("oauth providers ready", "platforms", platforms)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(r.config, engine, reconciler, r.logger).Serve(ctx)
}
