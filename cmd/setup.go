package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/geniust/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "driver", r.config.Database.Driver)

	_, db, err := r.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("setup complete", "driver", r.config.Database.Driver)
	return r.writePlain("✓ Database ready\n")
}

// SetupConfig writes the example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		return fmt.Errorf("%w: --config", shared.ErrMissingArgument)
	}

	if _, err := os.Stat(path); err == nil {
		if !cmd.Bool("force") {
			return fmt.Errorf("%w: %s already exists, pass --force to overwrite", shared.ErrInvalidArgument, path)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove existing config: %w", err)
		}
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	return r.writePlain("✓ Wrote %s\n", path)
}

// SetupStatus prints every migration and whether it has been applied.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	statuses, err := shared.NewMigrator(db, r.logger).Status()
	if err != nil {
		return err
	}

	r.writePlainHeader("Migrations")
	for _, s := range statuses {
		mark := " "
		if s.Applied {
			mark = "✓"
		}
		r.writePlain("[%s] %04d %s\n", mark, s.Version, s.Name)
	}
	return nil
}

// SetupRollback reverts the most recent migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}
	return r.writePlain("✓ Rolled back latest migration\n")
}
