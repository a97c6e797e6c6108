// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func chatFlag() *cli.Int64Flag {
	return &cli.Int64Flag{
		Name:     "chat",
		Usage:    "Telegram chat id",
		Required: true,
	}
}

// serveCommand starts the HTTP server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the recommendation API and OAuth callback",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Override the listen host",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Override the listen port",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles configuration & database setup
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write the example configuration file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "status",
				Usage:  "List migrations and whether they are applied",
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the latest migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// catalogCommand queries the song catalog without the HTTP server
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Query the song catalog",
		Commands: []*cli.Command{
			{
				Name:  "genres",
				Usage: "List genres, optionally for an age",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "age",
						Usage: "Listener age",
					},
				},
				Action: r.CatalogGenres,
			},
			{
				Name:  "search",
				Usage: "Search catalog artists",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Action: r.CatalogSearch,
			},
			{
				Name:    "recommend",
				Aliases: []string{"rec"},
				Usage:   "Shuffle songs for genres and artists",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "genres",
						Aliases:  []string{"g"},
						Usage:    "Comma separated genres",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "artists",
						Aliases: []string{"a"},
						Usage:   "Comma separated artists to put first",
					},
					&cli.StringFlag{
						Name:  "song-type",
						Usage: "any, preview, full or preview,full",
						Value: "any",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "text, markdown, csv or json",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of songs, 0 for all",
					},
				},
				Action: r.CatalogRecommend,
			},
		},
	}
}

// authCommand handles account linking
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Link Genius or Spotify accounts",
		Commands: []*cli.Command{
			{
				Name:  "url",
				Usage: "Issue a login URL for a chat",
				Flags: []cli.Flag{
					chatFlag(),
					&cli.StringFlag{
						Name:  "platform",
						Usage: "genius or spotify",
						Value: "genius",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the URL in a browser",
					},
				},
				Action: r.AuthURL,
			},
		},
	}
}

// userCommand inspects & edits stored user settings
func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Inspect and edit stored user settings",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show a chat's settings and preferences",
				Flags: []cli.Flag{
					chatFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.UserShow,
			},
			{
				Name:   "reset",
				Usage:  "Clear a chat's genre and artist preferences",
				Flags:  []cli.Flag{chatFlag()},
				Action: r.UserReset,
			},
			{
				Name:  "set",
				Usage: "Update one setting (include_annotations, lyrics_lang, bot_lang)",
				Flags: []cli.Flag{
					chatFlag(),
					&cli.StringFlag{
						Name:     "column",
						Usage:    "Setting to update",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "value",
						Usage:    "New value",
						Required: true,
					},
				},
				Action: r.UserSet,
			},
		},
	}
}

// shuffleCommand returns the interactive recommendation flow
func shuffleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "shuffle",
		Aliases: []string{"tui"},
		Usage:   "Pick genres and artists interactively and browse recommendations",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "chat",
				Usage: "Load and save preferences for this chat",
			},
			&cli.IntFlag{
				Name:  "age",
				Usage: "Listener age",
			},
			&cli.StringFlag{
				Name:  "lang",
				Usage: "Bot language (en or fa)",
				Value: "en",
			},
			&cli.StringFlag{
				Name:  "song-type",
				Usage: "any, preview, full or preview,full",
				Value: "any",
			},
		},
		Action: r.Shuffle,
	}
}
