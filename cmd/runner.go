package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/geniust/internal/auth"
	"github.com/desertthunder/geniust/internal/catalog"
	"github.com/desertthunder/geniust/internal/recommender"
	"github.com/desertthunder/geniust/internal/repositories"
	"github.com/desertthunder/geniust/internal/services"
	"github.com/desertthunder/geniust/internal/session"
	"github.com/desertthunder/geniust/internal/shared"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

const providerTimeout = 15 * time.Second

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	httpClient *http.Client
	// OAuth code exchanges are not retried once sent.
	exchangeClient *http.Client
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Config is loaded from the --config path (or the defaults) before each command runs.
// A non-nil HTTPClient is used for every outbound request, code exchanges included.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	HTTPClient *http.Client
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	exchangeClient := opts.HTTPClient
	if opts.HTTPClient == nil {
		opts.HTTPClient = services.NewHTTPClient(opts.Logger, providerTimeout)
		exchangeClient = services.NewExchangeClient(opts.Logger, providerTimeout)
	}

	return &Runner{
		config:         opts.Config,
		configPath:     opts.ConfigPath,
		logger:         opts.Logger,
		output:         opts.Output,
		httpClient:     opts.HTTPClient,
		exchangeClient: exchangeClient,
	}
}

// App returns the root command.
func (r *Runner) App() *cli.Command {
	return &cli.Command{
		Name:    "geniust",
		Usage:   "Song recommendations and account linking for the Genius lyrics bot",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("GENIUST_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, catalogCommand, authCommand, userCommand, shuffleCommand,
	} {
		commands = append(commands, fn(r))
	}
	return commands
}

// before loads the configuration once per invocation.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	if cmd.IsSet("config") || r.configPath == "" {
		r.configPath = cmd.String("config")
	}
	if r.config != nil {
		return ctx, nil
	}

	if _, err := os.Stat(r.configPath); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		r.config = shared.DefaultConfig()
		return ctx, nil
	}

	config, err := shared.LoadConfig(r.configPath)
	if err != nil {
		return ctx, err
	}
	r.config = config
	return ctx, nil
}

// SetLogger replaces the runner's logger, e.g. with a file logger while a TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) engine() (*recommender.Engine, error) {
	c, err := catalog.Open(r.config.Catalog.Path)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("catalog loaded", "songs", c.Len(), "path", r.config.Catalog.Path)
	return recommender.New(c), nil
}

// openStore opens the configured database and migrates it.
func (r *Runner) openStore() (*repositories.UserRepository, *sql.DB, error) {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := shared.NewMigrator(db, r.logger).Up(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return repositories.NewUserRepository(db), db, nil
}

// providers returns the OAuth providers with configured credentials.
func (r *Runner) providers() []services.Provider {
	var providers []services.Provider
	creds := r.config.Credentials

	if creds.Genius.Configured() {
		genius, err := services.NewGeniusAuth(creds.Genius, services.WithGeniusHTTPClient(r.exchangeClient))
		if err != nil {
			r.logger.Warn("genius login disabled", "error", err)
		} else {
			providers = append(providers, genius)
		}
	}

	if creds.Spotify.Configured() {
		spotify, err := services.NewSpotifyAuth(creds.Spotify, r.exchangeClient)
		if err != nil {
			r.logger.Warn("spotify login disabled", "error", err)
		} else {
			providers = append(providers, spotify)
		}
	}

	return providers
}

func (r *Runner) notifier() services.Notifier {
	if r.config.Telegram.Token == "" {
		r.logger.Warn("telegram token not set, chat notifications are only logged")
		return services.NopNotifier{Logger: r.logger}
	}
	n, err := services.NewTelegramNotifier(r.config.Telegram.Token, "", r.httpClient, r.logger)
	if err != nil {
		r.logger.Warn("telegram unavailable, chat notifications are only logged", "error", err)
		return services.NopNotifier{Logger: r.logger}
	}
	return n
}

func (r *Runner) reconciler(ctx context.Context, tokens auth.TokenStore) (*auth.Reconciler, error) {
	sessions, err := session.New(ctx, r.config.Session, r.logger)
	if err != nil {
		return nil, err
	}
	texts, err := shared.LoadTexts()
	if err != nil {
		return nil, err
	}
	return auth.NewReconciler(auth.Config{
		Sessions:  sessions,
		Tokens:    tokens,
		Notifier:  r.notifier(),
		Texts:     texts,
		Logger:    shared.WithLogger(r.logger, "component", "auth"),
		Providers: r.providers(),
	}), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	return r.writePlain("\n"+format+"\n", args...)
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
