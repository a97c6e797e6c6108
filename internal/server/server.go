// package server exposes the recommendation API and the OAuth callback over HTTP
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/geniust/internal/auth"
	"github.com/desertthunder/geniust/internal/recommender"
	"github.com/desertthunder/geniust/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows the mux patterns it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the "METHOD /path" patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

const shutdownTimeout = 5 * time.Second

// Server is the bot's public HTTP endpoint.
type Server struct {
	addr   string
	router *BasicRouter
	logger *log.Logger
}

// New wires every route and the middleware stack for cfg.
// A nil reconciler leaves /callback unregistered.
func New(cfg *shared.Config, engine *recommender.Engine, reconciler *auth.Reconciler, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	clients := NewClientResolver(cfg.Server.TrustedProxies)
	router := NewBasicRouter()
	router.Use(
		Logger(logger, clients),
		CORS(cfg.Server.AllowedOrigins),
		RateLimit(NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst), clients),
	)

	router.Handler(NewGenresHandler(engine))
	router.Handler(NewSearchHandler(engine))
	router.Handler(NewRecommendationsHandler(engine, logger))
	router.Handler(CronHandler{})
	if reconciler != nil {
		router.Handler(NewCallbackHandler(reconciler, cfg.Server.PublicURL, cfg.Telegram.BotURL(), logger))
	}

	return &Server{addr: cfg.Server.Addr(), router: router, logger: logger}
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler { return s.router }

// Serve listens on the configured address until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err, ok := <-serverErrors:
		if ok {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
