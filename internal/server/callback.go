package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/geniust/internal/auth"
	"github.com/desertthunder/geniust/internal/shared"
)

const badRequestBody = "Bad request."

// CallbackHandler receives OAuth provider redirects and sends the browser back to the bot.
//
// Failures the chat is told about (provider errors, denied consent) still redirect;
// requests that can't be tied to a pending login get a 400.
type CallbackHandler struct {
	reconciler *auth.Reconciler
	publicURL  string
	botURL     string
	logger     *log.Logger
}

// NewCallbackHandler creates a [CallbackHandler]. publicURL is prefixed to the request URI
// to rebuild the redirect URI the provider saw.
func NewCallbackHandler(reconciler *auth.Reconciler, publicURL, botURL string, logger *log.Logger) *CallbackHandler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &CallbackHandler{
		reconciler: reconciler,
		publicURL:  strings.TrimSuffix(publicURL, "/"),
		botURL:     botURL,
		logger:     logger,
	}
}

func (h *CallbackHandler) Routes() []string { return []string{"GET /callback"} }

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Has("error") {
		h.logger.Info("login abandoned", "error", fmt.Errorf("%w: %q", shared.ErrProviderRedirected, q.Get("error")), "state", q.Get("state"))
		h.redirect(w, r)
		return
	}

	state, err := auth.ParseState(q.Get("state"))
	if err != nil {
		h.logger.Warn("rejected callback", "error", err)
		http.Error(w, badRequestBody, http.StatusBadRequest)
		return
	}

	code := q.Get("code")
	if code == "" {
		h.logger.Warn("rejected callback", "chat_id", state.ChatID, "error", shared.ErrMissingCode)
		http.Error(w, badRequestBody, http.StatusBadRequest)
		return
	}

	_, err = h.reconciler.CompleteAuth(r.Context(), state, code, h.publicURL+r.URL.RequestURI())
	switch {
	case err == nil:
		h.redirect(w, r)
	case errors.Is(err, shared.ErrProviderError):
		h.redirect(w, r)
	case errors.Is(err, shared.ErrStateMismatch), errors.Is(err, shared.ErrMissingCode):
		h.logger.Warn("rejected callback", "chat_id", state.ChatID, "error", err)
		http.Error(w, badRequestBody, http.StatusBadRequest)
	case errors.Is(err, shared.ErrServiceUnavailable):
		http.Error(w, "Login is not available.", http.StatusServiceUnavailable)
	default:
		h.logger.Error("callback failed", "chat_id", state.ChatID, "platform", state.Platform, "error", err)
		http.Error(w, "Internal server error.", http.StatusInternalServerError)
	}
}

func (h *CallbackHandler) redirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.botURL, http.StatusFound)
}
