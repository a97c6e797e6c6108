// Package auth reconciles OAuth provider redirects with the pending state issued to a chat.
//
// A chat starts a flow with [Reconciler.BeginAuth], which stores a fresh nonce in the chat's
// session and returns the provider URL carrying "<chat_id>_<platform>_<nonce>" as state.
// The provider redirects back with that state and a code; [Reconciler.CompleteAuth] checks the
// nonce, exchanges the code, persists the token and consumes the nonce so it can't be replayed.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/services"
	"github.com/desertthunder/geniust/internal/session"
	"github.com/desertthunder/geniust/internal/shared"
)

// TokenStore persists linked provider tokens.
type TokenStore interface {
	UpdateToken(ctx context.Context, chatID int64, token string, platform models.Platform) error
}

// ParseState splits a wire state into its parts.
// It fails with [shared.ErrMalformedState] unless there are exactly three "_" separated parts,
// an integer chat id, a known platform and a non-empty nonce.
func ParseState(state string) (models.PendingAuthState, error) {
	parts := strings.Split(state, "_")
	if len(parts) != 3 {
		return models.PendingAuthState{}, fmt.Errorf("%w: expected 3 parts, got %d", shared.ErrMalformedState, len(parts))
	}

	chatID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return models.PendingAuthState{}, fmt.Errorf("%w: chat id %q", shared.ErrMalformedState, parts[0])
	}

	platform, err := models.ParsePlatform(parts[1])
	if err != nil {
		return models.PendingAuthState{}, fmt.Errorf("%w: %v", shared.ErrMalformedState, err)
	}

	if parts[2] == "" {
		return models.PendingAuthState{}, fmt.Errorf("%w: empty nonce", shared.ErrMalformedState)
	}

	return models.PendingAuthState{ChatID: chatID, Platform: platform, Nonce: parts[2]}, nil
}

// Config holds a [Reconciler]'s collaborators.
type Config struct {
	Sessions  session.Store
	Tokens    TokenStore
	Notifier  services.Notifier
	Texts     shared.Texts
	Logger    *log.Logger
	Providers []services.Provider
}

// Reconciler issues and consumes pending OAuth state.
type Reconciler struct {
	sessions  session.Store
	tokens    TokenStore
	notifier  services.Notifier
	texts     shared.Texts
	logger    *log.Logger
	providers map[models.Platform]services.Provider

	mu    sync.Mutex
	chats map[int64]*chatLock
}

// NewReconciler creates a [Reconciler]. A nil notifier logs instead of sending.
func NewReconciler(cfg Config) *Reconciler {
	r := &Reconciler{
		sessions:  cfg.Sessions,
		tokens:    cfg.Tokens,
		notifier:  cfg.Notifier,
		texts:     cfg.Texts,
		logger:    cfg.Logger,
		providers: make(map[models.Platform]services.Provider, len(cfg.Providers)),
		chats:     make(map[int64]*chatLock),
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	if r.notifier == nil {
		r.notifier = services.NopNotifier{Logger: r.logger}
	}
	if r.texts == nil {
		r.texts = shared.DefaultTexts()
	}
	for _, p := range cfg.Providers {
		r.providers[p.Platform()] = p
	}
	return r
}

// Platforms lists the configured providers.
func (r *Reconciler) Platforms() []models.Platform {
	out := make([]models.Platform, 0, len(r.providers))
	for _, p := range []models.Platform{models.PlatformGenius, models.PlatformSpotify} {
		if _, ok := r.providers[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (r *Reconciler) provider(platform models.Platform) (services.Provider, error) {
	p, ok := r.providers[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s login is not configured", shared.ErrServiceUnavailable, platform)
	}
	return p, nil
}

// chatLock is a per-chat mutex shared by the flows currently holding or waiting for it.
type chatLock struct {
	sync.Mutex
	refs int
}

// lock serializes flows of one chat within this process. The entry is dropped once
// the last holder unlocks, so r.chats only holds chats with a flow in progress.
func (r *Reconciler) lock(chatID int64) func() {
	r.mu.Lock()
	l, ok := r.chats[chatID]
	if !ok {
		l = &chatLock{}
		r.chats[chatID] = l
	}
	l.refs++
	r.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.chats, chatID)
		}
		r.mu.Unlock()
	}
}

// BeginAuth stores a new nonce for chatID and returns the provider authorization URL.
// Any earlier pending nonce for the chat is replaced.
func (r *Reconciler) BeginAuth(ctx context.Context, chatID int64, platform models.Platform) (string, error) {
	p, err := r.provider(platform)
	if err != nil {
		return "", err
	}

	unlock := r.lock(chatID)
	defer unlock()

	sess, err := r.sessions.Get(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}

	state := models.PendingAuthState{ChatID: chatID, Platform: platform, Nonce: shared.GenerateNonce()}
	sess.State = state.Nonce
	sess.StatePlatform = platform
	if err := r.sessions.Set(ctx, chatID, sess); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	r.logger.Debug("issued oauth state", "chat_id", chatID, "platform", platform)
	return p.AuthURL(state.String()), nil
}

// CompleteAuth finishes a flow started by [Reconciler.BeginAuth] and returns the stored token.
//
// Errors:
//   - [shared.ErrMissingCode] when code is empty
//   - [shared.ErrStateMismatch] when the chat has no pending nonce or a different one
//   - [shared.ErrProviderError] when the code exchange fails; the chat is told, the nonce stays valid
//
// The nonce is consumed in the session store before the exchange, so concurrent callbacks
// with the same state, even on different servers, exchange the code at most once.
// If the exchange or the token write fails the nonce is put back.
// On success the token is persisted once, copied into the session and the chat receives a confirmation.
func (r *Reconciler) CompleteAuth(ctx context.Context, state models.PendingAuthState, code, callbackURL string) (string, error) {
	if code == "" {
		return "", shared.ErrMissingCode
	}

	p, err := r.provider(state.Platform)
	if err != nil {
		return "", err
	}

	unlock := r.lock(state.ChatID)
	defer unlock()

	sess, err := r.sessions.ConsumeState(ctx, state)
	if err != nil {
		if errors.Is(err, shared.ErrStateMismatch) {
			return "", err
		}
		return "", fmt.Errorf("failed to load session: %w", err)
	}

	lang := sess.Language()
	token, err := p.Exchange(ctx, code, callbackURL)
	if err != nil {
		r.logger.Warn("token exchange failed", "chat_id", state.ChatID, "platform", state.Platform, "error", err)
		r.restore(ctx, state)
		r.notify(ctx, state.ChatID, r.texts.Get(lang, shared.TextLoginFailed))
		return "", err
	}

	if err := r.tokens.UpdateToken(ctx, state.ChatID, token, state.Platform); err != nil {
		r.restore(ctx, state)
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	if sess, err = r.sessions.Get(ctx, state.ChatID); err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	sess.SetToken(state.Platform, token)
	if err := r.sessions.Set(ctx, state.ChatID, sess); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	r.logger.Info("linked account", "chat_id", state.ChatID, "platform", state.Platform)
	r.notify(ctx, state.ChatID, r.texts.Get(lang, shared.TextLoginSuccessful, "platform", displayName(state.Platform)))
	return token, nil
}

// restore puts a consumed nonce back unless the chat has started another login since.
func (r *Reconciler) restore(ctx context.Context, state models.PendingAuthState) {
	sess, err := r.sessions.Get(ctx, state.ChatID)
	if err == nil && sess.State == "" {
		sess.State = state.Nonce
		sess.StatePlatform = state.Platform
		err = r.sessions.Set(ctx, state.ChatID, sess)
	}
	if err != nil {
		r.logger.Warn("failed to restore oauth state", "chat_id", state.ChatID, "error", err)
	}
}

func (r *Reconciler) notify(ctx context.Context, chatID int64, text string) {
	if err := r.notifier.Notify(ctx, chatID, text); err != nil {
		r.logger.Warn("failed to notify chat", "chat_id", chatID, "error", err)
	}
}

func displayName(p models.Platform) string {
	switch p {
	case models.PlatformGenius:
		return "Genius"
	case models.PlatformSpotify:
		return "Spotify"
	default:
		return string(p)
	}
}
