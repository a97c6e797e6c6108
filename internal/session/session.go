// Package session keeps per-chat conversation state shared by the bot flow and the HTTP handlers.
package session

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/shared"
)

// Store reads and writes sessions keyed by chat id.
//
// Get never returns a nil session: a chat without state gets an empty one.
// Implementations copy on the way in and out, so callers must Set to persist changes.
type Store interface {
	Get(ctx context.Context, chatID int64) (*models.Session, error)
	Set(ctx context.Context, chatID int64, s *models.Session) error
	Clear(ctx context.Context, chatID int64) error

	// ConsumeState clears the chat's pending OAuth nonce if it matches want and returns
	// the session after clearing. The check and the clear are one atomic step, so
	// a nonce is consumed at most once across every process sharing the store.
	// It fails with [shared.ErrStateMismatch] when no matching nonce is pending.
	ConsumeState(ctx context.Context, want models.PendingAuthState) (*models.Session, error)
}

// pendingMatches reports whether s holds the nonce in want. A session that recorded no
// platform accepts any platform.
func pendingMatches(s *models.Session, want models.PendingAuthState) error {
	if s.State == "" || s.State != want.Nonce {
		return fmt.Errorf("%w: chat %d", shared.ErrStateMismatch, want.ChatID)
	}
	if s.StatePlatform != "" && s.StatePlatform != want.Platform {
		return fmt.Errorf("%w: chat %d started a %s login", shared.ErrStateMismatch, want.ChatID, s.StatePlatform)
	}
	return nil
}

// MemoryStore is an in-process [Store].
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*models.Session
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]*models.Session)}
}

func (m *MemoryStore) Get(_ context.Context, chatID int64) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[chatID].Clone(), nil
}

func (m *MemoryStore) Set(_ context.Context, chatID int64, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[chatID] = s.Clone()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
	return nil
}

func (m *MemoryStore) ConsumeState(_ context.Context, want models.PendingAuthState) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.sessions[want.ChatID].Clone()
	if err := pendingMatches(s, want); err != nil {
		return nil, err
	}
	s.ClearState()
	m.sessions[want.ChatID] = s
	return s.Clone(), nil
}

// Len returns the number of chats with state.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// New builds the [Store] selected by cfg.Backend.
func New(ctx context.Context, cfg shared.SessionConfig, logger *log.Logger) (Store, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	switch cfg.Backend {
	case "", "memory":
		logger.Debug("using in-memory session store")
		return NewMemoryStore(), nil
	case "redis":
		logger.Debug("using redis session store", "addr", cfg.RedisAddr)
		return DialRedis(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown session backend %q", shared.ErrInvalidConfig, cfg.Backend)
	}
}
