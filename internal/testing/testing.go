// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/shared"
)

// TokenCall records one UpdateToken invocation.
type TokenCall struct {
	ChatID   int64
	Token    string
	Platform models.Platform
}

// MockPreferenceStore is an in-memory test double for [repositories.PreferenceStore].
// Setting Err makes every method fail with it.
type MockPreferenceStore struct {
	mu          sync.Mutex
	Users       map[int64]*models.UserRecord
	Preferences map[int64]models.Preferences
	TokenCalls  []TokenCall
	Err         error
}

func NewMockPreferenceStore() *MockPreferenceStore {
	return &MockPreferenceStore{
		Users:       make(map[int64]*models.UserRecord),
		Preferences: make(map[int64]models.Preferences),
	}
}

func (m *MockPreferenceStore) user(chatID int64) *models.UserRecord {
	u, ok := m.Users[chatID]
	if !ok {
		u = models.NewUserRecord(chatID)
		m.Users[chatID] = u
	}
	return u
}

func (m *MockPreferenceStore) GetOrCreate(_ context.Context, chatID int64) (*models.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u := *m.user(chatID)
	return &u, nil
}

func (m *MockPreferenceStore) Get(_ context.Context, chatID int64) (*models.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.Users[chatID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (m *MockPreferenceStore) UpdateColumn(_ context.Context, chatID int64, column models.Column, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	u := m.user(chatID)
	switch column {
	case models.ColumnIncludeAnnotations:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %T", shared.ErrInvalidArgument, value)
		}
		u.IncludeAnnotations = b
	case models.ColumnLyricsLang, models.ColumnBotLang:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %T", shared.ErrInvalidArgument, value)
		}
		if column == models.ColumnBotLang {
			u.BotLang = s
		} else {
			u.LyricsLang = s
		}
	default:
		return fmt.Errorf("%w: %s", shared.ErrInvalidArgument, column)
	}
	return nil
}

func (m *MockPreferenceStore) UpdateToken(_ context.Context, chatID int64, token string, platform models.Platform) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.TokenCalls = append(m.TokenCalls, TokenCall{ChatID: chatID, Token: token, Platform: platform})
	u := m.user(chatID)
	switch platform {
	case models.PlatformGenius:
		u.GeniusToken = &token
	case models.PlatformSpotify:
		u.SpotifyToken = &token
	}
	return nil
}

func (m *MockPreferenceStore) UpdatePreferences(_ context.Context, chatID int64, prefs models.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.user(chatID)
	m.Preferences[chatID] = models.Preferences{Genres: slices.Clone(prefs.Genres), Artists: slices.Clone(prefs.Artists)}
	return nil
}

func (m *MockPreferenceStore) GetPreferences(_ context.Context, chatID int64) (*models.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Preferences[chatID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (m *MockPreferenceStore) DeletePreferences(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.Preferences, chatID)
	return nil
}

// Calls returns a copy of the recorded UpdateToken calls.
func (m *MockPreferenceStore) Calls() []TokenCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.TokenCalls)
}

// MockProvider is a test double for [services.Provider].
// Exchange succeeds only for ValidCode and returns Token.
type MockProvider struct {
	mu        sync.Mutex
	Name      models.Platform
	ValidCode string
	Token     string
	Exchanges []string
	Callbacks []string
}

func NewMockProvider(platform models.Platform) *MockProvider {
	return &MockProvider{Name: platform, ValidCode: "some_code", Token: "test_token"}
}

func (m *MockProvider) Platform() models.Platform { return m.Name }

func (m *MockProvider) AuthURL(state string) string {
	return "https://provider.test/authorize?state=" + state
}

func (m *MockProvider) Exchange(_ context.Context, code, callbackURL string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Exchanges = append(m.Exchanges, code)
	m.Callbacks = append(m.Callbacks, callbackURL)
	if code != m.ValidCode {
		return "", fmt.Errorf("%w: invalid code %q", shared.ErrProviderError, code)
	}
	return m.Token, nil
}

// ExchangeCount returns how many exchanges were attempted.
func (m *MockProvider) ExchangeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Exchanges)
}

// Message is a chat message captured by [MockNotifier].
type Message struct {
	ChatID int64
	Text   string
}

// MockNotifier records messages instead of sending them.
type MockNotifier struct {
	mu       sync.Mutex
	Messages []Message
	Err      error
}

func (m *MockNotifier) Notify(_ context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, Message{ChatID: chatID, Text: text})
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *MockNotifier) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.Messages)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
