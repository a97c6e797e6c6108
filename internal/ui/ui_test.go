package ui

import (
	"errors"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/geniust/internal/catalog"
	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/recommender"
	"github.com/desertthunder/geniust/internal/shared"
)

var (
	enter  = tea.KeyMsg{Type: tea.KeyEnter}
	esc    = tea.KeyMsg{Type: tea.KeyEsc}
	toggle = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}
	down   = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	quit   = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
)

func newEngine(t *testing.T) *recommender.Engine {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	return recommender.New(c, recommender.WithSeed(1))
}

// send applies msg and runs any returned command once, feeding its message back.
func send(t *testing.T, m *Model, msg tea.Msg) {
	t.Helper()
	_, cmd := m.Update(msg)
	run(t, m, cmd)
}

func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch out := cmd().(type) {
	case recommendedMsg, savedMsg:
		_, next := m.Update(out)
		run(t, m, next)
	case tea.BatchMsg:
		for _, c := range out {
			run(t, m, c)
		}
	}
}

func TestModelFlow(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		var saved []models.Preferences
		m, err := NewModel(newEngine(t), Options{
			Save: func(p models.Preferences) error {
				saved = append(saved, p)
				return nil
			},
		})
		if err != nil {
			t.Fatal(err)
		}
		if m.Stage() != recommender.StageWelcome {
			t.Fatalf("stage = %v, want welcome", m.Stage())
		}
		if !strings.Contains(m.View(), "Pick a few genres") {
			t.Errorf("welcome view = %q", m.View())
		}

		send(t, m, enter)
		if m.Stage() != recommender.StageSelectGenres {
			t.Fatalf("stage = %v, want select_genres", m.Stage())
		}

		send(t, m, enter)
		if m.Stage() != recommender.StageSelectGenres {
			t.Fatal("enter without genres should not advance")
		}
		if !strings.Contains(m.View(), "Pick at least one genre") {
			t.Error("expected a notice")
		}

		send(t, m, toggle)
		if !slices.Equal(m.genres, []string{"classical"}) {
			t.Fatalf("genres = %v", m.genres)
		}
		send(t, m, down)
		send(t, m, toggle)
		if !slices.Equal(m.genres, []string{"classical", "country"}) {
			t.Fatalf("genres = %v", m.genres)
		}

		send(t, m, enter)
		if m.Stage() != recommender.StageSelectArtists {
			t.Fatalf("stage = %v, want select_artists", m.Stage())
		}

		send(t, m, enter)
		if m.Stage() != recommender.StageDisplay {
			t.Fatalf("stage = %v, want display", m.Stage())
		}
		if len(m.Tracks()) == 0 {
			t.Fatal("expected tracks")
		}
		for _, s := range m.Tracks() {
			if !s.HasGenre("classical") && !s.HasGenre("country") {
				t.Errorf("unexpected track %+v", s)
			}
		}
		if len(saved) != 1 || !slices.Equal(saved[0].Genres, []string{"classical", "country"}) {
			t.Errorf("saved = %+v", saved)
		}
		if !strings.Contains(m.View(), "Preferences saved") {
			t.Error("expected save confirmation")
		}
	})

	t.Run("back and restart", func(t *testing.T) {
		m, err := NewModel(newEngine(t), Options{})
		if err != nil {
			t.Fatal(err)
		}
		send(t, m, enter)
		send(t, m, toggle)
		send(t, m, enter)
		send(t, m, esc)
		if m.Stage() != recommender.StageSelectGenres {
			t.Fatalf("stage = %v, want select_genres", m.Stage())
		}
		send(t, m, enter)
		send(t, m, enter)
		if m.Stage() != recommender.StageDisplay {
			t.Fatalf("stage = %v, want display", m.Stage())
		}

		send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
		if m.Stage() != recommender.StageSelectGenres || len(m.genres) != 0 || len(m.Tracks()) != 0 {
			t.Errorf("restart left stage %v genres %v", m.Stage(), m.genres)
		}
	})

	t.Run("age filters recommended songs", func(t *testing.T) {
		age := 15
		m, err := NewModel(newEngine(t), Options{
			Age:   &age,
			Saved: &models.Preferences{Genres: []string{"rap"}},
		})
		if err != nil {
			t.Fatal(err)
		}
		run(t, m, m.Init())
		if m.Stage() != recommender.StageDisplay {
			t.Fatalf("stage = %v, want display", m.Stage())
		}

		var ids []int
		for _, s := range m.Tracks() {
			ids = append(ids, s.ID)
		}
		slices.Sort(ids)
		if !slices.Equal(ids, []int{1, 2, 6}) {
			t.Errorf("tracks = %v, want the rap songs open to 15 year olds", ids)
		}
	})

	t.Run("age with no suitable songs ends", func(t *testing.T) {
		age := 10
		m, err := NewModel(newEngine(t), Options{
			Age:   &age,
			Saved: &models.Preferences{Genres: []string{"rap"}},
		})
		if err != nil {
			t.Fatal(err)
		}
		run(t, m, m.Init())
		if m.Stage() != recommender.StageEnd {
			t.Fatalf("stage = %v, want end", m.Stage())
		}
	})

	t.Run("saved preferences skip selection", func(t *testing.T) {
		m, err := NewModel(newEngine(t), Options{
			Saved: &models.Preferences{Genres: []string{"rap"}, Artists: []string{"Nas"}},
		})
		if err != nil {
			t.Fatal(err)
		}
		if m.Stage() != recommender.StageProcessPreferences {
			t.Fatalf("stage = %v, want process_preferences", m.Stage())
		}
		run(t, m, m.Init())
		if m.Stage() != recommender.StageDisplay {
			t.Fatalf("stage = %v, want display", m.Stage())
		}
		if got := m.Tracks()[0].Artist; got != "Nas" {
			t.Errorf("first artist = %q, want Nas", got)
		}
	})

	t.Run("invalid preferences end", func(t *testing.T) {
		m, err := NewModel(newEngine(t), Options{})
		if err != nil {
			t.Fatal(err)
		}
		run(t, m, m.recommend(models.Preferences{Genres: []string{"unknown"}}))
		if m.Stage() != recommender.StageEnd {
			t.Fatalf("stage = %v, want end", m.Stage())
		}
		if !errors.Is(m.Err(), shared.ErrInvalidInput) {
			t.Errorf("Err() = %v, want ErrInvalidInput", m.Err())
		}
		if !strings.Contains(m.View(), "Error") {
			t.Errorf("end view = %q", m.View())
		}
	})

	t.Run("no results end", func(t *testing.T) {
		c, err := catalog.New([]string{"pop"}, nil, []models.Song{
			{ID: 1, Title: "Silent", Artist: "Nobody", Genres: []string{"pop"}},
		})
		if err != nil {
			t.Fatal(err)
		}
		m, err := NewModel(recommender.New(c), Options{
			Saved:    &models.Preferences{Genres: []string{"pop"}},
			SongType: models.SongTypeFull,
		})
		if err != nil {
			t.Fatal(err)
		}
		run(t, m, m.Init())
		if m.Stage() != recommender.StageEnd {
			t.Fatalf("stage = %v, want end", m.Stage())
		}
		if !strings.Contains(m.View(), "Couldn't find any songs") {
			t.Errorf("end view = %q", m.View())
		}
	})

	t.Run("save failure is shown", func(t *testing.T) {
		m, err := NewModel(newEngine(t), Options{
			Saved: &models.Preferences{Genres: []string{"pop"}},
			Save:  func(models.Preferences) error { return errors.New("database is locked") },
		})
		if err != nil {
			t.Fatal(err)
		}
		run(t, m, m.Init())
		if !strings.Contains(m.View(), "database is locked") {
			t.Errorf("view = %q", m.View())
		}
	})

	t.Run("quit", func(t *testing.T) {
		m, err := NewModel(newEngine(t), Options{})
		if err != nil {
			t.Fatal(err)
		}
		_, cmd := m.Update(quit)
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestNewModel(t *testing.T) {
	t.Run("farsi offers persian", func(t *testing.T) {
		m, err := NewModel(newEngine(t), Options{BotLang: "fa"})
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Contains(m.genreOptions, recommender.PersianGenre) {
			t.Errorf("options = %v", m.genreOptions)
		}
		if !strings.Contains(m.View(), "ژانر") {
			t.Error("expected farsi welcome text")
		}
	})

	t.Run("invalid age", func(t *testing.T) {
		age := -1
		if _, err := NewModel(newEngine(t), Options{Age: &age}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("window size", func(t *testing.T) {
		m, err := NewModel(newEngine(t), Options{})
		if err != nil {
			t.Fatal(err)
		}
		m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
		if m.genreList.Width() != 116 || m.trackList.Height() != 32 {
			t.Errorf("list size = %dx%d", m.genreList.Width(), m.trackList.Height())
		}
	})
}
