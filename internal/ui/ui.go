package ui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/recommender"
	"github.com/desertthunder/geniust/internal/shared"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// Options configure a shuffle session.
type Options struct {
	Age      *int                // narrows the offered genres and the songs; nil offers all
	BotLang  string              // "fa" adds the persian genre
	SongType models.SongType     // media filter applied to recommendations
	Saved    *models.Preferences // skips selection when it has genres
	Texts    shared.Texts
	// Save persists the preferences once they are processed. Optional.
	Save func(models.Preferences) error
}

// Model is the bubbletea model walking through [recommender.Stage]s.
type Model struct {
	engine *recommender.Engine
	opts   Options
	stage  recommender.Stage

	genreOptions []string
	genres       []string
	artists      []string
	prefs        models.Preferences
	tracks       []models.Song

	genreList  list.Model
	artistList list.Model
	trackList  list.Model

	width   int
	height  int
	notice  string
	saveErr error
	err     error
	help    help.Model
	keys    keyMap
}

// NewModel creates the TUI model. It fails when opts.Age is invalid.
func NewModel(engine *recommender.Engine, opts Options) (*Model, error) {
	if opts.BotLang == "" {
		opts.BotLang = models.DefaultBotLang
	}
	if opts.SongType == "" {
		opts.SongType = models.SongTypeAny
	}
	if opts.Texts == nil {
		opts.Texts = shared.DefaultTexts()
	}

	genreOptions, err := engine.GenreOptions(opts.Age, opts.BotLang)
	if err != nil {
		return nil, err
	}

	m := &Model{
		engine:       engine,
		opts:         opts,
		stage:        recommender.StartStage(opts.Saved),
		genreOptions: genreOptions,
		width:        defaultWidth,
		height:       defaultHeight,
		help:         help.New(),
		keys:         newKeyMap(),
	}
	m.genreList = newList("Genres", choices(genreOptions, nil), false, m.listWidth(), m.listHeight())
	m.genreList.SetFilteringEnabled(false)
	m.artistList = newList("Artists", choices(engine.Catalog().Artists(), nil), false, m.listWidth(), m.listHeight())
	m.trackList = newList("Recommendations", nil, true, m.listWidth(), m.listHeight())

	if m.stage == recommender.StageProcessPreferences {
		m.prefs = *opts.Saved
	}
	return m, nil
}

// Stage returns the current stage.
func (m *Model) Stage() recommender.Stage { return m.stage }

// Preferences returns the processed preferences; empty before processing.
func (m *Model) Preferences() models.Preferences { return m.prefs }

// Tracks returns the recommended songs.
func (m *Model) Tracks() []models.Song { return slices.Clone(m.tracks) }

// Err returns the error that ended the session, if any.
func (m *Model) Err() error { return m.err }

// Init processes saved preferences right away; otherwise it waits for input.
func (m *Model) Init() tea.Cmd {
	if m.stage == recommender.StageProcessPreferences {
		return m.recommend(m.prefs)
	}
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		for _, l := range []*list.Model{&m.genreList, &m.artistList, &m.trackList} {
			l.SetSize(m.listWidth(), m.listHeight())
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.stage {
		case recommender.StageWelcome:
			return m.handleWelcomeKeys(msg)
		case recommender.StageSelectGenres:
			return m.handleGenreKeys(msg)
		case recommender.StageSelectArtists:
			return m.handleArtistKeys(msg)
		case recommender.StageDisplay:
			return m.handleDisplayKeys(msg)
		case recommender.StageEnd:
			return m.handleEndKeys(msg)
		}
		return m, nil

	case recommendedMsg:
		return m.handleRecommended(msg)

	case savedMsg:
		m.saveErr = msg.err
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleWelcomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		m.stage = m.stage.Next(true)
	}
	return m, nil
}

func (m *Model) handleGenreKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.stage = recommender.StageWelcome
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		if item, ok := m.genreList.SelectedItem().(choiceItem); ok {
			m.genres = recommender.ToggleGenre(m.genres, item.value)
			m.notice = ""
			return m, m.genreList.SetItems(choices(m.genreOptions, m.genres))
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if len(m.genres) == 0 {
			m.notice = "Pick at least one genre."
			return m, nil
		}
		m.notice = ""
		m.stage = m.stage.Next(true)
		return m, nil
	}

	var cmd tea.Cmd
	m.genreList, cmd = m.genreList.Update(msg)
	return m, cmd
}

func (m *Model) handleArtistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.artistList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.artistList, cmd = m.artistList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		if m.artistList.FilterState() == list.FilterApplied {
			m.artistList.ResetFilter()
			return m, nil
		}
		m.stage = recommender.StageSelectGenres
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		if item, ok := m.artistList.SelectedItem().(choiceItem); ok {
			m.artists = recommender.ToggleArtist(m.artists, item.value)
			return m, m.artistList.SetItems(choices(m.engine.Catalog().Artists(), m.artists))
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		prefs, err := m.engine.Finalize(m.genres, m.artists, m.opts.BotLang)
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.stage = m.stage.Next(true)
		m.prefs = prefs
		return m, m.recommend(prefs)
	}

	var cmd tea.Cmd
	m.artistList, cmd = m.artistList.Update(msg)
	return m, cmd
}

func (m *Model) handleDisplayKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.trackList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.trackList, cmd = m.trackList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		m.stage = m.stage.Next(true)
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.restart()
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleEndKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.enter):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.restart()
	}
	return m, nil
}

func (m *Model) handleRecommended(msg recommendedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		m.stage = recommender.StageEnd
		return m, nil
	}

	m.tracks = msg.tracks
	m.stage = recommender.StageProcessPreferences.Next(len(msg.tracks) > 0)
	cmd := m.trackList.SetItems(songs(msg.tracks))
	m.trackList.Title = fmt.Sprintf("Recommendations (%d)", len(msg.tracks))

	if m.opts.Save != nil {
		return m, tea.Batch(cmd, m.save(msg.prefs))
	}
	return m, cmd
}

// restart clears every selection and returns to genre selection.
func (m *Model) restart() {
	m.genres, m.artists, m.tracks = nil, nil, nil
	m.prefs = models.Preferences{}
	m.err, m.saveErr = nil, nil
	m.notice = ""
	m.genreList.SetItems(choices(m.genreOptions, nil))
	m.artistList.ResetFilter()
	m.artistList.SetItems(choices(m.engine.Catalog().Artists(), nil))
	m.trackList.ResetFilter()
	m.stage = recommender.StageSelectGenres
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.stage {
	case recommender.StageSelectGenres:
		m.genreList, cmd = m.genreList.Update(msg)
	case recommender.StageSelectArtists:
		m.artistList, cmd = m.artistList.Update(msg)
	case recommender.StageDisplay:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) recommend(prefs models.Preferences) tea.Cmd {
	engine, songType, age := m.engine, m.opts.SongType, m.opts.Age
	return func() tea.Msg {
		if err := engine.ValidateGenres(prefs.Genres); err != nil {
			return recommendedMsg{prefs: prefs, err: err}
		}
		tracks := engine.Recommend(prefs, songType)
		if age != nil {
			tracks = recommender.ForAge(tracks, *age)
		}
		return recommendedMsg{prefs: prefs, tracks: tracks}
	}
}

func (m *Model) save(prefs models.Preferences) tea.Cmd {
	save := m.opts.Save
	return func() tea.Msg {
		return savedMsg{err: save(prefs)}
	}
}

func (m *Model) listWidth() int  { return max(m.width-4, 20) }
func (m *Model) listHeight() int { return max(m.height-8, 5) }

func (m *Model) text(name string) string {
	return m.opts.Texts.Get(m.opts.BotLang, name)
}

// View renders the UI based on the current stage.
func (m *Model) View() string {
	switch m.stage {
	case recommender.StageWelcome:
		return m.renderWelcome()
	case recommender.StageSelectGenres:
		return m.renderSelection(m.text(shared.TextSelectGenres), m.genreList)
	case recommender.StageSelectArtists:
		return m.renderSelection(m.text(shared.TextSelectArtists), m.artistList)
	case recommender.StageProcessPreferences:
		return styles.help.Render("Shuffling...")
	case recommender.StageDisplay:
		return m.renderTracks()
	case recommender.StageEnd:
		return m.renderEnd()
	default:
		return ""
	}
}

func (m *Model) renderWelcome() string {
	title := styles.title.Render("geniust")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.text(shared.TextWelcome), helpView)
}

func (m *Model) renderSelection(prompt string, l list.Model) string {
	out := styles.title.Render(prompt) + "\n" + l.View()
	if m.notice != "" {
		out += "\n" + styles.warn.Render(m.notice)
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.toggle, m.keys.enter, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", out, helpView)
}

func (m *Model) renderTracks() string {
	out := m.trackList.View()
	if m.saveErr != nil {
		out += "\n" + styles.err.Render(fmt.Sprintf("Failed to save preferences: %v", m.saveErr))
	} else if m.opts.Save != nil {
		out += "\n" + styles.ok.Render("✓ Preferences saved")
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.restart, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", out, helpView)
}

func (m *Model) renderEnd() string {
	var body string
	switch {
	case m.err != nil:
		body = styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	case len(m.tracks) == 0:
		body = styles.warn.Render(m.text(shared.TextNoSongs))
	default:
		body = styles.ok.Render(fmt.Sprintf("✓ %d songs recommended", len(m.tracks)))
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", body, helpView)
}
