package recommender

import (
	"fmt"
	"slices"

	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/shared"
)

// Stage is a step of the recommendation conversation.
type Stage int

const (
	StageWelcome Stage = iota
	StageSelectGenres
	StageSelectArtists
	StageProcessPreferences
	StageDisplay
	StageEnd
)

func (s Stage) String() string {
	switch s {
	case StageWelcome:
		return "welcome"
	case StageSelectGenres:
		return "select_genres"
	case StageSelectArtists:
		return "select_artists"
	case StageProcessPreferences:
		return "process_preferences"
	case StageDisplay:
		return "display"
	case StageEnd:
		return "end"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Next returns the stage after s. hasResults only matters when leaving
// [StageProcessPreferences]: an empty recommendation ends the conversation.
func (s Stage) Next(hasResults bool) Stage {
	switch s {
	case StageWelcome:
		return StageSelectGenres
	case StageSelectGenres:
		return StageSelectArtists
	case StageSelectArtists:
		return StageProcessPreferences
	case StageProcessPreferences:
		if hasResults {
			return StageDisplay
		}
		return StageEnd
	default:
		return StageEnd
	}
}

// StartStage picks where a returning user enters the flow: saved preferences skip the selection steps.
func StartStage(saved *models.Preferences) Stage {
	if saved != nil && len(saved.Genres) > 0 {
		return StageProcessPreferences
	}
	return StageWelcome
}

// PrepareGenres returns the genres to submit for botLang. Farsi users always get [PersianGenre].
func PrepareGenres(genres []string, botLang string) []string {
	out := slices.Clone(genres)
	if botLang == "fa" && !slices.Contains(out, PersianGenre) {
		out = append(out, PersianGenre)
	}
	return out
}

// ToggleGenre adds genre to genres or removes it when already selected.
func ToggleGenre(genres []string, genre string) []string {
	return toggle(genres, genre)
}

// ToggleArtist adds artist to artists or removes it when already selected.
func ToggleArtist(artists []string, artist string) []string {
	return toggle(artists, artist)
}

// GenreOptions lists the genres offered in [StageSelectGenres].
// A nil age offers the full vocabulary; persian is shown only to Farsi users.
func (e *Engine) GenreOptions(age *int, botLang string) ([]string, error) {
	var (
		genres []string
		err    error
	)
	if age == nil {
		genres = e.Genres()
	} else if genres, err = e.GenresByAge(*age); err != nil {
		return nil, err
	}

	genres = slices.DeleteFunc(genres, func(g string) bool { return g == PersianGenre })
	if botLang == "fa" {
		genres = append(genres, PersianGenre)
	}
	return genres, nil
}

// Finalize validates the selections made in the flow and builds [models.Preferences].
// Artists are optional here; an empty artist list is allowed.
func (e *Engine) Finalize(genres, artists []string, botLang string) (models.Preferences, error) {
	genres = PrepareGenres(genres, botLang)
	if err := e.ValidateGenres(genres); err != nil {
		return models.Preferences{}, err
	}
	if len(artists) > 0 {
		if err := e.ValidateArtists(artists); err != nil {
			return models.Preferences{}, err
		}
	}
	return models.Preferences{Genres: genres, Artists: slices.Clone(artists)}, nil
}

// ParseSongType parses a song type, mapping failures to [shared.ErrInvalidInput].
func ParseSongType(s string) (models.SongType, error) {
	t, err := models.ParseSongType(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return t, nil
}

func toggle(items []string, item string) []string {
	if i := slices.Index(items, item); i >= 0 {
		return slices.Delete(slices.Clone(items), i, i+1)
	}
	return append(slices.Clone(items), item)
}
