package recommender

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/desertthunder/geniust/internal/catalog"
	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/shared"
)

// PersianGenre is only recommended to users who selected it.
const PersianGenre = "persian"

// Engine selects and orders catalog songs from user preferences.
// It holds no conversation state; every method is safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures an [Engine].
type Option func(*Engine)

// WithRand sets the random source used by [Engine.Shuffle].
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithSeed seeds the random source, for reproducible output.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// New creates an [Engine] over c.
func New(c *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{catalog: c}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return e
}

// Catalog returns the underlying catalog.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Genres returns the full vocabulary.
func (e *Engine) Genres() []string { return e.catalog.Genres() }

// ParseAge converts a raw age value. Anything that isn't a non-negative integer is [shared.ErrInvalidInput].
func ParseAge(s string) (int, error) {
	age, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: age %q is not an integer", shared.ErrInvalidInput, s)
	}
	if age < 0 {
		return 0, fmt.Errorf("%w: age %d is negative", shared.ErrInvalidInput, age)
	}
	return age, nil
}

// GenresByAge returns the genres suitable for age.
// Ages outside every band get the full vocabulary.
func (e *Engine) GenresByAge(age int) ([]string, error) {
	if age < 0 {
		return nil, fmt.Errorf("%w: age %d is negative", shared.ErrInvalidInput, age)
	}
	if band, ok := e.catalog.BandFor(age); ok {
		return slices.Clone(band.Genres), nil
	}
	return e.catalog.Genres(), nil
}

// SearchArtist returns catalog artists whose name contains query, ignoring case.
func (e *Engine) SearchArtist(query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	matches := []string{}
	if query == "" {
		return matches
	}
	for _, a := range e.catalog.Artists() {
		if strings.Contains(strings.ToLower(a), query) {
			matches = append(matches, a)
		}
	}
	return matches
}

// Binarize maps genres to an indicator vector over the vocabulary.
// Unknown genres are ignored and duplicates set their bit once.
func (e *Engine) Binarize(genres []string) []int {
	vec := make([]int, len(e.catalog.Genres()))
	for _, g := range genres {
		if i, ok := e.catalog.GenreIndex(g); ok {
			vec[i] = 1
		}
	}
	return vec
}

// MatchesSongType reports whether s exposes the media songType requires.
func MatchesSongType(s models.Song, songType models.SongType) bool {
	switch songType {
	case models.SongTypePreview:
		return s.HasPreview()
	case models.SongTypeFull:
		return s.HasDownload()
	case models.SongTypePreviewFull:
		return s.HasPreview() && s.HasDownload()
	default:
		return s.HasPreview() || s.HasDownload()
	}
}

// Shuffle returns the songs sharing a genre with prefs, filtered by media type, in random order.
//
// Persian songs are returned only when prefs includes [PersianGenre], and then exclusively.
// Artist preferences are not consulted; see [PrioritizeArtists].
func (e *Engine) Shuffle(prefs models.Preferences, songType models.SongType) []models.Song {
	wanted := make(map[string]struct{}, len(prefs.Genres))
	for _, g := range prefs.Genres {
		wanted[g] = struct{}{}
	}
	_, persian := wanted[PersianGenre]

	songs := []models.Song{}
	for _, s := range e.catalog.Songs() {
		if !intersects(s.Genres, wanted) {
			continue
		}
		if s.HasGenre(PersianGenre) != persian {
			continue
		}
		if !MatchesSongType(s, songType) {
			continue
		}
		songs = append(songs, s)
	}

	e.mu.Lock()
	e.rng.Shuffle(len(songs), func(i, j int) { songs[i], songs[j] = songs[j], songs[i] })
	e.mu.Unlock()

	return songs
}

// Recommend shuffles and then moves songs by the preferred artists to the front.
func (e *Engine) Recommend(prefs models.Preferences, songType models.SongType) []models.Song {
	return PrioritizeArtists(e.Shuffle(prefs, songType), prefs.Artists)
}

// PrioritizeArtists returns songs with those by artists first, keeping relative order in both groups.
// Nothing is removed. Artist names compare case-insensitively.
func PrioritizeArtists(songs []models.Song, artists []string) []models.Song {
	out := make([]models.Song, 0, len(songs))
	if len(artists) == 0 {
		return append(out, songs...)
	}

	preferred := make(map[string]struct{}, len(artists))
	for _, a := range artists {
		preferred[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
	}

	var rest []models.Song
	for _, s := range songs {
		if _, ok := preferred[strings.ToLower(s.Artist)]; ok {
			out = append(out, s)
		} else {
			rest = append(rest, s)
		}
	}
	return append(out, rest...)
}

// ForAge drops songs whose age band excludes age, keeping order.
func ForAge(songs []models.Song, age int) []models.Song {
	out := make([]models.Song, 0, len(songs))
	for _, s := range songs {
		if s.SuitableFor(age) {
			out = append(out, s)
		}
	}
	return out
}

// ValidateGenres rejects an empty list or any genre outside the vocabulary.
func (e *Engine) ValidateGenres(genres []string) error {
	if len(genres) == 0 {
		return fmt.Errorf("%w: no genres given", shared.ErrInvalidInput)
	}
	for _, g := range genres {
		if !e.catalog.HasGenre(g) {
			return fmt.Errorf("%w: unknown genre %q", shared.ErrInvalidInput, g)
		}
	}
	return nil
}

// ValidateArtists rejects an empty list or any artist missing from the catalog.
func (e *Engine) ValidateArtists(artists []string) error {
	if len(artists) == 0 {
		return fmt.Errorf("%w: no artists given", shared.ErrInvalidInput)
	}
	for _, a := range artists {
		if !e.catalog.HasArtist(a) {
			return fmt.Errorf("%w: unknown artist %q", shared.ErrInvalidInput, a)
		}
	}
	return nil
}

func intersects(genres []string, wanted map[string]struct{}) bool {
	for _, g := range genres {
		if _, ok := wanted[g]; ok {
			return true
		}
	}
	return false
}
