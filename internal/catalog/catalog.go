package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/shared"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

//go:embed data/songs.json
var defaultCatalog []byte

var validate = validator.New()

// GenreBand maps an inclusive age range to the genres suitable for it.
type GenreBand struct {
	models.AgeBand
	Genres []string `json:"genres" validate:"required,min=1,dive,required"`
}

type document struct {
	Genres   []string      `json:"genres" validate:"required,min=1,unique,dive,required"`
	AgeBands []GenreBand   `json:"age_bands" validate:"dive"`
	Songs    []models.Song `json:"songs" validate:"required,min=1,dive"`
}

// Catalog is an immutable, validated song collection with its genre vocabulary.
type Catalog struct {
	genres     []string
	genreIndex map[string]int
	bands      []GenreBand
	songs      []models.Song
	artists    []string
	artistKeys map[string]string
}

// New builds a catalog from its parts and checks cross references:
// every genre used must be in the vocabulary, song ids are unique and bands don't overlap.
func New(genres []string, bands []GenreBand, songs []models.Song) (*Catalog, error) {
	doc := document{Genres: genres, AgeBands: bands, Songs: songs}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidCatalog, err)
	}

	c := &Catalog{
		genres:     slices.Clone(genres),
		genreIndex: make(map[string]int, len(genres)),
		artistKeys: make(map[string]string),
	}
	for i, g := range genres {
		c.genreIndex[g] = i
	}

	c.bands = make([]GenreBand, len(bands))
	for i, b := range bands {
		for _, g := range b.Genres {
			if !c.HasGenre(g) {
				return nil, fmt.Errorf("%w: age band %d-%d uses unknown genre %q", shared.ErrInvalidCatalog, b.Min, b.Max, g)
			}
		}
		c.bands[i] = GenreBand{AgeBand: b.AgeBand, Genres: slices.Clone(b.Genres)}
	}
	sort.Slice(c.bands, func(i, j int) bool { return c.bands[i].Min < c.bands[j].Min })
	for i := 1; i < len(c.bands); i++ {
		if c.bands[i].Min <= c.bands[i-1].Max {
			return nil, fmt.Errorf("%w: age bands %d-%d and %d-%d overlap", shared.ErrInvalidCatalog,
				c.bands[i-1].Min, c.bands[i-1].Max, c.bands[i].Min, c.bands[i].Max)
		}
	}

	ids := make(map[int]struct{}, len(songs))
	c.songs = make([]models.Song, len(songs))
	for i, s := range songs {
		if _, dup := ids[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate song id %d", shared.ErrInvalidCatalog, s.ID)
		}
		ids[s.ID] = struct{}{}

		for _, g := range s.Genres {
			if !c.HasGenre(g) {
				return nil, fmt.Errorf("%w: song %d uses unknown genre %q", shared.ErrInvalidCatalog, s.ID, g)
			}
		}

		s.Genres = slices.Clone(s.Genres)
		c.songs[i] = s

		key := strings.ToLower(s.Artist)
		if _, ok := c.artistKeys[key]; !ok {
			c.artistKeys[key] = s.Artist
			c.artists = append(c.artists, s.Artist)
		}
	}
	sort.Strings(c.artists)

	return c, nil
}

// Load decodes and validates a catalog document.
func Load(r io.Reader) (*Catalog, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidCatalog, err)
	}
	return New(doc.Genres, doc.AgeBands, doc.Songs)
}

// LoadFile reads a catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// Open loads the catalog at path, or the embedded one when path is empty.
func Open(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Songs returns every song in catalog order.
func (c *Catalog) Songs() []models.Song { return slices.Clone(c.songs) }

// Genres returns the vocabulary in its fixed order.
func (c *Catalog) Genres() []string { return slices.Clone(c.genres) }

// Artists returns the distinct artist names, sorted.
func (c *Catalog) Artists() []string { return slices.Clone(c.artists) }

// AgeBands returns the age bands sorted by lower bound.
func (c *Catalog) AgeBands() []GenreBand { return slices.Clone(c.bands) }

// Len returns the number of songs.
func (c *Catalog) Len() int { return len(c.songs) }

// HasGenre reports whether genre is in the vocabulary.
func (c *Catalog) HasGenre(genre string) bool {
	_, ok := c.genreIndex[genre]
	return ok
}

// GenreIndex returns the position of genre in the vocabulary.
func (c *Catalog) GenreIndex(genre string) (int, bool) {
	i, ok := c.genreIndex[genre]
	return i, ok
}

// HasArtist reports whether any song is by artist, ignoring case.
func (c *Catalog) HasArtist(artist string) bool {
	_, ok := c.artistKeys[strings.ToLower(strings.TrimSpace(artist))]
	return ok
}

// BandFor returns the age band containing age.
func (c *Catalog) BandFor(age int) (GenreBand, bool) {
	for _, b := range c.bands {
		if b.Contains(age) {
			return b, true
		}
	}
	return GenreBand{}, false
}
