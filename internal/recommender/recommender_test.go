package recommender

import (
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/geniust/internal/catalog"
	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/shared"
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	return New(c, opts...)
}

func TestGenresByAge(t *testing.T) {
	e := newEngine(t)
	vocab := e.Genres()

	t.Run("subset of vocabulary for every age", func(t *testing.T) {
		for age := 0; age <= 100; age++ {
			genres, err := e.GenresByAge(age)
			if err != nil {
				t.Fatalf("GenresByAge(%d) error = %v", age, err)
			}
			if len(genres) == 0 {
				t.Errorf("GenresByAge(%d) returned no genres", age)
			}
			for _, g := range genres {
				if !slices.Contains(vocab, g) {
					t.Errorf("GenresByAge(%d) returned unknown genre %q", age, g)
				}
			}
		}
	})

	tc := []struct {
		age  int
		want []string
	}{
		{age: 0, want: []string{"classical", "instrumental", "pop"}},
		{age: 10, want: []string{"classical", "instrumental", "pop"}},
		{age: 15, want: []string{"classical", "country", "instrumental", "pop", "rock"}},
		{age: 24, want: []string{"country", "pop", "rap", "rnb", "rock"}},
		{age: 30, want: []string{"country", "pop", "rap", "rnb", "rock", "traditional"}},
		{age: 50, want: []string{"classical", "country", "instrumental", "pop", "rnb", "rock", "traditional"}},
		{age: 70, want: vocab},
		{age: 100, want: vocab},
	}
	for _, tt := range tc {
		got, err := e.GenresByAge(tt.age)
		if err != nil {
			t.Fatalf("GenresByAge(%d) error = %v", tt.age, err)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("GenresByAge(%d) = %v, want %v", tt.age, got, tt.want)
		}
	}

	t.Run("negative age", func(t *testing.T) {
		if _, err := e.GenresByAge(-1); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestParseAge(t *testing.T) {
	tc := []struct {
		in   string
		want int
		ok   bool
	}{
		{in: "24", want: 24, ok: true},
		{in: " 0 ", want: 0, ok: true},
		{in: "err"},
		{in: "-3"},
		{in: "2.5"},
		{in: ""},
	}
	for _, tt := range tc {
		got, err := ParseAge(tt.in)
		if tt.ok {
			if err != nil || got != tt.want {
				t.Errorf("ParseAge(%q) = %d, %v", tt.in, got, err)
			}
			continue
		}
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("ParseAge(%q) expected ErrInvalidInput, got %v", tt.in, err)
		}
	}
}

func TestSearchArtist(t *testing.T) {
	e := newEngine(t)

	tc := []struct {
		name     string
		query    string
		contains string
		empty    bool
	}{
		{name: "exact", query: "Eminem", contains: "Eminem"},
		{name: "case insensitive", query: "eMiN", contains: "Eminem"},
		{name: "substring", query: "Nas", contains: "Nas"},
		{name: "no match", query: "test", empty: true},
		{name: "empty", query: "", empty: true},
		{name: "blank", query: "   ", empty: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := e.SearchArtist(tt.query)
			if got == nil {
				t.Fatal("SearchArtist should never return nil")
			}
			if tt.empty && len(got) != 0 {
				t.Errorf("SearchArtist(%q) = %v, want empty", tt.query, got)
			}
			if tt.contains != "" && !slices.Contains(got, tt.contains) {
				t.Errorf("SearchArtist(%q) = %v, want it to contain %q", tt.query, got, tt.contains)
			}
		})
	}
}

func TestBinarize(t *testing.T) {
	e := newEngine(t)
	size := len(e.Genres())

	tc := []struct {
		name   string
		genres []string
		bits   int
	}{
		{name: "empty", genres: nil, bits: 0},
		{name: "two known", genres: []string{"pop", "rap"}, bits: 2},
		{name: "persian", genres: []string{"persian"}, bits: 1},
		{name: "unknown ignored", genres: []string{"pop", "jazz"}, bits: 1},
		{name: "duplicates once", genres: []string{"pop", "pop", "rock"}, bits: 2},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			vec := e.Binarize(tt.genres)
			if len(vec) != size {
				t.Fatalf("len = %d, want %d", len(vec), size)
			}
			sum := 0
			for _, b := range vec {
				sum += b
			}
			if sum != tt.bits {
				t.Errorf("sum(Binarize(%v)) = %d, want %d", tt.genres, sum, tt.bits)
			}
		})
	}

	t.Run("fixed order", func(t *testing.T) {
		vec := e.Binarize([]string{"classical"})
		if vec[0] != 1 {
			t.Errorf("classical should be the first bit, got %v", vec)
		}
	})
}

func TestShuffle(t *testing.T) {
	e := newEngine(t, WithSeed(42))

	genreSets := [][]string{{"pop", "rap"}, {"persian"}, {"rock"}, {"persian", "rap"}}
	artistSets := [][]string{{"Eminem"}, nil}
	songTypes := []models.SongType{models.SongTypeAny, models.SongTypePreview, models.SongTypeFull, models.SongTypePreviewFull}

	for _, genres := range genreSets {
		for _, artists := range artistSets {
			for _, st := range songTypes {
				prefs := models.Preferences{Genres: genres, Artists: artists}
				for _, s := range e.Shuffle(prefs, st) {
					switch st {
					case models.SongTypePreviewFull:
						if !s.HasPreview() || !s.HasDownload() {
							t.Errorf("%v/%s: song %d lacks preview or download", genres, st, s.ID)
						}
					case models.SongTypePreview:
						if !s.HasPreview() {
							t.Errorf("%v/%s: song %d lacks preview", genres, st, s.ID)
						}
					case models.SongTypeFull:
						if !s.HasDownload() {
							t.Errorf("%v/%s: song %d lacks download", genres, st, s.ID)
						}
					case models.SongTypeAny:
						if !s.HasPreview() && !s.HasDownload() {
							t.Errorf("%v/%s: song %d has no media", genres, st, s.ID)
						}
					}

					overlap := false
					for _, g := range genres {
						overlap = overlap || s.HasGenre(g)
					}
					if !overlap {
						t.Errorf("%v: song %d shares no genre", genres, s.ID)
					}

					if slices.Contains(genres, PersianGenre) != s.HasGenre(PersianGenre) {
						t.Errorf("%v: song %d violates persian exclusivity", genres, s.ID)
					}
				}
			}
		}
	}

	t.Run("non-empty results", func(t *testing.T) {
		if len(e.Shuffle(models.Preferences{Genres: []string{"persian"}}, models.SongTypeAny)) == 0 {
			t.Error("expected persian songs")
		}
		if len(e.Shuffle(models.Preferences{Genres: []string{"pop"}}, models.SongTypeAny)) == 0 {
			t.Error("expected pop songs")
		}
	})

	t.Run("no genres yields empty", func(t *testing.T) {
		got := e.Shuffle(models.Preferences{}, models.SongTypeAny)
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil result, got %v", got)
		}
	})

	t.Run("same seed same order", func(t *testing.T) {
		prefs := models.Preferences{Genres: []string{"pop", "rock", "rap"}}
		a := newEngine(t, WithRand(rand.New(rand.NewPCG(1, 2)))).Shuffle(prefs, models.SongTypeAny)
		b := newEngine(t, WithRand(rand.New(rand.NewPCG(1, 2)))).Shuffle(prefs, models.SongTypeAny)
		if len(a) != len(b) {
			t.Fatalf("length mismatch %d != %d", len(a), len(b))
		}
		for i := range a {
			if a[i].ID != b[i].ID {
				t.Fatalf("order differs at %d", i)
			}
		}
	})

	t.Run("result is a permutation of the filtered set", func(t *testing.T) {
		prefs := models.Preferences{Genres: []string{"pop"}}
		first := e.Shuffle(prefs, models.SongTypeAny)
		second := e.Shuffle(prefs, models.SongTypeAny)
		ids := func(songs []models.Song) []int {
			out := make([]int, len(songs))
			for i, s := range songs {
				out[i] = s.ID
			}
			slices.Sort(out)
			return out
		}
		if !slices.Equal(ids(first), ids(second)) {
			t.Error("shuffles should contain the same songs")
		}
	})
}

func TestShuffleConcurrent(t *testing.T) {
	e := newEngine(t)
	prefs := models.Preferences{Genres: []string{"pop", "rap"}}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				e.Shuffle(prefs, models.SongTypeAny)
			}
		}()
	}
	wg.Wait()
}

func TestPrioritizeArtists(t *testing.T) {
	songs := []models.Song{
		{ID: 1, Artist: "Queen"},
		{ID: 2, Artist: "Eminem"},
		{ID: 3, Artist: "Nas"},
		{ID: 4, Artist: "eminem"},
		{ID: 5, Artist: "Adele"},
	}

	ids := func(songs []models.Song) []int {
		out := make([]int, len(songs))
		for i, s := range songs {
			out[i] = s.ID
		}
		return out
	}

	tc := []struct {
		name    string
		artists []string
		want    []int
	}{
		{name: "no artists keeps order", want: []int{1, 2, 3, 4, 5}},
		{name: "single artist", artists: []string{"Eminem"}, want: []int{2, 4, 1, 3, 5}},
		{name: "two artists", artists: []string{"Nas", "Adele"}, want: []int{3, 5, 1, 2, 4}},
		{name: "unknown artist", artists: []string{"Nobody"}, want: []int{1, 2, 3, 4, 5}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(PrioritizeArtists(songs, tt.artists))
			if !slices.Equal(got, tt.want) {
				t.Errorf("PrioritizeArtists() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecommend(t *testing.T) {
	e := newEngine(t, WithSeed(7))
	got := e.Recommend(models.Preferences{Genres: []string{"rap", "pop"}, Artists: []string{"Nas"}}, models.SongTypeAny)
	if len(got) == 0 {
		t.Fatal("expected recommendations")
	}
	if got[0].Artist != "Nas" {
		t.Errorf("expected Nas first, got %q", got[0].Artist)
	}
}

func TestValidate(t *testing.T) {
	e := newEngine(t)

	genreCases := []struct {
		genres []string
		ok     bool
	}{
		{genres: []string{"pop"}, ok: true},
		{genres: []string{"pop", "persian"}, ok: true},
		{genres: nil},
		{genres: []string{"invalid"}},
		{genres: []string{"pop", "invalid"}},
	}
	for _, tt := range genreCases {
		err := e.ValidateGenres(tt.genres)
		if tt.ok != (err == nil) {
			t.Errorf("ValidateGenres(%v) = %v", tt.genres, err)
		}
		if err != nil && !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("ValidateGenres(%v) wrong error kind: %v", tt.genres, err)
		}
	}

	artistCases := []struct {
		artists []string
		ok      bool
	}{
		{artists: []string{"Nas"}, ok: true},
		{artists: []string{"Nas", "Eminem"}, ok: true},
		{artists: nil},
		{artists: []string{"Nas", "invalid"}},
	}
	for _, tt := range artistCases {
		err := e.ValidateArtists(tt.artists)
		if tt.ok != (err == nil) {
			t.Errorf("ValidateArtists(%v) = %v", tt.artists, err)
		}
	}
}

func TestForAge(t *testing.T) {
	songs := []models.Song{
		{ID: 1, AgeBand: models.AgeBand{Min: 18, Max: 100}},
		{ID: 2},
		{ID: 3, AgeBand: models.AgeBand{Min: 13, Max: 100}},
	}

	tc := []struct {
		age  int
		want []int
	}{
		{age: 10, want: []int{2}},
		{age: 15, want: []int{2, 3}},
		{age: 30, want: []int{1, 2, 3}},
	}
	for _, tt := range tc {
		var got []int
		for _, s := range ForAge(songs, tt.age) {
			got = append(got, s.ID)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("ForAge(%d) = %v, want %v", tt.age, got, tt.want)
		}
	}
}
