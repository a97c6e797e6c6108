package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/recommender"
	"github.com/desertthunder/geniust/internal/shared"
	"github.com/goccy/go-json"
)

// envelope is the body of every JSON response.
type envelope struct {
	Response any    `json:"response"`
	Error    string `json:"error,omitempty"`
}

// empty encodes as {}.
type empty struct{}

type genresResponse struct {
	Genres []string `json:"genres"`
}

type artistsResponse struct {
	Artists []string `json:"artists"`
}

type tracksResponse struct {
	Tracks []models.Song `json:"tracks"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func badRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, envelope{Response: empty{}, Error: err.Error()})
}

// GenresHandler serves GET /genres.
type GenresHandler struct {
	engine *recommender.Engine
}

func NewGenresHandler(engine *recommender.Engine) *GenresHandler {
	return &GenresHandler{engine: engine}
}

func (h *GenresHandler) Routes() []string { return []string{"GET /genres"} }

// ServeHTTP answers with the genres for ?age, or the whole vocabulary without it.
func (h *GenresHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, ok := r.URL.Query()["age"]
	if !ok {
		writeJSON(w, http.StatusOK, envelope{Response: genresResponse{Genres: h.engine.Genres()}})
		return
	}

	age, err := recommender.ParseAge(raw[0])
	if err != nil {
		badRequest(w, err)
		return
	}

	genres, err := h.engine.GenresByAge(age)
	if err != nil {
		badRequest(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Response: genresResponse{Genres: genres}})
}

// SearchHandler serves GET /search.
type SearchHandler struct {
	engine *recommender.Engine
}

func NewSearchHandler(engine *recommender.Engine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

func (h *SearchHandler) Routes() []string { return []string{"GET /search"} }

func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("artist"))
	if query == "" {
		writeJSON(w, http.StatusNotFound, envelope{Response: empty{}})
		return
	}

	artists := h.engine.SearchArtist(query)
	if len(artists) == 0 {
		writeJSON(w, http.StatusNotFound, envelope{Response: empty{}})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Response: artistsResponse{Artists: artists}})
}

// RecommendationsHandler serves GET /recommendations.
type RecommendationsHandler struct {
	engine *recommender.Engine
	logger *log.Logger
}

func NewRecommendationsHandler(engine *recommender.Engine, logger *log.Logger) *RecommendationsHandler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &RecommendationsHandler{engine: engine, logger: logger}
}

func (h *RecommendationsHandler) Routes() []string { return []string{"GET /recommendations"} }

// ServeHTTP shuffles the catalog for the requested genres and artists.
// Genres and artists are comma separated and must all be known.
func (h *RecommendationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	genres := shared.SplitCSV(q.Get("genres"))
	if err := h.engine.ValidateGenres(genres); err != nil {
		badRequest(w, err)
		return
	}

	artists := shared.SplitCSV(q.Get("artists"))
	if err := h.engine.ValidateArtists(artists); err != nil {
		badRequest(w, err)
		return
	}

	songType, err := recommender.ParseSongType(q.Get("song_type"))
	if err != nil {
		badRequest(w, err)
		return
	}

	tracks := h.engine.Recommend(models.Preferences{Genres: genres, Artists: artists}, songType)
	h.logger.Debug("recommended tracks", "genres", genres, "artists", artists, "song_type", songType, "count", len(tracks))
	writeJSON(w, http.StatusOK, envelope{Response: tracksResponse{Tracks: tracks}})
}

// CronHandler answers keep-alive pings from the hosting scheduler.
type CronHandler struct{}

func (CronHandler) Routes() []string { return []string{"GET /cron"} }

func (CronHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}
