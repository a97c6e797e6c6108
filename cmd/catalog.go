package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/geniust/internal/formatter"
	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/recommender"
	"github.com/desertthunder/geniust/internal/shared"
	"github.com/urfave/cli/v3"
)

// CatalogGenres prints the genres for --age, or the whole vocabulary.
func (r *Runner) CatalogGenres(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.engine()
	if err != nil {
		return err
	}

	genres := engine.Genres()
	if cmd.IsSet("age") {
		if genres, err = engine.GenresByAge(int(cmd.Int("age"))); err != nil {
			return err
		}
	}

	for _, g := range genres {
		r.writePlain("%s\n", g)
	}
	return nil
}

// CatalogSearch prints catalog artists matching the query argument.
func (r *Runner) CatalogSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	engine, err := r.engine()
	if err != nil {
		return err
	}

	artists := engine.SearchArtist(query)
	if len(artists) == 0 {
		return fmt.Errorf("%w: no artist matches %q", shared.ErrNotFound, query)
	}
	for _, a := range artists {
		r.writePlain("%s\n", a)
	}
	return nil
}

// CatalogRecommend shuffles songs for --genres, putting --artists first.
func (r *Runner) CatalogRecommend(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.engine()
	if err != nil {
		return err
	}

	prefs := models.Preferences{
		Genres:  shared.SplitCSV(cmd.String("genres")),
		Artists: shared.SplitCSV(cmd.String("artists")),
	}
	if err := engine.ValidateGenres(prefs.Genres); err != nil {
		return err
	}
	if len(prefs.Artists) > 0 {
		if err := engine.ValidateArtists(prefs.Artists); err != nil {
			return err
		}
	}

	songType, err := recommender.ParseSongType(cmd.String("song-type"))
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	tracks := engine.Recommend(prefs, songType)
	if limit := int(cmd.Int("limit")); limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}
	r.logger.Debug("recommended tracks", "genres", prefs.Genres, "count", len(tracks))

	title := "Recommendations: " + strings.Join(prefs.Genres, ", ")
	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteFile(path, format, title, tracks); err != nil {
			return err
		}
		r.logger.Info("recommendations written", "path", path, "count", len(tracks))
		return nil
	}
	return formatter.Write(r.output, format, title, tracks)
}
