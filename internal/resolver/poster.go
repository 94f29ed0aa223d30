package resolver

import (
	"context"
	"log/slog"

	"github.com/lepinkainen/cinemabot/internal/metrics"
	"github.com/lepinkainen/cinemabot/internal/movie"
	"github.com/lepinkainen/cinemabot/internal/poster"
)

// resolvePoster returns a poster path for rec and whether the caller owns it.
// Order: cached poster, downloaded poster, synthesized placeholder.
func (r *Resolver) resolvePoster(ctx context.Context, rec movie.Record) (string, bool) {
	if r.posters == nil {
		return "", false
	}

	if rec.HasCatalogID() {
		if path, ok := r.posters.Get(rec.CatalogID); ok {
			metrics.PostersTotal.WithLabelValues("cached").Inc()
			return path, false
		}
	}

	if rec.PosterURL != "" {
		img, err := r.fetcher.Fetch(ctx, rec.PosterURL)
		if err == nil {
			if path, temporary, ok := r.storePoster(rec, img); ok {
				metrics.PostersTotal.WithLabelValues("fetched").Inc()
				return path, temporary
			}
		} else {
			slog.Warn("Poster download failed, using placeholder", "movie_id", rec.CatalogID, "url", rec.PosterURL, "error", err)
		}
	}

	metrics.PostersTotal.WithLabelValues("fallback").Inc()
	path, err := poster.SynthesizeFile(rec.Title, rec.Year)
	if err != nil {
		slog.Warn("Failed to write placeholder poster", "title", rec.Title, "error", err)
		return "", false
	}
	slog.Debug("Using placeholder poster", "title", rec.Title, "path", path)
	return path, true
}

// storePoster saves img in the poster store when rec has an id, otherwise in a temporary file.
func (r *Resolver) storePoster(rec movie.Record, img poster.Image) (string, bool, bool) {
	if rec.HasCatalogID() {
		path, err := r.posters.Put(rec.CatalogID, img.Data, img.Ext)
		if err == nil {
			return path, false, true
		}
		slog.Warn("Failed to cache poster, using temporary file", "movie_id", rec.CatalogID, "error", err)
	}

	path, err := poster.WriteTemp(img.Data, img.Ext)
	if err != nil {
		slog.Warn("Failed to write temporary poster", "error", err)
		return "", false, false
	}
	return path, true, true
}
