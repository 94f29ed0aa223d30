package source

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lepinkainen/cinemabot/internal/cache"
	cberrors "github.com/lepinkainen/cinemabot/internal/errors"
	"github.com/lepinkainen/cinemabot/internal/metrics"
	"github.com/lepinkainen/cinemabot/internal/movie"
)

const defaultMetadataTimeout = 8 * time.Second

// Catalog searches a movie catalog.
type Catalog interface {
	Name() string
	SearchCatalog(ctx context.Context, query string) ([]movie.CatalogDoc, error)
}

// MetadataAdapter turns catalog searches into a single normalized Record.
type MetadataAdapter struct {
	catalog  Catalog
	cache    *cache.Store
	timeout  time.Duration
	synonyms Synonyms
}

// MetadataOption configures a MetadataAdapter.
type MetadataOption func(*MetadataAdapter)

// WithMetadataTimeout bounds each catalog search.
func WithMetadataTimeout(d time.Duration) MetadataOption {
	return func(a *MetadataAdapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithSynonyms sets the alias table used by best-match selection.
func WithSynonyms(s Synonyms) MetadataOption {
	return func(a *MetadataAdapter) {
		a.synonyms = s
	}
}

// NewMetadataAdapter creates an adapter over catalog backed by store.
func NewMetadataAdapter(catalog Catalog, store *cache.Store, opts ...MetadataOption) *MetadataAdapter {
	a := &MetadataAdapter{
		catalog: catalog,
		cache:   store,
		timeout: defaultMetadataTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FetchMetadata returns the best catalog match for query. It never fails; any
// problem yields an empty Record.
func (a *MetadataAdapter) FetchMetadata(ctx context.Context, query string) movie.Record {
	if entry, ok := cache.Get[movie.Record](a.cache, cache.NamespaceMovies, query); ok {
		slog.Debug("Using cached metadata", "query", query, "title", entry.Payload.Title, "cached_at", entry.CreatedAt)
		return entry.Payload
	}

	source := a.catalog.Name()
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	docs, err := a.catalog.SearchCatalog(ctx, query)
	metrics.SourceRequestDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SourceRequestsTotal.WithLabelValues(source, "error").Inc()
		slog.Warn("Metadata source unavailable", "source", source, "query", query, "error", err)
		return movie.Record{}
	}

	idx := BestMatch(query, docs, a.synonyms)
	if idx < 0 {
		metrics.SourceRequestsTotal.WithLabelValues(source, "empty").Inc()
		slog.Info("Metadata not found", "error", cberrors.NewNotFoundError(source, query))
		return movie.Record{}
	}

	rec := normalize(source, docs[idx])
	if rec.IsEmpty() {
		metrics.SourceRequestsTotal.WithLabelValues(source, "empty").Inc()
		slog.Info("Best match carries no identity", "error", cberrors.NewNotFoundError(source, query))
		return movie.Record{}
	}

	metrics.SourceRequestsTotal.WithLabelValues(source, "ok").Inc()
	slog.Info("Fetched metadata", "source", source, "query", query, "title", rec.Title, "year", rec.Year, "candidates", len(docs))

	if rec.HasCatalogID() {
		cache.Put(a.cache, cache.NamespaceMovies, query, rec)
	}
	return rec
}

// normalize maps a catalog document onto a Record. A document without an
// identifier or a title produces an empty Record.
func normalize(source string, d movie.CatalogDoc) movie.Record {
	id := strings.TrimSpace(d.ID)
	title := strings.TrimSpace(d.Title)
	if id == "" && title == "" {
		return movie.Record{}
	}
	if title == "" {
		title = movie.NoTitle
	}

	rec := movie.Record{
		CatalogID:   id,
		Source:      source,
		Title:       title,
		Description: strings.TrimSpace(d.Description),
		Genres:      compact(d.Genres),
		Countries:   compact(d.Countries),
		PosterURL:   strings.TrimSpace(d.PosterURL),
		PageURL:     strings.TrimSpace(d.PageURL),
	}
	if d.Year > 0 {
		rec.Year = d.Year
	}
	if d.RuntimeMinutes > 0 {
		rec.RuntimeMinutes = d.RuntimeMinutes
	}
	if d.Rating != nil && *d.Rating >= 0 && *d.Rating <= 10 {
		rec.Rating = movie.Float(*d.Rating)
	}
	return rec
}

func compact(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
