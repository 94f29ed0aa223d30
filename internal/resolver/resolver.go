// Package resolver answers a free-text movie query by consulting the enabled
// sources concurrently, merging their results and resolving a poster.
package resolver

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"github.com/lepinkainen/cinemabot/internal/content"
	"github.com/lepinkainen/cinemabot/internal/metrics"
	"github.com/lepinkainen/cinemabot/internal/movie"
	"github.com/lepinkainen/cinemabot/internal/poster"
)

// CommandKeywords are queries that look like a bot command typed without the slash.
var CommandKeywords = []string{
	"clear_cache", "clear_posters", "clear_movie_data", "clear_rutube",
	"start", "help", "settings", "history", "stats", "turn_links", "turn_kp",
}

// MetadataFetcher returns the best catalog record for a query, or an empty record.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, query string) movie.Record
}

// LinkFetcher returns watch links for a query, or none.
type LinkFetcher interface {
	FetchLinks(ctx context.Context, query string) []movie.LinkCandidate
}

// HistoryRecorder receives search and display events.
type HistoryRecorder interface {
	RecordSearch(ctx context.Context, userID int64, query string) error
	RecordMovieShown(ctx context.Context, userID int64, title string, year int, description string) error
}

// PosterFetcher downloads poster images.
type PosterFetcher interface {
	Fetch(ctx context.Context, imageURL string) (poster.Image, error)
}

// Resolver runs the per-request pipeline. It holds no per-request state and is
// safe for concurrent use.
type Resolver struct {
	metadata MetadataFetcher
	links    LinkFetcher
	posters  *poster.Store
	fetcher  PosterFetcher
	history  HistoryRecorder
	labelMax int
	commands map[string]bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHistory sets the history recorder.
func WithHistory(h HistoryRecorder) Option {
	return func(r *Resolver) {
		r.history = h
	}
}

// WithPosterFetcher overrides the poster downloader.
func WithPosterFetcher(f PosterFetcher) Option {
	return func(r *Resolver) {
		if f != nil {
			r.fetcher = f
		}
	}
}

// WithLabelMax sets the link label length used when rendering links.
func WithLabelMax(n int) Option {
	return func(r *Resolver) {
		r.labelMax = n
	}
}

// WithCommandKeywords replaces the command keyword set.
func WithCommandKeywords(keywords []string) Option {
	return func(r *Resolver) {
		r.commands = keywordSet(keywords)
	}
}

// New creates a Resolver. posters may be nil, in which case no poster is resolved.
func New(metadata MetadataFetcher, links LinkFetcher, posters *poster.Store, opts ...Option) *Resolver {
	r := &Resolver{
		metadata: metadata,
		links:    links,
		posters:  posters,
		fetcher:  poster.NewFetcher(),
		labelMax: 60,
		commands: keywordSet(CommandKeywords),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var folder = cases.Fold()

func keywordSet(keywords []string) map[string]bool {
	set := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		set[folder.String(strings.TrimSpace(k))] = true
	}
	return set
}

// IsCommandLike reports whether query equals a command keyword, ignoring case.
func (r *Resolver) IsCommandLike(query string) bool {
	return r.commands[folder.String(strings.TrimSpace(query))]
}

// Resolve answers query for userID using the given toggles. It never fails;
// source problems degrade the result instead.
func (r *Resolver) Resolve(ctx context.Context, userID int64, query string, toggles movie.SourceToggles) Result {
	query = strings.TrimSpace(query)
	res := Result{Query: query}

	if query == "" {
		res.Outcome = OutcomeNoResults
		res.Message = content.NothingFound(query)
		return r.finish(res)
	}

	if r.IsCommandLike(query) {
		res.Outcome = OutcomeCommandLike
		res.Message = content.LooksLikeCommand(query)
		return r.finish(res)
	}

	r.recordSearch(ctx, userID, query)

	if !toggles.AnyEnabled() {
		slog.Info("Search attempted with all sources disabled", "user", userID)
		res.Outcome = OutcomeSourcesDisabled
		res.Message = content.MsgSourcesDisabled
		return r.finish(res)
	}

	start := time.Now()
	rec, links := r.fetch(ctx, query, toggles)
	slog.Debug("Sources finished", "query", query, "elapsed", time.Since(start), "metadata", !rec.IsEmpty(), "links", len(links))

	res.Record = rec
	res.Links = links
	res.LinksText = content.RenderLinks(links, r.labelMax)

	hasMetadata := !rec.IsEmpty()
	switch {
	case hasMetadata && len(links) > 0:
		res.Outcome = OutcomeFull
	case hasMetadata:
		res.Outcome = OutcomeMetadataOnly
		if toggles.Links {
			res.Message = content.MsgLinksUnavailable
		}
	case len(links) > 0:
		res.Outcome = OutcomeLinksOnly
		if toggles.Metadata {
			res.Message = content.MsgNoMetadata
		}
	default:
		res.Outcome = OutcomeNoResults
		res.Message = content.NothingFound(query)
		return r.finish(res)
	}

	if hasMetadata {
		res.MetadataText = content.RenderMovie(rec)
		r.recordShown(ctx, userID, rec)
		res.PosterPath, res.PosterTemporary = r.resolvePoster(ctx, rec)
	}

	return r.finish(res)
}

// fetch runs the enabled adapters concurrently. Adapters never fail and the
// group has no shared context: a slow source never cancels the other one.
func (r *Resolver) fetch(ctx context.Context, query string, toggles movie.SourceToggles) (movie.Record, []movie.LinkCandidate) {
	var (
		g     errgroup.Group
		rec   movie.Record
		links []movie.LinkCandidate
	)
	if toggles.Metadata && r.metadata != nil {
		g.Go(func() error {
			rec = r.metadata.FetchMetadata(ctx, query)
			return nil
		})
	}
	if toggles.Links && r.links != nil {
		g.Go(func() error {
			links = r.links.FetchLinks(ctx, query)
			return nil
		})
	}
	_ = g.Wait()
	return rec, links
}

func (r *Resolver) finish(res Result) Result {
	metrics.ResolutionsTotal.WithLabelValues(string(res.Outcome)).Inc()
	slog.Info("Query resolved", "query", res.Query, "outcome", res.Outcome, "links", len(res.Links), "poster", res.PosterPath != "")
	return res
}

func (r *Resolver) recordSearch(ctx context.Context, userID int64, query string) {
	if r.history == nil {
		return
	}
	if err := r.history.RecordSearch(ctx, userID, query); err != nil {
		slog.Warn("Failed to record search", "user", userID, "query", query, "error", err)
	}
}

func (r *Resolver) recordShown(ctx context.Context, userID int64, rec movie.Record) {
	if r.history == nil {
		return
	}
	if err := r.history.RecordMovieShown(ctx, userID, rec.Title, rec.Year, rec.Description); err != nil {
		slog.Warn("Failed to record shown movie", "user", userID, "title", rec.Title, "error", err)
	}
}
