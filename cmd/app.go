package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/lepinkainen/cinemabot/internal/cache"
	"github.com/lepinkainen/cinemabot/internal/config"
	"github.com/lepinkainen/cinemabot/internal/history"
	"github.com/lepinkainen/cinemabot/internal/kinopoisk"
	"github.com/lepinkainen/cinemabot/internal/movie"
	"github.com/lepinkainen/cinemabot/internal/poster"
	"github.com/lepinkainen/cinemabot/internal/resolver"
	"github.com/lepinkainen/cinemabot/internal/rutube"
	"github.com/lepinkainen/cinemabot/internal/source"
	"github.com/lepinkainen/cinemabot/internal/tmdb"
)

const posterDirName = "posters"

// app holds the long-lived collaborators shared by all commands.
type app struct {
	cfg      *config.Config
	cache    *cache.Store
	posters  *poster.Store
	history  *history.Store
	resolver *resolver.Resolver
}

// openStorage opens caches and the history database without touching remote sources.
func openStorage(cfg *config.Config) (*app, error) {
	store, err := cache.Open(cfg.CacheBackend, cfg.CacheDir, cache.WithTTL(cfg.CacheTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	posters, err := poster.NewStore(filepath.Join(cfg.CacheDir, posterDirName), poster.WithTTL(cfg.CacheTTL))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to open poster store: %w", err)
	}

	hist, err := history.Open(cfg.HistoryDBFile)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	return &app{cfg: cfg, cache: store, posters: posters, history: hist}, nil
}

// newApp opens storage and wires the source adapters into a resolver.
func newApp(cfg *config.Config) (*app, error) {
	a, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	metadata := source.NewMetadataAdapter(newCatalog(cfg), a.cache,
		source.WithMetadataTimeout(cfg.MetadataTimeout),
		source.WithSynonyms(source.NewSynonyms(cfg.Synonyms)),
	)

	videos := rutube.NewClient(
		rutube.WithBaseURL(cfg.RutubeBaseURL),
		rutube.WithTimeout(cfg.LinksTimeout),
	)
	links := source.NewLinkAdapter(videos, a.cache,
		source.WithLinksTimeout(cfg.LinksTimeout),
		source.WithLinkLimit(cfg.LinksLimit),
		source.WithQuerySuffix(cfg.LinksSuffix),
		source.WithLabelMax(cfg.LinkLabelMax),
	)

	a.resolver = resolver.New(metadata, links, a.posters,
		resolver.WithHistory(a.history),
		resolver.WithPosterFetcher(poster.NewFetcher(poster.WithTimeout(cfg.PosterTimeout))),
		resolver.WithLabelMax(cfg.LinkLabelMax),
	)

	slog.Debug("Resolver ready",
		"provider", cfg.MetadataProvider,
		"cache_backend", cfg.CacheBackend,
		"cache_dir", cfg.CacheDir,
	)
	return a, nil
}

func newCatalog(cfg *config.Config) source.Catalog {
	if cfg.MetadataProvider == config.ProviderTMDB {
		return tmdb.NewClient(cfg.TMDBAPIKey,
			tmdb.WithBaseURL(cfg.TMDBBaseURL),
			tmdb.WithImageBaseURL(cfg.TMDBImageBaseURL),
			tmdb.WithLanguage(cfg.TMDBLanguage),
			tmdb.WithTimeout(cfg.MetadataTimeout),
		)
	}
	return kinopoisk.NewClient(cfg.KinopoiskToken,
		kinopoisk.WithBaseURL(cfg.KinopoiskBaseURL),
		kinopoisk.WithTimeout(cfg.MetadataTimeout),
	)
}

func (a *app) defaultToggles() movie.SourceToggles {
	return movie.SourceToggles{
		Metadata: a.cfg.DefaultMetadataEnabled,
		Links:    a.cfg.DefaultLinksEnabled,
	}
}

// toggles returns the user's stored toggles, falling back to configured defaults.
func (a *app) toggles(ctx context.Context, userID int64) movie.SourceToggles {
	t, err := a.history.GetToggles(ctx, userID, a.defaultToggles())
	if err != nil {
		slog.Warn("Failed to read user settings, using defaults", "user", userID, "error", err)
		return a.defaultToggles()
	}
	return t
}

// release removes a temporary poster once res has been delivered. Files inside
// the poster store are never removed here.
func (a *app) release(res resolver.Result) {
	if !res.PosterTemporary || a.posters.Owns(res.PosterPath) {
		return
	}
	if err := res.Cleanup(); err != nil {
		slog.Warn("Failed to remove temporary poster", "path", res.PosterPath, "error", err)
	}
}

func (a *app) Close() error {
	return errors.Join(a.cache.Close(), a.history.Close())
}

// loadApp is replaced in tests.
var loadApp = func(requireSources bool) (*app, error) {
	if !requireSources {
		cfg, err := config.Build()
		if err != nil {
			return nil, err
		}
		return openStorage(cfg)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return newApp(cfg)
}
