package source

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lepinkainen/cinemabot/internal/cache"
	"github.com/lepinkainen/cinemabot/internal/metrics"
	"github.com/lepinkainen/cinemabot/internal/movie"
)

const (
	defaultLinksTimeout = 15 * time.Second
	defaultLinkLimit    = 3
	defaultLinkSuffix   = "фильм"
	defaultLabelMax     = 60
	ellipsis            = "…"
)

// VideoSearcher searches a video provider.
type VideoSearcher interface {
	Name() string
	SearchVideos(ctx context.Context, query string) ([]movie.VideoDoc, error)
}

// LinkAdapter returns a short ranked list of watch links for a query.
type LinkAdapter struct {
	searcher VideoSearcher
	cache    *cache.Store
	timeout  time.Duration
	limit    int
	suffix   string
	labelMax int
}

// LinkOption configures a LinkAdapter.
type LinkOption func(*LinkAdapter)

// WithLinksTimeout bounds each video search.
func WithLinksTimeout(d time.Duration) LinkOption {
	return func(a *LinkAdapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLinkLimit caps the number of links returned.
func WithLinkLimit(n int) LinkOption {
	return func(a *LinkAdapter) {
		if n > 0 {
			a.limit = n
		}
	}
}

// WithQuerySuffix sets the word appended to every video search.
func WithQuerySuffix(suffix string) LinkOption {
	return func(a *LinkAdapter) {
		a.suffix = strings.TrimSpace(suffix)
	}
}

// WithLabelMax sets the maximum label length in characters.
func WithLabelMax(n int) LinkOption {
	return func(a *LinkAdapter) {
		if n > 0 {
			a.labelMax = n
		}
	}
}

// NewLinkAdapter creates an adapter over searcher backed by store.
func NewLinkAdapter(searcher VideoSearcher, store *cache.Store, opts ...LinkOption) *LinkAdapter {
	a := &LinkAdapter{
		searcher: searcher,
		cache:    store,
		timeout:  defaultLinksTimeout,
		limit:    defaultLinkLimit,
		suffix:   defaultLinkSuffix,
		labelMax: defaultLabelMax,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FetchLinks returns up to the configured number of links for query. It never
// fails; provider errors yield an empty list that is not cached.
func (a *LinkAdapter) FetchLinks(ctx context.Context, query string) []movie.LinkCandidate {
	source := a.searcher.Name()

	links, cached, err := cache.GetOrFetch(a.cache, cache.NamespaceLinks, query,
		func() ([]movie.LinkCandidate, error) { return a.search(ctx, query) },
		func(links []movie.LinkCandidate) bool { return len(links) > 0 },
	)
	if err != nil {
		metrics.SourceRequestsTotal.WithLabelValues(source, "error").Inc()
		slog.Warn("Link source unavailable", "source", source, "query", query, "error", err)
		return nil
	}
	if !cached {
		return links
	}

	out := make([]movie.LinkCandidate, len(links))
	for i, l := range links {
		l.Origin = movie.OriginFromCache
		out[i] = l
	}
	slog.Debug("Using cached links", "query", query, "count", len(out))
	return out
}

// search queries the provider and keeps the first usable results.
func (a *LinkAdapter) search(ctx context.Context, query string) ([]movie.LinkCandidate, error) {
	source := a.searcher.Name()
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	searchQuery := query
	if a.suffix != "" {
		searchQuery = query + " " + a.suffix
	}

	start := time.Now()
	docs, err := a.searcher.SearchVideos(ctx, searchQuery)
	metrics.SourceRequestDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	links := make([]movie.LinkCandidate, 0, a.limit)
	for _, d := range docs {
		if len(links) >= a.limit {
			break
		}
		u, ok := normalizeURL(d.URL)
		if !ok {
			continue
		}
		links = append(links, movie.LinkCandidate{
			Label:  truncateLabel(d.Title, a.labelMax),
			URL:    u,
			Origin: movie.OriginFresh,
		})
	}

	if len(links) == 0 {
		metrics.SourceRequestsTotal.WithLabelValues(source, "empty").Inc()
		slog.Info("No links found", "source", source, "query", searchQuery)
		return nil, nil
	}

	metrics.SourceRequestsTotal.WithLabelValues(source, "ok").Inc()
	slog.Info("Fetched links", "source", source, "query", searchQuery, "count", len(links))
	return links, nil
}

// normalizeURL makes raw absolute, defaulting to https when no scheme is present.
func normalizeURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	switch {
	case strings.HasPrefix(raw, "//"):
		raw = "https:" + raw
	case !strings.Contains(raw, "://"):
		raw = "https://" + strings.TrimPrefix(raw, "/")
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return u.String(), true
}

// truncateLabel shortens label to limit characters, ending with an ellipsis when cut.
func truncateLabel(label string, limit int) string {
	label = strings.Join(strings.Fields(label), " ")
	if label == "" {
		return "Video"
	}
	if utf8.RuneCountInString(label) <= limit {
		return label
	}
	runes := []rune(label)
	return strings.TrimSpace(string(runes[:limit-1])) + ellipsis
}
