// Package tmdb provides a client for TheMovieDB API, used as an alternative metadata catalog.
package tmdb

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lepinkainen/cinemabot/internal/ratelimit"
)

const (
	// SourceName identifies TMDB in logs, metrics and cached records.
	SourceName = "tmdb"

	defaultBaseURL       = "https://api.themoviedb.org/3"
	defaultImageBaseURL  = "https://image.tmdb.org/t/p/w500"
	defaultPageBaseURL   = "https://www.themoviedb.org"
	defaultLanguage      = "ru-RU"
	defaultMaxAttempts   = 1
	defaultRatePerSecond = 4 // TMDB allows ~40 requests per 10 seconds
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is a TMDB API client.
type Client struct {
	apiKey        string
	baseURL       string
	imageBaseURL  string
	pageBaseURL   string
	language      string
	httpClient    HTTPDoer
	rateLimiter   *ratelimit.Limiter
	mu            sync.RWMutex
	genreCache    map[string]map[int]string
	retryAttempts int
}

// NewClient creates a new TMDB API client.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:        apiKey,
		baseURL:       defaultBaseURL,
		imageBaseURL:  defaultImageBaseURL,
		pageBaseURL:   defaultPageBaseURL,
		language:      defaultLanguage,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		rateLimiter:   ratelimit.New("TMDB", defaultRatePerSecond, defaultRatePerSecond),
		genreCache:    make(map[string]map[int]string),
		retryAttempts: defaultMaxAttempts,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithTimeout replaces the default HTTP client with one using timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(client *Client) {
		if timeout > 0 {
			client.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithBaseURL sets a custom base URL for the TMDB API.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithImageBaseURL sets a custom base URL for TMDB images.
func WithImageBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.imageBaseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithLanguage sets the response language, e.g. "ru-RU".
func WithLanguage(lang string) Option {
	return func(client *Client) {
		if lang != "" {
			client.language = lang
		}
	}
}

// WithRetryAttempts sets the number of attempts for requests failing on network errors.
func WithRetryAttempts(attempts int) Option {
	return func(client *Client) {
		if attempts > 0 {
			client.retryAttempts = attempts
		}
	}
}

// WithRateLimiter sets a custom rate limiter for the client.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(client *Client) {
		if limiter != nil {
			client.rateLimiter = limiter
		}
	}
}

// Name returns the source name.
func (c *Client) Name() string {
	return SourceName
}

// ImageURL constructs the full image URL from a poster path.
func (c *Client) ImageURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}
	return c.imageBaseURL + posterPath
}
