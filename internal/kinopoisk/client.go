// Package kinopoisk provides a client for the unofficial Kinopoisk API.
package kinopoisk

import (
	"net/http"
	"strings"
	"time"

	"github.com/lepinkainen/cinemabot/internal/ratelimit"
)

const (
	// SourceName identifies Kinopoisk in logs, metrics and cached records.
	SourceName = "kinopoisk"

	defaultBaseURL       = "https://kinopoiskapiunofficial.tech"
	defaultPageBaseURL   = "https://www.kinopoisk.ru/film/"
	defaultTimeout       = 8 * time.Second
	defaultRatePerSecond = 5
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is a Kinopoisk API client.
type Client struct {
	token       string
	baseURL     string
	pageBaseURL string
	httpClient  HTTPDoer
	rateLimiter *ratelimit.Limiter
}

// NewClient creates a new Kinopoisk API client.
func NewClient(token string, opts ...Option) *Client {
	client := &Client{
		token:       token,
		baseURL:     defaultBaseURL,
		pageBaseURL: defaultPageBaseURL,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		rateLimiter: ratelimit.New("Kinopoisk", defaultRatePerSecond, defaultRatePerSecond),
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

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.baseURL = strings.TrimSuffix(base, "/")
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
