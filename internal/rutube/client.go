// Package rutube provides a client for the Rutube video search API.
package rutube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	cberrors "github.com/lepinkainen/cinemabot/internal/errors"
	"github.com/lepinkainen/cinemabot/internal/movie"
	"github.com/lepinkainen/cinemabot/internal/ratelimit"
)

const (
	// SourceName identifies Rutube in logs and metrics.
	SourceName = "rutube"

	defaultBaseURL       = "https://rutube.ru"
	defaultTimeout       = 15 * time.Second
	defaultRatePerSecond = 5
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client searches Rutube videos.
type Client struct {
	baseURL     string
	httpClient  HTTPDoer
	rateLimiter *ratelimit.Limiter
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

// WithBaseURL sets a custom base URL.
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

// NewClient creates a new Rutube client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		rateLimiter: ratelimit.New("Rutube", defaultRatePerSecond, defaultRatePerSecond),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Name returns the source name.
func (c *Client) Name() string {
	return SourceName
}

// Video is one item of the search response.
type Video struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	VideoURL string `json:"video_url"`
}

// SearchVideos runs a video search and returns results in the provider's relevance order.
func (c *Client) SearchVideos(ctx context.Context, query string) ([]movie.VideoDoc, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, cberrors.NewSourceUnavailableError(SourceName, 0, err)
	}

	params := url.Values{}
	params.Set("query", query)
	endpoint := fmt.Sprintf("%s/api/search/video/?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, cberrors.NewSourceUnavailableError(SourceName, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, cberrors.NewSourceUnavailableError(SourceName, resp.StatusCode,
			fmt.Errorf("rutube: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var response struct {
		Results []Video `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("rutube: decode response: %w", err)
	}

	docs := make([]movie.VideoDoc, 0, len(response.Results))
	for _, v := range response.Results {
		docs = append(docs, movie.VideoDoc{ID: v.ID, Title: v.Title, URL: c.videoURL(v)})
	}
	return docs, nil
}

// videoURL returns the video's URL, building the watch page URL from the id when absent.
func (c *Client) videoURL(v Video) string {
	if u := strings.TrimSpace(v.VideoURL); u != "" {
		return u
	}
	if v.ID == "" {
		return ""
	}
	return defaultBaseURL + "/video/" + v.ID + "/"
}
