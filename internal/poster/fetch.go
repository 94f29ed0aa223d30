package poster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	cberrors "github.com/lepinkainen/cinemabot/internal/errors"
)

const (
	defaultFetchTimeout = 15 * time.Second
	maxPosterBytes      = 10 << 20
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Fetcher downloads poster images and validates that they decode.
type Fetcher struct {
	httpClient HTTPDoer
	timeout    time.Duration
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) FetcherOption {
	return func(f *Fetcher) {
		if c != nil {
			f.httpClient = c
		}
	}
}

// WithTimeout bounds each download.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{},
		timeout:    defaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Image is a downloaded poster in its original encoding.
type Image struct {
	Data []byte
	Ext  string
}

// Fetch downloads imageURL and returns its bytes unmodified once they decode as an image.
func (f *Fetcher) Fetch(ctx context.Context, imageURL string) (Image, error) {
	if strings.TrimSpace(imageURL) == "" {
		return Image{}, cberrors.NewPosterIOError("", "fetch", fmt.Errorf("empty poster url"))
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return Image{}, cberrors.NewPosterIOError("", "fetch", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return Image{}, cberrors.NewPosterIOError("", "fetch", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Image{}, cberrors.NewPosterIOError("", "fetch", fmt.Errorf("unexpected status %d downloading image", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPosterBytes))
	if err != nil {
		return Image{}, cberrors.NewPosterIOError("", "fetch", err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, cberrors.NewPosterIOError("", "decode", err)
	}
	if _, err := imaging.Decode(bytes.NewReader(data)); err != nil {
		return Image{}, cberrors.NewPosterIOError("", "decode", err)
	}

	return Image{Data: data, Ext: extension(format)}, nil
}

func extension(format string) string {
	switch format {
	case "jpeg":
		return "jpg"
	case "":
		return "jpg"
	default:
		return format
	}
}
