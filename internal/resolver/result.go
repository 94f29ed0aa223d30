package resolver

import (
	"errors"
	"os"
	"strings"

	"github.com/lepinkainen/cinemabot/internal/movie"
)

// Outcome classifies the shape of a resolved query.
type Outcome string

const (
	OutcomeSourcesDisabled Outcome = "SOURCES_DISABLED"
	OutcomeNoResults       Outcome = "NO_RESULTS"
	OutcomeMetadataOnly    Outcome = "METADATA_ONLY"
	OutcomeLinksOnly       Outcome = "LINKS_ONLY"
	OutcomeFull            Outcome = "FULL"
	// OutcomeCommandLike means the query matched a command keyword and nothing was fetched.
	OutcomeCommandLike Outcome = "COMMAND_LIKE"
)

// Result is everything a caller needs to answer one query.
type Result struct {
	Query   string  `json:"query"`
	Outcome Outcome `json:"outcome"`
	// Message is set for outcomes that carry no movie data, and for partial results.
	Message      string                `json:"message,omitempty"`
	Record       movie.Record          `json:"record"`
	MetadataText string                `json:"metadataText,omitempty"`
	Links        []movie.LinkCandidate `json:"links,omitempty"`
	LinksText    string                `json:"linksText,omitempty"`
	PosterPath   string                `json:"posterPath,omitempty"`
	// PosterTemporary marks a poster file the caller owns and must remove via Cleanup.
	PosterTemporary bool `json:"posterTemporary,omitempty"`
}

// Text joins the renderable parts of the result into one reply.
func (r Result) Text() string {
	var parts []string
	for _, p := range []string{r.MetadataText, r.LinksText, r.Message} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Cleanup removes a temporary poster file. Cached posters are left in place.
func (r Result) Cleanup() error {
	if !r.PosterTemporary || r.PosterPath == "" {
		return nil
	}
	if err := os.Remove(r.PosterPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
