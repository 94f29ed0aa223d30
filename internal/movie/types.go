// Package movie defines the normalized records shared by sources, caches and the resolver.
package movie

import "strings"

// NoTitle is used when a catalog entry has an identifier but no usable title.
const NoTitle = "Untitled"

// Record is the normalized representation of one title from a metadata catalog.
// A Record is never mutated after an adapter builds it.
type Record struct {
	CatalogID      string   `json:"catalogId,omitempty"`
	Source         string   `json:"source,omitempty"`
	Title          string   `json:"title"`
	Year           int      `json:"year,omitempty"` // 0 when unknown
	Description    string   `json:"description,omitempty"`
	Rating         *float64 `json:"rating,omitempty"` // 0-10
	Genres         []string `json:"genres,omitempty"`
	Countries      []string `json:"countries,omitempty"`
	RuntimeMinutes int      `json:"runtimeMinutes,omitempty"` // 0 when unknown
	PosterURL      string   `json:"posterUrl,omitempty"`
	PageURL        string   `json:"pageUrl,omitempty"`
}

// IsEmpty reports whether the record carries no identity at all and must not be rendered.
func (r Record) IsEmpty() bool {
	return strings.TrimSpace(r.CatalogID) == "" && strings.TrimSpace(r.Title) == ""
}

// HasCatalogID reports whether the record was identified by the catalog.
func (r Record) HasCatalogID() bool {
	return strings.TrimSpace(r.CatalogID) != ""
}

// Origin tells whether a link came from a live search or from the cache.
type Origin string

const (
	OriginFresh     Origin = "fresh"
	OriginFromCache Origin = "cache"
)

// LinkCandidate is one external watch link.
type LinkCandidate struct {
	Label  string `json:"label"`
	URL    string `json:"url"`
	Origin Origin `json:"origin"`
}

// SourceToggles selects which sources a request consults.
type SourceToggles struct {
	Metadata bool `json:"metadata"`
	Links    bool `json:"links"`
}

// AnyEnabled reports whether at least one source is switched on.
func (t SourceToggles) AnyEnabled() bool {
	return t.Metadata || t.Links
}

// Float returns a pointer to v, for building records with a rating.
func Float(v float64) *float64 {
	return &v
}
