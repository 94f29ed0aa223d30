package source

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/lepinkainen/cinemabot/internal/fingerprint"
	"github.com/lepinkainen/cinemabot/internal/movie"
)

// Synonyms maps a normalized user query to the title the catalog knows it by,
// e.g. "the matrix" -> "Матрица".
type Synonyms map[string]string

// NewSynonyms normalizes the keys of raw.
func NewSynonyms(raw map[string]string) Synonyms {
	s := make(Synonyms, len(raw))
	for alias, title := range raw {
		alias = fingerprint.Normalize(alias)
		title = strings.TrimSpace(title)
		if alias != "" && title != "" {
			s[alias] = title
		}
	}
	return s
}

// lookup returns the catalog title registered for query, if any.
func (s Synonyms) lookup(query string) (string, bool) {
	if s == nil {
		return "", false
	}
	title, ok := s[fingerprint.Normalize(query)]
	return title, ok
}

var folder = cases.Fold()

func fold(s string) string {
	return folder.String(strings.Join(strings.Fields(s), " "))
}

// words splits s into letter/digit runs.
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsWords reports whether needle occurs in hay as a contiguous run of whole words.
func containsWords(hay, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(hay) {
		return false
	}
	for i := 0; i+len(needle) <= len(hay); i++ {
		match := true
		for j := range needle {
			if hay[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// BestMatch picks the index of the document that best matches query. Tiers, in
// order: exact case-insensitive title (including alternate titles and synonym
// targets), whole-word match, substring match, and finally the top-ranked
// document. It returns -1 when docs is empty.
func BestMatch(query string, docs []movie.CatalogDoc, synonyms Synonyms) int {
	if len(docs) == 0 {
		return -1
	}

	needles := []string{fold(query)}
	if title, ok := synonyms.lookup(query); ok {
		needles = append(needles, fold(title))
	}

	titles := make([][]string, len(docs))
	for i, d := range docs {
		for _, t := range d.Titles() {
			titles[i] = append(titles[i], fold(t))
		}
	}

	tiers := []func(title, needle string) bool{
		func(title, needle string) bool { return title == needle },
		func(title, needle string) bool { return containsWords(words(title), words(needle)) },
		func(title, needle string) bool { return needle != "" && strings.Contains(title, needle) },
	}
	for _, matches := range tiers {
		for i := range docs {
			for _, title := range titles[i] {
				for _, needle := range needles {
					if matches(title, needle) {
						return i
					}
				}
			}
		}
	}
	return 0
}
