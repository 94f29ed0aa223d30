package note

import (
	"regexp"
	"sort"
	"strings"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	hyphens    = regexp.MustCompile(`-+`)
)

// NormalizeTag turns a genre or country into a tag: no leading '#', hyphens
// instead of whitespace, case preserved. Empty input yields "".
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
	if tag == "" {
		return ""
	}
	tag = strings.ReplaceAll(tag, "&", "and")
	tag = strings.ReplaceAll(tag, "#", "")
	tag = whitespace.ReplaceAllString(tag, "-")
	tag = hyphens.ReplaceAllString(tag, "-")
	return strings.Trim(tag, "-")
}

// MergeTags normalizes both lists and returns their sorted union.
func MergeTags(existing, added []string) []string {
	seen := make(map[string]bool)
	for _, list := range [][]string{existing, added} {
		for _, tag := range list {
			if n := NormalizeTag(tag); n != "" {
				seen[n] = true
			}
		}
	}

	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// stringsFromAny reads a string list from a decoded YAML value.
func stringsFromAny(v any) []string {
	var out []string
	switch list := v.(type) {
	case []string:
		for _, s := range list {
			if s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
