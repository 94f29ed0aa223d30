// Package note exports resolved titles as markdown notes with YAML frontmatter.
package note

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---\n"

// Note is a markdown document with YAML frontmatter.
type Note struct {
	Frontmatter *Frontmatter
	Body        string
}

// Frontmatter keeps keys sorted so repeated exports produce identical files.
type Frontmatter struct {
	fields map[string]any
	keys   []string
}

// NewFrontmatter creates an empty Frontmatter.
func NewFrontmatter() *Frontmatter {
	return &Frontmatter{fields: make(map[string]any)}
}

// Parse splits content into frontmatter and body. Content without a complete
// frontmatter block is all body.
func Parse(content []byte) (*Note, error) {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	if !strings.HasPrefix(text, delimiter) {
		return &Note{Frontmatter: NewFrontmatter(), Body: text}, nil
	}

	rest := text[len(delimiter):]
	end := strings.Index(rest, "\n"+delimiter)
	if end == -1 {
		return &Note{Frontmatter: NewFrontmatter(), Body: text}, nil
	}

	var data map[string]any
	if err := yaml.Unmarshal([]byte(rest[:end]), &data); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	fm := NewFrontmatter()
	for key, value := range data {
		fm.Set(key, value)
	}
	body := strings.TrimPrefix(rest[end+1+len(delimiter):], "\n")
	return &Note{Frontmatter: fm, Body: body}, nil
}

// Build serializes the note.
func (n *Note) Build() ([]byte, error) {
	var buf bytes.Buffer
	if len(n.Frontmatter.keys) > 0 {
		data, err := yaml.Marshal(n.Frontmatter)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal frontmatter: %w", err)
		}
		buf.WriteString(delimiter)
		buf.Write(data)
		buf.WriteString(delimiter)
	}
	buf.WriteString(n.Body)
	return buf.Bytes(), nil
}

// Get returns the value stored under key.
func (f *Frontmatter) Get(key string) (any, bool) {
	v, ok := f.fields[key]
	return v, ok
}

// GetString returns a string value, or "" when missing or of another type.
func (f *Frontmatter) GetString(key string) string {
	s, _ := f.fields[key].(string)
	return s
}

// Set stores value under key.
func (f *Frontmatter) Set(key string, value any) {
	if _, exists := f.fields[key]; !exists {
		f.keys = append(f.keys, key)
		sort.Strings(f.keys)
	}
	f.fields[key] = value
}

// Keys returns the sorted keys.
func (f *Frontmatter) Keys() []string {
	return append([]string(nil), f.keys...)
}

// MarshalYAML writes keys in sorted order and tags as a flow sequence.
func (f *Frontmatter) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	for _, key := range f.keys {
		value := &yaml.Node{}
		if key == "tags" {
			value.Kind = yaml.SequenceNode
			value.Style = yaml.FlowStyle
			for _, tag := range stringsFromAny(f.fields[key]) {
				value.Content = append(value.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: tag})
			}
		} else if err := value.Encode(f.fields[key]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
	}
	return node, nil
}
