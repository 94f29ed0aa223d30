package note

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndBuild(t *testing.T) {
	content := "---\ntitle: Матрица\nyear: 1999\ntags: [movie, sci-fi]\nwatched: true\n---\nBody text\n"

	n, err := Parse([]byte(content))
	require.NoError(t, err)

	assert.Equal(t, []string{"tags", "title", "watched", "year"}, n.Frontmatter.Keys())
	assert.Equal(t, "Матрица", n.Frontmatter.GetString("title"))
	year, ok := n.Frontmatter.Get("year")
	require.True(t, ok)
	assert.Equal(t, 1999, year)
	assert.Equal(t, "Body text\n", n.Body)

	out, err := n.Build()
	require.NoError(t, err)
	assert.Equal(t, "---\ntags: [movie, sci-fi]\ntitle: Матрица\nwatched: true\nyear: 1999\n---\nBody text\n", string(out))
}

func TestParseWithoutFrontmatter(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "plain body", content: "just text"},
		{name: "unterminated block", content: "---\ntitle: x\nno end"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := Parse([]byte(tc.content))
			require.NoError(t, err)
			assert.Empty(t, n.Frontmatter.Keys())
			assert.Equal(t, tc.content, n.Body)

			out, err := n.Build()
			require.NoError(t, err)
			assert.Equal(t, tc.content, string(out))
		})
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: [unclosed\n---\nbody"))
	assert.Error(t, err)
}

func TestParseCRLF(t *testing.T) {
	n, err := Parse([]byte("---\r\ntitle: Venom\r\n---\r\nbody\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "Venom", n.Frontmatter.GetString("title"))
	assert.Equal(t, "body\n", n.Body)
}

func TestNormalizeTag(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{in: "фантастика", want: "фантастика"},
		{in: "#Sci Fi", want: "Sci-Fi"},
		{in: "  боевик  ", want: "боевик"},
		{in: "Action & Adventure", want: "Action-and-Adventure"},
		{in: "a -- b", want: "a-b"},
		{in: "#", want: ""},
		{in: "", want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeTag(tc.in))
		})
	}
}

func TestMergeTags(t *testing.T) {
	got := MergeTags([]string{"favorite", "movie"}, []string{"movie", "драма", " "})
	assert.Equal(t, []string{"favorite", "movie", "драма"}, got)
}
