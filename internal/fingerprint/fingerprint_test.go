package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trailing space", input: "Matrix ", want: "matrix"},
		{name: "inner whitespace runs", input: "  The\tDark \n Knight ", want: "the dark knight"},
		{name: "cyrillic", input: "МАТРИЦА", want: "матрица"},
		{name: "empty", input: "   ", want: ""},
		{name: "decomposed accent", input: "Ame\u0301lie", want: "am\u00e9lie"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestOfSharesKeyAcrossTrivialVariants(t *testing.T) {
	groups := [][]string{
		{"Matrix ", "matrix", "  MATRIX", "mAtRiX\n"},
		{"Матрица", "матрица", " МАТРИЦА  "},
		{"the  dark knight", "The Dark\tKnight"},
	}

	for _, group := range groups {
		want := Of(group[0])
		for _, variant := range group[1:] {
			assert.Equal(t, want, Of(variant), "variant %q of %q", variant, group[0])
		}
	}
}

func TestOfDistinguishesDifferentQueries(t *testing.T) {
	assert.NotEqual(t, Of("venom"), Of("venom 2"))
	assert.NotEqual(t, Of("matrix"), Of("matrix reloaded"))
}

func TestOfIsHex128Bit(t *testing.T) {
	key := Of("матрица")
	assert.Len(t, key, 32)
	assert.Regexp(t, "^[0-9a-f]{32}$", key)
}
