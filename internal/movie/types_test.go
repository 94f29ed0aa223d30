package movie

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordIsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		empty  bool
	}{
		{name: "zero value", record: Record{}, empty: true},
		{name: "whitespace only", record: Record{CatalogID: " ", Title: "  "}, empty: true},
		{name: "title only", record: Record{Title: "Матрица"}, empty: false},
		{name: "id only", record: Record{CatalogID: "301"}, empty: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.empty, tt.record.IsEmpty())
		})
	}
}

func TestRecordJSONKeepsAbsentRating(t *testing.T) {
	data, err := json.Marshal(Record{CatalogID: "1", Title: "No Rating"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "rating")

	var decoded Record
	require.NoError(t, json.Unmarshal([]byte(`{"catalogId":"301","title":"Матрица","rating":8.7}`), &decoded))
	require.NotNil(t, decoded.Rating)
	assert.InDelta(t, 8.7, *decoded.Rating, 1e-9)
	assert.True(t, decoded.HasCatalogID())
}

func TestSourceTogglesAnyEnabled(t *testing.T) {
	assert.False(t, SourceToggles{}.AnyEnabled())
	assert.True(t, SourceToggles{Metadata: true}.AnyEnabled())
	assert.True(t, SourceToggles{Links: true}.AnyEnabled())
}
