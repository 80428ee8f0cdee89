package models

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want StringList
	}{
		{name: "array of strings", in: `["Fantasy", "Adventure"]`, want: StringList{"Fantasy", "Adventure"}},
		{name: "array trims and drops blanks", in: `[" Fantasy ", "", "  "]`, want: StringList{"Fantasy"}},
		{name: "comma-separated string", in: `"Science Fiction, Classics"`, want: StringList{"Science Fiction", "Classics"}},
		{name: "single string", in: `"Romance"`, want: StringList{"Romance"}},
		{name: "empty string", in: `""`, want: nil},
		{name: "null", in: `null`, want: nil},
		{name: "bare number", in: `42`, want: StringList{"42"}},
		{name: "array with number element", in: `["Fantasy", 7]`, want: StringList{"Fantasy", "7"}},
		{name: "object normalizes to empty", in: `{"a": 1}`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StringList
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBook_DecodeMixedShapes(t *testing.T) {
	raw := `{
		"id": "b1",
		"title": "Dune",
		"authors": "Frank Herbert",
		"genres": ["Science Fiction", "Classics"],
		"description": "Spice and sand",
		"tags": null,
		"rating": 4.2
	}`

	var book Book
	require.NoError(t, json.Unmarshal([]byte(raw), &book))

	assert.Equal(t, "b1", book.ID)
	assert.Equal(t, StringList{"Frank Herbert"}, book.Authors)
	assert.Equal(t, StringList{"Science Fiction", "Classics"}, book.Genres)
	assert.Nil(t, book.Tags)
	assert.InDelta(t, 4.2, book.Rating, 1e-9)
	assert.Nil(t, book.ClusterID)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, StringList{"a", "b"}, SplitList(" a , b "))
	assert.Nil(t, SplitList("   "))
	assert.Nil(t, SplitList(""))
}
