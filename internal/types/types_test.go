package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordListUnmarshalShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"json array", `["Python","Go"]`, []string{"Python", "Go"}},
		{"json array inside a string", `"[\"Python\",\"Go\"]"`, []string{"Python", "Go"}},
		{"csv string", `"Python, Go , SQL"`, []string{"Python", "Go", "SQL"}},
		{"csv with empties", `"Python,,  ,Go"`, []string{"Python", "Go"}},
		{"single keyword string", `"Python"`, []string{"Python"}},
		{"empty string", `""`, nil},
		{"null", `null`, nil},
		{"wrong type degrades", `42`, nil},
		{"object degrades", `{"a":1}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var k KeywordList
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &k))
			assert.Equal(t, KeywordList(tt.want), k)
		})
	}
}

func TestKeywordListInsideJobPosting(t *testing.T) {
	raw := `{"urn":"urn:1","keywords":"[\"Go\",\"SQL\"]","responsibilities":["x"],"qualifications":["y"]}`

	var job JobPosting
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Equal(t, KeywordList{"Go", "SQL"}, job.Keywords)
	assert.True(t, job.IsComplete())
}

func TestParseKeywordsFallbackChain(t *testing.T) {
	assert.Equal(t, []string{"Python", "Go"}, ParseKeywords(`["Python","Go"]`))
	assert.Equal(t, []string{`["broken`, `Go`}, ParseKeywords(`["broken, Go`))
	assert.Nil(t, ParseKeywords("  "))
}

func TestJobPostingIsComplete(t *testing.T) {
	complete := JobPosting{
		Keywords:         KeywordList{"Go"},
		Responsibilities: []string{"r"},
		Qualifications:   []string{"q"},
	}
	assert.True(t, complete.IsComplete())

	missingQualifications := complete
	missingQualifications.Qualifications = nil
	assert.False(t, missingQualifications.IsComplete())

	missingKeywords := complete
	missingKeywords.Keywords = nil
	assert.False(t, missingKeywords.IsComplete())
}
