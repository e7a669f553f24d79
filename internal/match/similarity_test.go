package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarityIdentity(t *testing.T) {
	for _, s := range []string{"go", "python", "kubernetes", "distributed systems"} {
		assert.InDelta(t, 1.0, CosineSimilarity(s, s, 2), 1e-9, "sim(%q, %q)", s, s)
	}
}

func TestCosineSimilaritySymmetry(t *testing.T) {
	pairs := [][2]string{
		{"python", "typhon"},
		{"javascript", "typescript"},
		{"postgres", "postgresql"},
		{"ab", "cd"},
	}
	for _, p := range pairs {
		assert.Equal(t, CosineSimilarity(p[0], p[1], 2), CosineSimilarity(p[1], p[0], 2),
			"sim(%q,%q) must be symmetric", p[0], p[1])
	}
}

func TestCosineSimilarityDegenerateInput(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		n    int
	}{
		{"empty a", "", "python", 2},
		{"empty b", "python", "", 2},
		{"a shorter than n", "x", "python", 2},
		{"b shorter than n", "python", "y", 2},
		{"both shorter than n", "a", "b", 2},
		{"n below one", "python", "python", 0},
		{"negative n", "python", "python", -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Zero(t, CosineSimilarity(tt.a, tt.b, tt.n))
		})
	}
}

func TestCosineSimilarityRange(t *testing.T) {
	pairs := [][2]string{
		{"javascript", "typescript"},
		{"react", "redux"},
		{"aws", "gcp"},
		{"node", "nodejs"},
	}
	for _, p := range pairs {
		sim := CosineSimilarity(p[0], p[1], 2)
		assert.GreaterOrEqual(t, sim, 0.0)
		assert.LessOrEqual(t, sim, 1.0)
	}
}

func TestCosineSimilarityDisjointGrams(t *testing.T) {
	// No shared bigrams at all.
	assert.Zero(t, CosineSimilarity("aaaa", "bbbb", 2))
}

func TestCosineSimilarityCountsMultiplicity(t *testing.T) {
	// "aaa" has the bigram "aa" twice; "aa" has it once. The vectors point
	// the same direction, so similarity is still 1.
	assert.InDelta(t, 1.0, CosineSimilarity("aaa", "aa", 2), 1e-9)
}
