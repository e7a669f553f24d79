package match

import "math"

// ngramCounts builds the multiset of length-n contiguous rune substrings
// of s. Returns nil when s is shorter than n runes.
func ngramCounts(s string, n int) map[string]int {
	runes := []rune(s)
	if len(runes) < n {
		return nil
	}

	counts := make(map[string]int, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		counts[string(runes[i:i+n])]++
	}
	return counts
}

// CosineSimilarity computes character n-gram cosine similarity between a
// and b, treating each string's n-gram multiset as a sparse frequency
// vector. The result is in [0,1] and symmetric. Degenerate input (n < 1,
// either string shorter than n runes, or empty vectors) yields 0; the
// function never divides by zero.
func CosineSimilarity(a, b string, n int) float64 {
	if n < 1 {
		return 0
	}

	va := ngramCounts(a, n)
	vb := ngramCounts(b, n)
	if len(va) == 0 || len(vb) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for gram, ca := range va {
		normA += float64(ca * ca)
		if cb, ok := vb[gram]; ok {
			dot += float64(ca * cb)
		}
	}
	for _, cb := range vb {
		normB += float64(cb * cb)
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
