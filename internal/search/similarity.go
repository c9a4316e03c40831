package search

import (
	"strings"

	"github.com/gosimple/unidecode"
	"github.com/xrash/smetrics"
)

// Similarity scores a candidate string against a query on a 0-100 scale
type Similarity interface {
	Score(query, candidate string) float64
}

// SimilarityFunc adapts a plain function to Similarity
type SimilarityFunc func(query, candidate string) float64

// Score calls f(query, candidate)
func (f SimilarityFunc) Score(query, candidate string) float64 {
	return f(query, candidate)
}

// DefaultSimilarity is the partial ratio used unless an engine is given another scorer
var DefaultSimilarity Similarity = SimilarityFunc(PartialRatio)

// Normalize folds s to lowercase ASCII, so "Pérez" and "perez" compare equal
// and Cyrillic input is transliterated.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
}

// ratio is the InDel similarity of two strings: a substitution costs a
// deletion plus an insertion.
func ratio(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	dist := smetrics.WagnerFischer(a, b, 1, 1, 2)
	return 100 * float64(total-dist) / float64(total)
}

// PartialRatio scores the best alignment of the shorter string inside the
// longer one. A string contained in the other scores 100 regardless of the
// length difference. Either side empty scores 0.
func PartialRatio(a, b string) float64 {
	a, b = Normalize(a), Normalize(b)
	if a == "" || b == "" {
		return 0
	}

	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if strings.Contains(long, short) {
		return 100
	}

	n := len(short)
	best := 0.0
	for i := 0; i+n <= len(long); i++ {
		best = max(best, ratio(short, long[i:i+n]))
	}
	// windows overhanging either end of the longer string
	for i := 1; i < n; i++ {
		best = max(best, ratio(short, long[:i]), ratio(short, long[len(long)-i:]))
	}
	return best
}
