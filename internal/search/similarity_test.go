package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "perez", Normalize("  Pérez "))
	assert.Equal(t, "hulkenberg", Normalize("Hülkenberg"))
	assert.Equal(t, "", Normalize("   "))
}

func TestPartialRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "exact", a: "Verstappen", b: "verstappen", want: 100},
		{name: "contained in full name", a: "verstappen", b: "Max Verstappen", want: 100},
		{name: "long query containing candidate", a: "who was max verstappen", b: "Verstappen", want: 100},
		{name: "accent folded", a: "perez", b: "Sergio Pérez", want: 100},
		{name: "empty query", a: "", b: "Verstappen", want: 0},
		{name: "empty candidate", a: "verstappen", b: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PartialRatio(tt.a, tt.b))
		})
	}
}

func TestPartialRatioToleratesTypos(t *testing.T) {
	got := PartialRatio("verstapen", "Verstappen")
	assert.Greater(t, got, 80.0)
	assert.InDelta(t, 88.89, got, 0.01)

	assert.Greater(t, PartialRatio("italian gp", "Italian Grand Prix"), 80.0)
}

func TestPartialRatioIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"verstapen", "Verstappen"},
		{"monza italy", "Autodromo Nazionale di Monza Monza Italy"},
		{"hamilton", "Bottas"},
	}
	for _, p := range pairs {
		assert.Equal(t, PartialRatio(p[0], p[1]), PartialRatio(p[1], p[0]), p)
	}
}

func TestPartialRatioUnrelated(t *testing.T) {
	assert.Less(t, PartialRatio("hamilton", "Verstappen"), 60.0)
	assert.Less(t, PartialRatio("xyz", "Ferrari"), 50.0)
}

func TestSimilarityFunc(t *testing.T) {
	var s Similarity = SimilarityFunc(func(q, c string) float64 { return float64(len(q) + len(c)) })
	assert.Equal(t, 5.0, s.Score("ab", "cde"))
}
