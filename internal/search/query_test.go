package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractYear(t *testing.T) {
	tests := []struct {
		text string
		year int
		ok   bool
	}{
		{"who was champion in 2021", 2021, true},
		{"McLaren 2021 result", 2021, true},
		{"1950", 1950, true},
		{"(2008)", 2008, true},
		{"кто чемпион 2021", 2021, true},
		{"2019 vs 2021", 2019, true},
		{"F2021", 0, false},
		{"12021", 0, false},
		{"2021_season", 0, false},
		{"2021г", 0, false},
		{"1899", 0, false},
		{"2100", 0, false},
		{"monza", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			year, _, ok := ExtractYear(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.year, year)
		})
	}
}

func TestParseQuery(t *testing.T) {
	q := ParseQuery("  McLaren 2021 result ")

	assert.Equal(t, "McLaren 2021 result", q.Text)
	assert.Equal(t, "mclaren 2021 result", q.Lower)
	assert.Equal(t, 2021, q.Year)
	assert.Equal(t, "2021", q.YearText)
	assert.Equal(t, "McLaren  result", q.Residual)
	assert.True(t, q.HasYear())
	assert.False(t, q.Empty())
}

func TestParseQueryYearOnly(t *testing.T) {
	q := ParseQuery("2021")
	assert.Equal(t, 2021, q.Year)
	assert.Empty(t, q.Residual)

	none := ParseQuery("Monza")
	assert.False(t, none.HasYear())
	assert.Equal(t, "Monza", none.Residual)

	assert.True(t, ParseQuery("   ").Empty())
}

func TestQueryContainsAny(t *testing.T) {
	keywords := DefaultConfig().ChampionKeywords

	assert.True(t, ParseQuery("who was Champion in 2021").ContainsAny(keywords))
	assert.True(t, ParseQuery("Кто ПОБЕДИЛ в 2008").ContainsAny(keywords))
	assert.True(t, ParseQuery("winner 1994").ContainsAny(keywords))
	assert.False(t, ParseQuery("McLaren 2021 result").ContainsAny(keywords))
	assert.False(t, ParseQuery("anything").ContainsAny(nil))
}
