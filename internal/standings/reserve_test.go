package standings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rosterOf(races ...int) []LineupDriver {
	out := make([]LineupDriver, len(races))
	for i, n := range races {
		out[i] = LineupDriver{Races: n}
	}
	return out
}

func reserveFlags(roster []LineupDriver) []bool {
	out := make([]bool, len(roster))
	for i, d := range roster {
		out[i] = d.IsReserve
	}
	return out
}

func TestReservePolicyApply(t *testing.T) {
	tests := []struct {
		name  string
		races []int
		want  []bool
	}{
		{"stand-in below half", []int{10, 10, 3}, []bool{false, false, true}},
		{"leader too short to judge", []int{4, 4, 2}, []bool{false, false, false}},
		{"exactly half is regular", []int{10, 5}, []bool{false, false}},
		{"just past the minimum", []int{5, 2}, []bool{false, true}},
		{"empty roster", nil, []bool{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roster := rosterOf(tt.races...)
			DefaultReservePolicy().Apply(roster)
			assert.Equal(t, tt.want, reserveFlags(roster))
		})
	}
}

func TestReservePolicyCustom(t *testing.T) {
	strict := ReservePolicy{MinLeaderRaces: 0, Ratio: 0.9}
	assert.True(t, strict.IsReserve(8, 10))
	assert.False(t, strict.IsReserve(9, 10))
	assert.False(t, strict.IsReserve(0, 0))
}

func TestComparisonSkipsReserves(t *testing.T) {
	roster := []LineupDriver{
		{Points: 300},
		{Points: 120, IsReserve: true},
		{Points: 80},
		{Points: 10},
	}

	got := Comparison(roster)
	assert.Len(t, got, 2)
	assert.Equal(t, 300.0, got[0].Points)
	assert.Equal(t, 80.0, got[1].Points)

	assert.Empty(t, Comparison(nil))
}
