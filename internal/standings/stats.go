package standings

import (
	"github.com/shopspring/decimal"

	"github.com/Dencchi/f1-knowledge-base/internal/models"
)

// Stats are counting statistics over a set of main results. Sprint results
// only ever contribute points.
type Stats struct {
	Races   int     `json:"races"`
	Wins    int     `json:"wins"`
	Podiums int     `json:"podiums"`
	Poles   int     `json:"poles"`
	DNFs    int     `json:"dnfs"`
	Top10s  int     `json:"top10s"`
	Points  float64 `json:"points"`
}

// IsNumericFinish reports whether a position text is a plain finishing position
func IsNumericFinish(positionText string) bool {
	if positionText == "" {
		return false
	}
	for i := 0; i < len(positionText); i++ {
		if positionText[i] < '0' || positionText[i] > '9' {
			return false
		}
	}
	return true
}

// IsDNF reports whether a position text counts as did-not-finish. A
// disqualification ("D") is not a DNF.
func IsDNF(positionText string) bool {
	return !IsNumericFinish(positionText) && positionText != models.PositionTextDisqualified
}

// ComputeStats counts one row per race. Sprint points are added when sprint is non-nil.
func ComputeStats(main, sprint []*models.Result) Stats {
	s := countRows(main)
	s.Races = len(main)
	s.Points = sumPoints(main, sprint)
	return s
}

// ComputeTeamStats is ComputeStats for a constructor fielding several
// entries per race: Races counts distinct races.
func ComputeTeamStats(main, sprint []*models.Result) Stats {
	s := countRows(main)
	races := make(map[models.RaceKey]struct{}, len(main))
	for _, r := range main {
		races[r.Race] = struct{}{}
	}
	s.Races = len(races)
	s.Points = sumPoints(main, sprint)
	return s
}

func countRows(main []*models.Result) Stats {
	var s Stats
	for _, r := range main {
		if r.FinishedAt(1) {
			s.Wins++
		}
		if r.FinishedWithin(3) {
			s.Podiums++
		}
		if r.FinishedWithin(10) {
			s.Top10s++
		}
		if r.Grid == 1 {
			s.Poles++
		}
		if IsDNF(r.PositionText) {
			s.DNFs++
		}
	}
	return s
}

func sumPoints(sets ...[]*models.Result) float64 {
	total := decimal.Zero
	for _, set := range sets {
		for _, r := range set {
			total = total.Add(decimal.NewFromFloat(r.Points))
		}
	}
	return total.InexactFloat64()
}

// BestFinish returns the best classified position, nil when never classified
func BestFinish(main []*models.Result) *int {
	var best *int
	for _, r := range main {
		if r.Position != nil && (best == nil || *r.Position < *best) {
			p := *r.Position
			best = &p
		}
	}
	return best
}
