package standings

// ReservePolicy flags drivers who stood in for a team rather than raced a
// full season. It is a participation heuristic, not a sporting regulation.
type ReservePolicy struct {
	// MinLeaderRaces is the race count the busiest team driver must exceed
	// before anyone can be flagged.
	MinLeaderRaces int
	// Ratio of the busiest driver's race count below which a driver is a reserve.
	Ratio float64
}

// DefaultReservePolicy flags drivers with under half the races of the team's
// busiest driver once that driver has more than four starts.
func DefaultReservePolicy() ReservePolicy {
	return ReservePolicy{MinLeaderRaces: 4, Ratio: 0.5}
}

// IsReserve applies the policy to one driver's race count
func (p ReservePolicy) IsReserve(races, maxRaces int) bool {
	return maxRaces > p.MinLeaderRaces && float64(races) < float64(maxRaces)*p.Ratio
}

// Apply sets IsReserve on every roster entry
func (p ReservePolicy) Apply(roster []LineupDriver) {
	maxRaces := 0
	for _, d := range roster {
		if d.Races > maxRaces {
			maxRaces = d.Races
		}
	}
	for i := range roster {
		roster[i].IsReserve = p.IsReserve(roster[i].Races, maxRaces)
	}
}
