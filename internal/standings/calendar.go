package standings

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dencchi/f1-knowledge-base/internal/models"
	"github.com/Dencchi/f1-knowledge-base/internal/repository"
)

// CalendarEntry is one round of a season
type CalendarEntry struct {
	Race       *models.Race     `json:"race"`
	IsFinished bool             `json:"is_finished"`
	Podium     []*models.Result `json:"podium,omitempty"`
}

// Calendar lists the rounds of year. A round is finished once it has main
// results; its podium is the top three rows of the classification.
func (p *Profiles) Calendar(ctx context.Context, year int) ([]CalendarEntry, error) {
	races, err := p.repos.Race.List(ctx, repository.RaceFilter{Year: year})
	if err != nil {
		return nil, fmt.Errorf("failed to list %d races: %w", year, err)
	}
	sort.SliceStable(races, func(i, j int) bool { return races[i].Round < races[j].Round })

	results, err := p.repos.Result.List(ctx, models.SessionRace, repository.ResultFilter{Year: year})
	if err != nil {
		return nil, fmt.Errorf("failed to list %d results: %w", year, err)
	}
	byKey := groupByRace(results)

	out := make([]CalendarEntry, 0, len(races))
	for _, race := range races {
		rows := byKey[race.Key()]
		entry := CalendarEntry{Race: race, IsFinished: len(rows) > 0}
		if n := len(rows); n > 0 {
			if n > 3 {
				n = 3
			}
			entry.Podium = rows[:n]
		}
		out = append(out, entry)
	}
	return out, nil
}
