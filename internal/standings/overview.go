package standings

import (
	"context"
	"fmt"

	"github.com/Dencchi/f1-knowledge-base/internal/models"
	"github.com/Dencchi/f1-knowledge-base/internal/repository"
)

// Counts are store-wide entity totals
type Counts struct {
	Drivers int `json:"drivers"`
	Teams   int `json:"teams"`
	Races   int `json:"races"`
}

// Overview is the home page summary of the current season
type Overview struct {
	Year       int              `json:"year"`
	NextRace   *models.Race     `json:"next_race,omitempty"`
	LastRace   *models.Race     `json:"last_race,omitempty"`
	LastWinner *models.Result   `json:"last_winner,omitempty"`
	TopDrivers []DriverStanding `json:"top_drivers"`
	Counts     Counts           `json:"counts"`
}

// Overview summarises the upcoming race, the latest winner and the top three
// drivers of the current season. The current season is the year of the next
// race, else of the last race, else fallbackYear.
func (p *Profiles) Overview(ctx context.Context, fallbackYear int) (*Overview, error) {
	today := p.clock.today()
	ov := &Overview{Year: fallbackYear}

	next, err := p.repos.Race.List(ctx, repository.RaceFilter{From: &today, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to find next race: %w", err)
	}
	last, err := p.repos.Race.List(ctx, repository.RaceFilter{Before: &today, Descending: true, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to find last race: %w", err)
	}

	if len(last) > 0 {
		ov.LastRace = last[0]
		ov.Year = last[0].Year
		key := last[0].Key()
		winners, err := p.repos.Result.List(ctx, models.SessionRace, repository.ResultFilter{Race: &key, Position: intPtr(1)})
		if err != nil {
			return nil, fmt.Errorf("failed to find winner of %s: %w", key, err)
		}
		if len(winners) > 0 {
			ov.LastWinner = winners[0]
		}
	}
	if len(next) > 0 {
		ov.NextRace = next[0]
		ov.Year = next[0].Year
	}

	top, err := p.builder.DriverStandings(ctx, ov.Year)
	if err != nil {
		return nil, err
	}
	if len(top) > 3 {
		top = top[:3]
	}
	ov.TopDrivers = top

	drivers, err := p.repos.Driver.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count drivers: %w", err)
	}
	teams, err := p.repos.Constructor.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count constructors: %w", err)
	}
	races, err := p.repos.Race.List(ctx, repository.RaceFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to count races: %w", err)
	}
	ov.Counts = Counts{Drivers: len(drivers), Teams: len(teams), Races: len(races)}

	return ov, nil
}
