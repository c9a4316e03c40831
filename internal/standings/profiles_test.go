package standings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dencchi/f1-knowledge-base/internal/logger"
	"github.com/Dencchi/f1-knowledge-base/internal/models"
)

func newTestProfiles(f *fixture, now time.Time) *Profiles {
	return NewProfiles(f.repos, newTestBuilder(f), newTestResolver(f, now), fixedClock(now))
}

func TestPeriodString(t *testing.T) {
	assert.Equal(t, "2019", Period{Start: 2019, End: 2019}.String())
	assert.Equal(t, "2019-2024", Period{Start: 2019, End: 2024}.String())

	var p Period
	for _, y := range []int{2021, 2019, 2023} {
		p.extend(y)
	}
	assert.Equal(t, Period{Start: 2019, End: 2023}, p)
}

func TestDriverProfile(t *testing.T) {
	f := newFixture(t)
	f.season2021()

	prof, err := newTestProfiles(f, date(2021, 12, 31)).Driver(f.ctx, "max_verstappen", 0, false)
	require.NoError(t, err)

	assert.Equal(t, []int{2021}, prof.AvailableYears)
	assert.Equal(t, 2021, prof.Year)
	assert.Equal(t, 3, prof.Career.Races)
	assert.Equal(t, 70.0, prof.Career.Points)
	assert.Equal(t, 68.0, prof.SeasonGP.Points)
	assert.Equal(t, 2.0, prof.SeasonSprint.Points)
	assert.Equal(t, 70.0, prof.SeasonTotal.Points)
	assert.Equal(t, 2, prof.SeasonTotal.Wins)

	require.Len(t, prof.Races, 3)
	assert.Equal(t, 1, prof.Races[0].Race.Round)
	assert.Nil(t, prof.Races[0].Sprint)
	assert.NotNil(t, prof.Races[2].Sprint)

	require.Len(t, prof.Teams, 1)
	assert.Equal(t, "Red Bull", prof.Teams[0].Constructor.Name)
	assert.Equal(t, "2021", prof.Teams[0].Period.String())
}

func TestDriverProfileDescendingAndMissing(t *testing.T) {
	f := newFixture(t)
	f.season2021()
	p := newTestProfiles(f, date(2021, 12, 31))

	prof, err := p.Driver(f.ctx, "bottas", 2021, true)
	require.NoError(t, err)
	require.Len(t, prof.Races, 3)
	assert.Equal(t, 3, prof.Races[0].Race.Round)
	assert.Equal(t, 1, prof.SeasonGP.DNFs)

	empty, err := p.Driver(f.ctx, "bottas", 2015, false)
	require.NoError(t, err)
	assert.Empty(t, empty.Races)
	assert.Zero(t, empty.SeasonTotal.Races)

	_, err = p.Driver(f.ctx, "fangio", 0, false)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestConstructorProfile(t *testing.T) {
	f := newFixture(t)
	f.season2021()

	prof, err := newTestProfiles(f, date(2021, 12, 31)).Constructor(f.ctx, "mercedes", 0)
	require.NoError(t, err)

	assert.Equal(t, 2021, prof.FirstEntry)
	assert.Equal(t, 3, prof.AllTime.Races)
	assert.Equal(t, 79.0, prof.AllTime.Points)
	assert.Equal(t, 3.0, prof.SeasonSprint.Points)
	assert.Equal(t, []string{"hamilton", "bottas"}, lineupRefs(prof.Roster))
	assert.Equal(t, []string{"hamilton", "bottas"}, lineupRefs(prof.Comparison))

	require.Len(t, prof.Drivers, 2)
	assert.Equal(t, "Bottas", prof.Drivers[0].Driver.Surname)

	require.Len(t, prof.Races, 3)
	assert.Len(t, prof.Races[0].Results, 2)
	assert.Len(t, prof.Races[2].Sprints, 1)
}

func TestCircuitProfile(t *testing.T) {
	f := newFixture(t)
	f.season2021()
	f.race(2022, 1, "monza", date(2022, 9, 11))
	f.finish(models.SessionRace, 2022, 1, "max_verstappen", "red_bull", 1, 25)
	f.race(2023, 1, "monza", date(2023, 9, 3))

	prof, err := newTestProfiles(f, date(2023, 12, 31)).Circuit(f.ctx, "monza")
	require.NoError(t, err)

	assert.Equal(t, 3, prof.RaceCount)
	assert.Equal(t, 2021, prof.FirstYear)
	assert.Equal(t, 2023, prof.LastYear)
	require.Len(t, prof.Races, 3)
	assert.Nil(t, prof.Races[0].Winner)
	assert.Equal(t, "max_verstappen", prof.Races[1].Winner.DriverRef)

	require.NotNil(t, prof.TopDriver)
	assert.Equal(t, "Max Verstappen", prof.TopDriver.Name)
	assert.Equal(t, 2, prof.TopDriver.Wins)
	require.NotNil(t, prof.TopTeam)
	assert.Equal(t, "Red Bull", prof.TopTeam.Name)
}

func TestTopTallyTies(t *testing.T) {
	top := topTally(map[string]int{"senna": 3, "prost": 3, "mansell": 1})
	require.NotNil(t, top)
	assert.Equal(t, "prost", top.Ref)
	assert.Nil(t, topTally(nil))
}

func TestRaceDetail(t *testing.T) {
	f := newFixture(t)
	f.season2021()
	p := newTestProfiles(f, date(2021, 12, 31))

	detail, err := p.Race(f.ctx, models.RaceKey{Year: 2021, Round: 3})
	require.NoError(t, err)
	assert.Len(t, detail.Results, 4)
	assert.Len(t, detail.SprintResults, 2)
	require.Len(t, detail.Podium, 3)
	assert.Equal(t, "max_verstappen", detail.Podium[0].DriverRef)
	assert.Equal(t, "perez", detail.Podium[2].DriverRef)

	_, err = p.Race(f.ctx, models.RaceKey{Year: 2021, Round: 12})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCalendar(t *testing.T) {
	f := newFixture(t)
	f.season2021()
	f.race(2021, 4, "zandvoort", date(2021, 9, 5))

	cal, err := newTestProfiles(f, date(2021, 9, 6)).Calendar(f.ctx, 2021)
	require.NoError(t, err)
	require.Len(t, cal, 4)

	assert.True(t, cal[0].IsFinished)
	require.Len(t, cal[0].Podium, 3)
	assert.Equal(t, "hamilton", cal[0].Podium[0].DriverRef)
	assert.False(t, cal[3].IsFinished)
	assert.Empty(t, cal[3].Podium)
}

func TestOverview(t *testing.T) {
	f := newFixture(t)
	f.season2021()

	ov, err := newTestProfiles(f, date(2021, 5, 1)).Overview(f.ctx, 2020)
	require.NoError(t, err)

	assert.Equal(t, 2021, ov.Year)
	require.NotNil(t, ov.NextRace)
	assert.Equal(t, 3, ov.NextRace.Round)
	require.NotNil(t, ov.LastRace)
	assert.Equal(t, 2, ov.LastRace.Round)
	require.NotNil(t, ov.LastWinner)
	assert.Equal(t, "max_verstappen", ov.LastWinner.DriverRef)
	assert.Len(t, ov.TopDrivers, 3)
	assert.Equal(t, Counts{Drivers: 4, Teams: 2, Races: 3}, ov.Counts)
}

func TestOverviewEmptyStore(t *testing.T) {
	f := newFixture(t)
	p := NewProfiles(f.repos, NewBuilder(f.repos, NewAggregator(f.repos.Result), logger.Discard()), newTestResolver(f, date(2021, 1, 1)), nil)

	ov, err := p.Overview(f.ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, 2026, ov.Year)
	assert.Nil(t, ov.NextRace)
	assert.Empty(t, ov.TopDrivers)
}
