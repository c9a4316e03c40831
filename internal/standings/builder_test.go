package standings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dencchi/f1-knowledge-base/internal/logger"
	"github.com/Dencchi/f1-knowledge-base/internal/models"
	"github.com/Dencchi/f1-knowledge-base/internal/repository"
)

func newTestBuilder(f *fixture) *Builder {
	return NewBuilder(f.repos, NewAggregator(f.repos.Result), logger.Discard())
}

func TestDriverStandings(t *testing.T) {
	f := newFixture(t)
	f.season2021()

	rows, err := newTestBuilder(f).DriverStandings(f.ctx, 2021)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	want := []struct {
		ref    string
		team   string
		points float64
		wins   int
	}{
		{"max_verstappen", "red_bull", 70, 2},
		{"hamilton", "mercedes", 43, 1},
		{"bottas", "mercedes", 36, 0},
		{"perez", "red_bull", 25, 0},
	}
	for i, w := range want {
		assert.Equal(t, i+1, rows[i].Position)
		assert.Equal(t, w.ref, rows[i].Driver.Ref)
		require.NotNil(t, rows[i].Team)
		assert.Equal(t, w.team, rows[i].Team.Ref)
		assert.Equal(t, w.points, rows[i].Points)
		assert.Equal(t, w.wins, rows[i].Wins)
	}
	assert.Equal(t, 3, rows[0].Podiums)
	assert.Equal(t, "Verstappen", rows[0].Driver.Surname)
}

func TestStandingsAreNonIncreasing(t *testing.T) {
	f := newFixture(t)
	f.season2021()
	b := newTestBuilder(f)

	drivers, err := b.DriverStandings(f.ctx, 2021)
	require.NoError(t, err)
	for i := 1; i < len(drivers); i++ {
		assert.GreaterOrEqual(t, drivers[i-1].Points, drivers[i].Points)
	}

	teams, err := b.ConstructorStandings(f.ctx, 2021)
	require.NoError(t, err)
	for i := 1; i < len(teams); i++ {
		assert.GreaterOrEqual(t, teams[i-1].Points, teams[i].Points)
	}
}

func TestStandingsTieBreak(t *testing.T) {
	f := newFixture(t)
	f.race(2022, 1, "bahrain", date(2022, 3, 20))
	f.race(2022, 2, "jeddah", date(2022, 3, 27))

	race := models.SessionRace
	f.finish(race, 2022, 1, "zhou", "alfa", 1, 25)
	f.finish(race, 2022, 2, "zhou", "alfa", 11, 0)
	f.finish(race, 2022, 1, "alonso", "alpine", 3, 15)
	f.finish(race, 2022, 2, "alonso", "alpine", 2, 10)
	f.finish(race, 2022, 1, "albon", "williams", 2, 18)
	f.finish(race, 2022, 2, "albon", "williams", 4, 7)

	rows, err := newTestBuilder(f).DriverStandings(f.ctx, 2022)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// all on 25: wins first, then ascending reference
	assert.Equal(t, "zhou", rows[0].Driver.Ref)
	assert.Equal(t, "albon", rows[1].Driver.Ref)
	assert.Equal(t, "alonso", rows[2].Driver.Ref)

	// unknown drivers still get a usable record
	assert.Equal(t, "zhou", rows[0].Driver.Surname)
}

func TestDriverStandingsTeamFollowsLatestRace(t *testing.T) {
	f := newFixture(t)
	f.race(2019, 1, "melbourne", date(2019, 3, 17))
	f.race(2019, 2, "spa", date(2019, 9, 1))

	f.finish(models.SessionRace, 2019, 1, "albon", "toro_rosso", 14, 0)
	f.finish(models.SessionRace, 2019, 2, "albon", "red_bull", 5, 10)
	f.finish(models.SessionSprint, 2019, 1, "kubica", "williams", 8, 1)

	rows, err := newTestBuilder(f).DriverStandings(f.ctx, 2019)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "red_bull", rows[0].Team.Ref)

	// sprint-only entrants are ranked with their sprint team
	assert.Equal(t, "kubica", rows[1].Driver.Ref)
	assert.Equal(t, "williams", rows[1].Team.Ref)
	assert.Equal(t, 1.0, rows[1].Points)
}

func TestConstructorStandings(t *testing.T) {
	f := newFixture(t)
	f.season2021()

	rows, err := newTestBuilder(f).ConstructorStandings(f.ctx, 2021)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "red_bull", rows[0].Constructor.Ref)
	assert.Equal(t, 95.0, rows[0].Points)
	assert.Equal(t, 2, rows[0].Wins)
	assert.Equal(t, 4, rows[0].Podiums)
	assert.Equal(t, "mercedes", rows[1].Constructor.Ref)
	assert.Equal(t, 79.0, rows[1].Points)
}

func TestSeasonStandings(t *testing.T) {
	f := newFixture(t)
	f.season2021()
	b := newTestBuilder(f)

	drivers, err := b.SeasonStandings(f.ctx, KindDriver, 2021)
	require.NoError(t, err)
	require.Len(t, drivers, 4)
	assert.Equal(t, "Max Verstappen", drivers[0].Name)
	assert.Equal(t, "Red Bull", drivers[0].TeamName)

	teams, err := b.SeasonStandings(f.ctx, KindConstructor, 2021)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "Red Bull", teams[0].Name)
	assert.Empty(t, teams[0].TeamRef)

	empty, err := b.SeasonStandings(f.ctx, KindDriver, 1999)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = b.SeasonStandings(f.ctx, EntityKind("circuit"), 2021)
	assert.Error(t, err)
}

func TestStandingsCountsMatchDriverStats(t *testing.T) {
	f := newFixture(t)
	f.season2021()

	rows, err := newTestBuilder(f).DriverStandings(f.ctx, 2021)
	require.NoError(t, err)

	for _, row := range rows {
		main, err := f.repos.Result.List(f.ctx, models.SessionRace, repository.ResultFilter{DriverRef: row.Driver.Ref, Year: 2021})
		require.NoError(t, err)
		stats := ComputeStats(main, nil)

		assert.Equal(t, stats.Wins, row.Wins, row.Driver.Ref)
		assert.Equal(t, stats.Podiums, row.Podiums, row.Driver.Ref)
	}
}
