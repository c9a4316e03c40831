package standings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dencchi/f1-knowledge-base/internal/models"
)

func newTestChampions(f *fixture) *ChampionResolver {
	return NewChampionResolver(f.repos, NewAggregator(f.repos.Result))
}

func TestChampionOfCountsSprintPoints(t *testing.T) {
	f := newFixture(t)
	f.driver("alpha", "Anna", "Alpha")
	f.driver("beta", "Boris", "Beta")
	f.race(2023, 1, "monza", date(2023, 9, 3))

	f.finish(models.SessionRace, 2023, 1, "alpha", "ferrari", 2, 150)
	f.finish(models.SessionSprint, 2023, 1, "alpha", "ferrari", 1, 10)
	f.finish(models.SessionRace, 2023, 1, "beta", "mclaren", 1, 155)

	champ, err := newTestChampions(f).ChampionOf(f.ctx, 2023)
	require.NoError(t, err)
	require.NotNil(t, champ)

	assert.Equal(t, "alpha", champ.Driver.Ref)
	assert.Equal(t, 160.0, champ.Points)
	assert.Equal(t, 2023, champ.Year)
}

func TestChampionOfSeason(t *testing.T) {
	f := newFixture(t)
	f.season2021()
	c := newTestChampions(f)

	champ, err := c.ChampionOf(f.ctx, 2021)
	require.NoError(t, err)
	assert.Equal(t, "max_verstappen", champ.Driver.Ref)
	assert.Equal(t, 70.0, champ.Points)

	team, err := c.ConstructorChampionOf(f.ctx, 2021)
	require.NoError(t, err)
	assert.Equal(t, "red_bull", team.Constructor.Ref)
	assert.Equal(t, 95.0, team.Points)
}

func TestChampionOfTieGoesToLowestRef(t *testing.T) {
	f := newFixture(t)
	f.race(2024, 1, "spa", date(2024, 7, 28))
	f.finish(models.SessionRace, 2024, 1, "gamma", "haas", 1, 100)
	f.finish(models.SessionRace, 2024, 1, "delta", "sauber", 2, 100)

	champ, err := newTestChampions(f).ChampionOf(f.ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, "delta", champ.Driver.Ref)
}

func TestChampionOfEmptySeason(t *testing.T) {
	f := newFixture(t)
	f.season2021()
	c := newTestChampions(f)

	champ, err := c.ChampionOf(f.ctx, 1949)
	require.NoError(t, err)
	assert.Nil(t, champ)

	team, err := c.ConstructorChampionOf(f.ctx, 1949)
	require.NoError(t, err)
	assert.Nil(t, team)
}

func TestChampionOfIgnoresSprintOnlyEntrants(t *testing.T) {
	f := newFixture(t)
	f.race(2025, 1, "miami", date(2025, 5, 4))
	f.finish(models.SessionRace, 2025, 1, "piastri", "mclaren", 1, 25)
	f.finish(models.SessionSprint, 2025, 1, "hadjar", "racing_bulls", 1, 30)

	champ, err := newTestChampions(f).ChampionOf(f.ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, "piastri", champ.Driver.Ref)
}
