package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dencchi/f1-knowledge-base/internal/database"
	"github.com/Dencchi/f1-knowledge-base/internal/models"
)

func intPtr(v int) *int { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// seed writes a small two-race season with one sprint
func seed(t *testing.T, repos *Repositories) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, repos.Circuit.Upsert(ctx, &models.Circuit{Ref: "monza", Name: "Autodromo Nazionale di Monza", Location: "Monza", Country: "Italy"}))
	require.NoError(t, repos.Circuit.Upsert(ctx, &models.Circuit{Ref: "spa", Name: "Circuit de Spa-Francorchamps", Location: "Spa", Country: "Belgium"}))

	require.NoError(t, repos.Constructor.Upsert(ctx, &models.Constructor{Ref: "red_bull", Name: "Red Bull"}))
	require.NoError(t, repos.Constructor.Upsert(ctx, &models.Constructor{Ref: "mercedes", Name: "Mercedes"}))

	require.NoError(t, repos.Driver.Upsert(ctx, &models.Driver{Ref: "max_verstappen", Forename: "Max", Surname: "Verstappen"}))
	require.NoError(t, repos.Driver.Upsert(ctx, &models.Driver{Ref: "hamilton", Forename: "Lewis", Surname: "Hamilton"}))

	require.NoError(t, repos.Race.Upsert(ctx, &models.Race{Year: 2021, Round: 1, CircuitRef: "spa", Name: "Belgian Grand Prix", Date: day(2021, 8, 29)}))
	require.NoError(t, repos.Race.Upsert(ctx, &models.Race{Year: 2021, Round: 2, CircuitRef: "monza", Name: "Italian Grand Prix", Date: day(2021, 9, 12)}))
	require.NoError(t, repos.Race.Upsert(ctx, &models.Race{Year: 2022, Round: 1, CircuitRef: "monza", Name: "Italian Grand Prix", Date: day(2022, 9, 11)}))

	results := []*models.Result{
		{Session: models.SessionRace, Race: models.RaceKey{Year: 2021, Round: 2}, DriverRef: "hamilton", ConstructorRef: "mercedes", Grid: 2, PositionText: "R", Status: "Collision"},
		{Session: models.SessionRace, Race: models.RaceKey{Year: 2021, Round: 2}, DriverRef: "max_verstappen", ConstructorRef: "red_bull", Grid: 1, Position: intPtr(1), PositionText: "1", Points: 25},
		{Session: models.SessionRace, Race: models.RaceKey{Year: 2021, Round: 1}, DriverRef: "max_verstappen", ConstructorRef: "red_bull", Grid: 1, Position: intPtr(1), PositionText: "1", Points: 12.5},
		{Session: models.SessionRace, Race: models.RaceKey{Year: 2021, Round: 1}, DriverRef: "hamilton", ConstructorRef: "mercedes", Grid: 3, Position: intPtr(3), PositionText: "3", Points: 7.5},
		{Session: models.SessionSprint, Race: models.RaceKey{Year: 2021, Round: 2}, DriverRef: "hamilton", ConstructorRef: "mercedes", Grid: 5, Position: intPtr(2), PositionText: "2", Points: 2},
	}
	for _, r := range results {
		require.NoError(t, repos.Result.Upsert(ctx, r))
	}
}

func runRepositoryContract(t *testing.T, repos *Repositories) {
	ctx := context.Background()
	seed(t, repos)

	t.Run("unknown refs are not found", func(t *testing.T) {
		_, err := repos.Driver.GetByRef(ctx, "nobody")
		assert.ErrorIs(t, err, models.ErrNotFound)
		_, err = repos.Race.GetByKey(ctx, models.RaceKey{Year: 1900, Round: 1})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("list by refs keeps requested order", func(t *testing.T) {
		drivers, err := repos.Driver.ListByRefs(ctx, []string{"max_verstappen", "ghost", "hamilton"})
		require.NoError(t, err)
		require.Len(t, drivers, 2)
		assert.Equal(t, "max_verstappen", drivers[0].Ref)
		assert.Equal(t, "hamilton", drivers[1].Ref)
	})

	t.Run("drivers ordered by surname", func(t *testing.T) {
		drivers, err := repos.Driver.List(ctx)
		require.NoError(t, err)
		require.Len(t, drivers, 2)
		assert.Equal(t, "Hamilton", drivers[0].Surname)
	})

	t.Run("results ordered by date then position", func(t *testing.T) {
		rows, err := repos.Result.List(ctx, models.SessionRace, ResultFilter{Year: 2021})
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, models.RaceKey{Year: 2021, Round: 1}, rows[0].Race)
		assert.Equal(t, 1, rows[0].GetPosition())
		assert.Equal(t, 3, rows[1].GetPosition())
		assert.Equal(t, 1, rows[2].GetPosition())
		assert.Nil(t, rows[3].Position)
		assert.Equal(t, day(2021, 9, 12), rows[3].RaceDate.UTC())
	})

	t.Run("sum points", func(t *testing.T) {
		sum, err := repos.Result.SumPoints(ctx, models.SessionRace, ResultFilter{DriverRef: "max_verstappen", Year: 2021})
		require.NoError(t, err)
		require.NotNil(t, sum)
		assert.Equal(t, 37.5, *sum)

		sprint, err := repos.Result.SumPoints(ctx, models.SessionSprint, ResultFilter{DriverRef: "max_verstappen", Year: 2021})
		require.NoError(t, err)
		assert.Nil(t, sprint)
	})

	t.Run("result filters by circuit and position", func(t *testing.T) {
		rows, err := repos.Result.List(ctx, models.SessionRace, ResultFilter{CircuitRef: "monza", Position: intPtr(1)})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "max_verstappen", rows[0].DriverRef)
	})

	t.Run("race filters", func(t *testing.T) {
		races, err := repos.Race.List(ctx, RaceFilter{NameContains: "italian", Descending: true})
		require.NoError(t, err)
		require.Len(t, races, 2)
		assert.Equal(t, 2022, races[0].Year)

		withResults, err := repos.Race.List(ctx, RaceFilter{WithResults: true})
		require.NoError(t, err)
		assert.Len(t, withResults, 2)

		cutoff := day(2021, 9, 1)
		early, err := repos.Race.List(ctx, RaceFilter{OnOrBefore: &cutoff})
		require.NoError(t, err)
		require.Len(t, early, 1)
		assert.Equal(t, "Belgian Grand Prix", early[0].Name)

		limited, err := repos.Race.List(ctx, RaceFilter{Descending: true, Limit: 1})
		require.NoError(t, err)
		require.Len(t, limited, 1)
		assert.Equal(t, 2022, limited[0].Year)
	})

	t.Run("years newest first", func(t *testing.T) {
		years, err := repos.Race.Years(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{2022, 2021}, years)
	})

	t.Run("result upsert replaces row", func(t *testing.T) {
		require.NoError(t, repos.Result.Upsert(ctx, &models.Result{
			Session: models.SessionRace, Race: models.RaceKey{Year: 2021, Round: 2},
			DriverRef: "hamilton", ConstructorRef: "mercedes", Grid: 2, Position: intPtr(2), PositionText: "2", Points: 18,
		}))
		rows, err := repos.Result.List(ctx, models.SessionRace, ResultFilter{DriverRef: "hamilton", Year: 2021})
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("championship counters", func(t *testing.T) {
		require.NoError(t, repos.Driver.IncrementChampionships(ctx, "max_verstappen"))
		require.NoError(t, repos.Driver.IncrementChampionships(ctx, "max_verstappen"))
		assert.ErrorIs(t, repos.Driver.IncrementChampionships(ctx, "ghost"), models.ErrNotFound)

		d, err := repos.Driver.GetByRef(ctx, "max_verstappen")
		require.NoError(t, err)
		assert.Equal(t, 2, d.Championships)

		// re-importing reference data keeps the counter
		require.NoError(t, repos.Driver.Upsert(ctx, &models.Driver{Ref: "max_verstappen", Forename: "Max", Surname: "Verstappen"}))
		d, err = repos.Driver.GetByRef(ctx, "max_verstappen")
		require.NoError(t, err)
		assert.Equal(t, 2, d.Championships)

		require.NoError(t, repos.Driver.ResetChampionships(ctx))
		d, err = repos.Driver.GetByRef(ctx, "max_verstappen")
		require.NoError(t, err)
		assert.Zero(t, d.Championships)
	})
}

func TestMemoryRepositories(t *testing.T) {
	runRepositoryContract(t, NewMemoryRepositories(NewMemoryStore()))
}

func TestPostgresRepositories(t *testing.T) {
	db := database.SetupTestDB(t)

	repos, err := NewRepositories(db)
	require.NoError(t, err)
	runRepositoryContract(t, repos)
}

func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	assert.Error(t, err)
}

func TestMemoryStoreFromSnapshot(t *testing.T) {
	snap := &Snapshot{
		Circuits: []*models.Circuit{{Ref: "monza", Name: "Monza"}},
		Races:    []*models.Race{{Year: 2021, Round: 1, CircuitRef: "monza", Name: "Italian Grand Prix", Date: day(2021, 9, 12)}},
		Results: []*models.Result{
			{Race: models.RaceKey{Year: 2021, Round: 1}, DriverRef: "norris", ConstructorRef: "mclaren", PositionText: "2", Position: intPtr(2), Points: 18},
		},
		SprintResults: []*models.Result{
			{Race: models.RaceKey{Year: 2021, Round: 1}, DriverRef: "norris", ConstructorRef: "mclaren", PositionText: "4", Position: intPtr(4), Points: 1},
		},
	}

	store, err := NewMemoryStoreFromSnapshot(snap)
	require.NoError(t, err)

	ctx := context.Background()
	main, err := store.Results().List(ctx, models.SessionRace, ResultFilter{DriverRef: "norris"})
	require.NoError(t, err)
	require.Len(t, main, 1)
	assert.Equal(t, day(2021, 9, 12), main[0].RaceDate)
	assert.NotEqual(t, [16]byte{}, [16]byte(main[0].ID))

	sprint, err := store.Results().SumPoints(ctx, models.SessionSprint, ResultFilter{DriverRef: "norris"})
	require.NoError(t, err)
	require.NotNil(t, sprint)
	assert.Equal(t, 1.0, *sprint)
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	_, err := LoadSnapshot("testdata/does-not-exist.json")
	assert.Error(t, err)
}
