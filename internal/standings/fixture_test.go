package standings

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Dencchi/f1-knowledge-base/internal/models"
	"github.com/Dencchi/f1-knowledge-base/internal/repository"
)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	repos *repository.Repositories
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		t:     t,
		ctx:   context.Background(),
		repos: repository.NewMemoryRepositories(repository.NewMemoryStore()),
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func (f *fixture) driver(ref, forename, surname string) {
	require.NoError(f.t, f.repos.Driver.Upsert(f.ctx, &models.Driver{Ref: ref, Forename: forename, Surname: surname}))
}

func (f *fixture) team(ref, name string) {
	require.NoError(f.t, f.repos.Constructor.Upsert(f.ctx, &models.Constructor{Ref: ref, Name: name}))
}

func (f *fixture) circuit(ref, name string) {
	require.NoError(f.t, f.repos.Circuit.Upsert(f.ctx, &models.Circuit{Ref: ref, Name: name}))
}

func (f *fixture) race(year, round int, circuitRef string, on time.Time) {
	require.NoError(f.t, f.repos.Race.Upsert(f.ctx, &models.Race{
		Year: year, Round: round, CircuitRef: circuitRef,
		Name: circuitRef + " Grand Prix", Date: on,
	}))
}

// finish records a classified result
func (f *fixture) finish(session models.Session, year, round int, driverRef, teamRef string, pos int, points float64) {
	p := pos
	require.NoError(f.t, f.repos.Result.Upsert(f.ctx, &models.Result{
		Session: session, Race: models.RaceKey{Year: year, Round: round},
		DriverRef: driverRef, ConstructorRef: teamRef,
		Grid: pos, Position: &p, PositionText: strconv.Itoa(pos), Points: points,
	}))
}

// retire records an unclassified result with the given position text
func (f *fixture) retire(session models.Session, year, round int, driverRef, teamRef, text string) {
	require.NoError(f.t, f.repos.Result.Upsert(f.ctx, &models.Result{
		Session: session, Race: models.RaceKey{Year: year, Round: round},
		DriverRef: driverRef, ConstructorRef: teamRef,
		Grid: 10, PositionText: text, Status: "Retired",
	}))
}

// season2021 seeds two drivers per team over three rounds, the last with a sprint
func (f *fixture) season2021() {
	f.circuit("bahrain", "Bahrain International Circuit")
	f.circuit("imola", "Autodromo Enzo e Dino Ferrari")
	f.circuit("monza", "Autodromo Nazionale di Monza")
	f.team("red_bull", "Red Bull")
	f.team("mercedes", "Mercedes")
	f.driver("max_verstappen", "Max", "Verstappen")
	f.driver("perez", "Sergio", "Pérez")
	f.driver("hamilton", "Lewis", "Hamilton")
	f.driver("bottas", "Valtteri", "Bottas")

	f.race(2021, 1, "bahrain", date(2021, 3, 28))
	f.race(2021, 2, "imola", date(2021, 4, 18))
	f.race(2021, 3, "monza", date(2021, 9, 12))

	race := models.SessionRace
	f.finish(race, 2021, 1, "hamilton", "mercedes", 1, 25)
	f.finish(race, 2021, 1, "max_verstappen", "red_bull", 2, 18)
	f.finish(race, 2021, 1, "bottas", "mercedes", 3, 15)
	f.finish(race, 2021, 1, "perez", "red_bull", 5, 10)

	f.finish(race, 2021, 2, "max_verstappen", "red_bull", 1, 25)
	f.finish(race, 2021, 2, "hamilton", "mercedes", 2, 18)
	f.finish(race, 2021, 2, "perez", "red_bull", 11, 0)
	f.retire(race, 2021, 2, "bottas", "mercedes", "R")

	f.finish(race, 2021, 3, "max_verstappen", "red_bull", 1, 25)
	f.finish(race, 2021, 3, "bottas", "mercedes", 2, 18)
	f.finish(race, 2021, 3, "perez", "red_bull", 3, 15)
	f.retire(race, 2021, 3, "hamilton", "mercedes", "R")

	f.finish(models.SessionSprint, 2021, 3, "bottas", "mercedes", 1, 3)
	f.finish(models.SessionSprint, 2021, 3, "max_verstappen", "red_bull", 2, 2)
}
