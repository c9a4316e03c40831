package service

import (
	"context"
	"sync"

	"github.com/Dencchi/f1-knowledge-base/internal/datasource"
	"github.com/Dencchi/f1-knowledge-base/internal/models"
)

// fakeSource serves canned provider data and records which rounds were fetched
type fakeSource struct {
	circuits     []datasource.CircuitData
	constructors []datasource.ConstructorData
	drivers      []datasource.DriverData
	schedules    map[int][]datasource.RaceData
	results      map[models.RaceKey]*datasource.RaceData
	sprints      map[models.RaceKey]*datasource.RaceData
	driverChamps map[int]string
	teamChamps   map[int]string

	circuitsErr  error
	championErrs map[int]error

	mu           sync.Mutex
	resultCalls  []models.RaceKey
	circuitPages int
}

func page[T any](items []T, offset, limit int) *datasource.Page[T] {
	p := &datasource.Page[T]{Offset: offset, Limit: limit, Total: len(items)}
	if offset < len(items) {
		end := offset + limit
		if end > len(items) {
			end = len(items)
		}
		p.Items = items[offset:end]
	}
	return p
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Circuits(ctx context.Context, offset, limit int) (*datasource.Page[datasource.CircuitData], error) {
	f.mu.Lock()
	f.circuitPages++
	f.mu.Unlock()
	if f.circuitsErr != nil {
		return nil, f.circuitsErr
	}
	return page(f.circuits, offset, limit), nil
}

func (f *fakeSource) Constructors(ctx context.Context, offset, limit int) (*datasource.Page[datasource.ConstructorData], error) {
	return page(f.constructors, offset, limit), nil
}

func (f *fakeSource) Drivers(ctx context.Context, offset, limit int) (*datasource.Page[datasource.DriverData], error) {
	return page(f.drivers, offset, limit), nil
}

func (f *fakeSource) Schedule(ctx context.Context, year int) ([]datasource.RaceData, error) {
	races, ok := f.schedules[year]
	if !ok {
		return nil, datasource.NewDataSourceError("fake", datasource.ErrCodeNotFound, "no season", nil)
	}
	return races, nil
}

func (f *fakeSource) Results(ctx context.Context, year, round int) (*datasource.RaceData, error) {
	key := models.RaceKey{Year: year, Round: round}
	f.mu.Lock()
	f.resultCalls = append(f.resultCalls, key)
	f.mu.Unlock()
	return f.results[key], nil
}

func (f *fakeSource) SprintResults(ctx context.Context, year, round int) (*datasource.RaceData, error) {
	return f.sprints[models.RaceKey{Year: year, Round: round}], nil
}

func (f *fakeSource) DriverChampion(ctx context.Context, year int) (*datasource.DriverStandingData, error) {
	if err := f.championErrs[year]; err != nil {
		return nil, err
	}
	ref, ok := f.driverChamps[year]
	if !ok {
		return nil, nil
	}
	return &datasource.DriverStandingData{Position: "1", Driver: datasource.DriverData{DriverID: ref}}, nil
}

func (f *fakeSource) ConstructorChampion(ctx context.Context, year int) (*datasource.ConstructorStandingData, error) {
	ref, ok := f.teamChamps[year]
	if !ok {
		return nil, nil
	}
	return &datasource.ConstructorStandingData{Position: "1", Constructor: datasource.ConstructorData{ConstructorID: ref}}, nil
}

func result(driver, team, pos, text, points string) datasource.ResultData {
	return datasource.ResultData{
		Position:     pos,
		PositionText: text,
		Points:       points,
		Grid:         "1",
		Status:       "Finished",
		Driver:       datasource.DriverData{DriverID: driver},
		Constructor:  datasource.ConstructorData{ConstructorID: team},
	}
}

// newFakeSource returns a small 2024 season: a finished round with a sprint,
// a round on an unknown circuit and a round still to be run.
func newFakeSource() *fakeSource {
	r1 := models.RaceKey{Year: 2024, Round: 1}
	return &fakeSource{
		circuits: []datasource.CircuitData{
			{CircuitID: "bahrain", CircuitName: "Bahrain International Circuit", Location: datasource.LocationData{Locality: "Sakhir", Country: "Bahrain", Lat: "26.0325", Long: "50.5106"}},
			{CircuitID: "jeddah", CircuitName: "Jeddah Corniche Circuit", Location: datasource.LocationData{Locality: "Jeddah", Country: "Saudi Arabia"}},
			{CircuitName: "Mystery Ring", Location: datasource.LocationData{Locality: "Nowhere", Country: "Atlantis"}},
		},
		constructors: []datasource.ConstructorData{
			{ConstructorID: "red_bull", Name: "Red Bull", Nationality: "Austrian"},
			{ConstructorID: "ferrari", Name: "Ferrari", Nationality: "Italian"},
			{ConstructorID: "rb", Name: "RB F1 Team", Nationality: "Italian"},
		},
		drivers: []datasource.DriverData{
			{DriverID: "max_verstappen", PermanentNumber: "33", Code: "VER", GivenName: "Max", FamilyName: "Verstappen", DateOfBirth: "1997-09-30", Nationality: "Dutch"},
			{DriverID: "leclerc", PermanentNumber: "16", Code: "LEC", GivenName: "Charles", FamilyName: "Leclerc", DateOfBirth: "1997-10-16", Nationality: "Monegasque"},
			{DriverID: "broken", PermanentNumber: "x", GivenName: "Broken", FamilyName: "Record"},
		},
		schedules: map[int][]datasource.RaceData{
			2024: {
				{
					Season: "2024", Round: "1", RaceName: "Bahrain Grand Prix", Date: "2024-03-02", Time: "15:00:00Z",
					Circuit:        datasource.CircuitData{CircuitID: "bahrain"},
					FirstPractice:  &datasource.SessionTime{Date: "2024-02-29", Time: "11:30:00Z"},
					Qualifying:     &datasource.SessionTime{Date: "2024-03-01", Time: "16:00:00Z"},
					Sprint:         &datasource.SessionTime{Date: "2024-03-01", Time: "12:00:00Z"},
				},
				{Season: "2024", Round: "2", RaceName: "Atlantis Grand Prix", Date: "2024-03-09", Circuit: datasource.CircuitData{CircuitID: "atlantis"}},
				{Season: "2024", Round: "3", RaceName: "Saudi Arabian Grand Prix", Date: "2024-12-01", Circuit: datasource.CircuitData{CircuitID: "jeddah"}},
			},
		},
		results: map[models.RaceKey]*datasource.RaceData{
			r1: {Results: []datasource.ResultData{
				result("max_verstappen", "red_bull", "1", "1", "25"),
				result("leclerc", "ferrari", "4", "4", "12"),
				result("ghost", "ferrari", "5", "5", "10"),
			}},
		},
		sprints: map[models.RaceKey]*datasource.RaceData{
			r1: {SprintResults: []datasource.ResultData{
				result("max_verstappen", "red_bull", "1", "1", "8"),
			}},
		},
		driverChamps: map[int]string{2021: "max_verstappen", 2022: "max_verstappen", 2023: "ghost"},
		teamChamps:   map[int]string{2023: "red_bull"},
	}
}

// clampedSource serves at most maxPerPage circuits per request, like a provider
// that caps the page limit below the requested size
type clampedSource struct {
	*fakeSource
	maxPerPage int
	hideTotal  bool
}

func (c *clampedSource) Circuits(ctx context.Context, offset, limit int) (*datasource.Page[datasource.CircuitData], error) {
	if limit > c.maxPerPage {
		limit = c.maxPerPage
	}
	p, err := c.fakeSource.Circuits(ctx, offset, limit)
	if err == nil && c.hideTotal {
		p.Total = 0
	}
	return p, err
}
