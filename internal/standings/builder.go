package standings

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dencchi/f1-knowledge-base/internal/logger"
	"github.com/Dencchi/f1-knowledge-base/internal/metrics"
	"github.com/Dencchi/f1-knowledge-base/internal/models"
	"github.com/Dencchi/f1-knowledge-base/internal/repository"
)

// DriverStanding is one row of the drivers' championship
type DriverStanding struct {
	Position int                 `json:"position"`
	Driver   *models.Driver      `json:"driver"`
	Team     *models.Constructor `json:"team,omitempty"`
	Points   float64             `json:"points"`
	Wins     int                 `json:"wins"`
	Podiums  int                 `json:"podiums"`
}

// ConstructorStanding is one row of the constructors' championship
type ConstructorStanding struct {
	Position    int                 `json:"position"`
	Constructor *models.Constructor `json:"constructor"`
	Points      float64             `json:"points"`
	Wins        int                 `json:"wins"`
	Podiums     int                 `json:"podiums"`
}

// Standing is the kind-independent view of a standings row
type Standing struct {
	Position int     `json:"position"`
	Ref      string  `json:"ref"`
	Name     string  `json:"name"`
	TeamRef  string  `json:"team_ref,omitempty"`
	TeamName string  `json:"team_name,omitempty"`
	Points   float64 `json:"points"`
	Wins     int     `json:"wins"`
	Podiums  int     `json:"podiums"`
}

// Builder ranks season standings. Rows are ordered by points, then wins.
// Rows tied on both keep ascending reference order.
type Builder struct {
	repos *repository.Repositories
	agg   *Aggregator
	log   *logger.QueryLogger
}

// NewBuilder creates a standings builder
func NewBuilder(repos *repository.Repositories, agg *Aggregator, log *logrus.Logger) *Builder {
	return &Builder{repos: repos, agg: agg, log: logger.NewQueryLogger(log)}
}

// tally accumulates per-entity rows of one season
type tally struct {
	ref     string
	points  float64
	wins    int
	podiums int
	team    string
}

// seasonRows loads the main and sprint results of a season
func (b *Builder) seasonRows(ctx context.Context, year int) (main, sprint []*models.Result, err error) {
	filter := repository.ResultFilter{Year: year}
	if main, err = b.repos.Result.List(ctx, models.SessionRace, filter); err != nil {
		return nil, nil, fmt.Errorf("failed to list %d results: %w", year, err)
	}
	if sprint, err = b.repos.Result.List(ctx, models.SessionSprint, filter); err != nil {
		return nil, nil, fmt.Errorf("failed to list %d sprint results: %w", year, err)
	}
	return main, sprint, nil
}

func (b *Builder) rank(ctx context.Context, kind EntityKind, year int) ([]*tally, error) {
	main, sprint, err := b.seasonRows(ctx, year)
	if err != nil {
		return nil, err
	}

	refOf := func(r *models.Result) string {
		if kind == KindDriver {
			return r.DriverRef
		}
		return r.ConstructorRef
	}

	byRef := make(map[string]*tally)
	get := func(ref string) *tally {
		t, ok := byRef[ref]
		if !ok {
			t = &tally{ref: ref}
			byRef[ref] = t
		}
		return t
	}

	// sprint first so that a later main result overrides the team
	for _, r := range sprint {
		t := get(refOf(r))
		t.team = r.ConstructorRef
	}
	mainByRef := make(map[string][]*models.Result)
	for _, r := range main {
		ref := refOf(r)
		mainByRef[ref] = append(mainByRef[ref], r)
	}
	for ref, rows := range mainByRef {
		t := get(ref)
		stats := countRows(rows)
		t.wins, t.podiums = stats.Wins, stats.Podiums
		t.team = rows[len(rows)-1].ConstructorRef
	}

	rows := make([]*tally, 0, len(byRef))
	for _, t := range byRef {
		rows = append(rows, t)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ref < rows[j].ref })

	for _, t := range rows {
		if t.points, err = b.agg.SeasonPoints(ctx, kind, t.ref, year); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].points != rows[j].points {
			return rows[i].points > rows[j].points
		}
		return rows[i].wins > rows[j].wins
	})
	return rows, nil
}

// DriverStandings ranks every driver with a main or sprint result in year
func (b *Builder) DriverStandings(ctx context.Context, year int) ([]DriverStanding, error) {
	start := time.Now()

	rows, err := b.rank(ctx, KindDriver, year)
	if err != nil {
		return nil, err
	}

	drivers, err := b.driversByRef(ctx, rows, func(t *tally) string { return t.ref })
	if err != nil {
		return nil, err
	}
	teams, err := b.constructorsByRef(ctx, rows, func(t *tally) string { return t.team })
	if err != nil {
		return nil, err
	}

	out := make([]DriverStanding, len(rows))
	for i, t := range rows {
		out[i] = DriverStanding{
			Position: i + 1,
			Driver:   drivers[t.ref],
			Team:     teams[t.team],
			Points:   t.points,
			Wins:     t.wins,
			Podiums:  t.podiums,
		}
	}

	b.observe(KindDriver, year, len(out), start)
	return out, nil
}

// ConstructorStandings ranks every constructor with a main or sprint result in year
func (b *Builder) ConstructorStandings(ctx context.Context, year int) ([]ConstructorStanding, error) {
	start := time.Now()

	rows, err := b.rank(ctx, KindConstructor, year)
	if err != nil {
		return nil, err
	}

	teams, err := b.constructorsByRef(ctx, rows, func(t *tally) string { return t.ref })
	if err != nil {
		return nil, err
	}

	out := make([]ConstructorStanding, len(rows))
	for i, t := range rows {
		out[i] = ConstructorStanding{
			Position:    i + 1,
			Constructor: teams[t.ref],
			Points:      t.points,
			Wins:        t.wins,
			Podiums:     t.podiums,
		}
	}

	b.observe(KindConstructor, year, len(out), start)
	return out, nil
}

// SeasonStandings returns either championship in the kind-independent shape
func (b *Builder) SeasonStandings(ctx context.Context, kind EntityKind, year int) ([]Standing, error) {
	switch kind {
	case KindDriver:
		rows, err := b.DriverStandings(ctx, year)
		if err != nil {
			return nil, err
		}
		out := make([]Standing, len(rows))
		for i, r := range rows {
			out[i] = Standing{
				Position: r.Position,
				Ref:      r.Driver.Ref,
				Name:     r.Driver.FullName(),
				Points:   r.Points,
				Wins:     r.Wins,
				Podiums:  r.Podiums,
			}
			if r.Team != nil {
				out[i].TeamRef = r.Team.Ref
				out[i].TeamName = r.Team.Name
			}
		}
		return out, nil
	case KindConstructor:
		rows, err := b.ConstructorStandings(ctx, year)
		if err != nil {
			return nil, err
		}
		out := make([]Standing, len(rows))
		for i, r := range rows {
			out[i] = Standing{
				Position: r.Position,
				Ref:      r.Constructor.Ref,
				Name:     r.Constructor.Name,
				Points:   r.Points,
				Wins:     r.Wins,
				Podiums:  r.Podiums,
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown standings kind %q", kind)
	}
}

func (b *Builder) observe(kind EntityKind, year, n int, start time.Time) {
	elapsed := time.Since(start)
	metrics.RecordStandings(string(kind), elapsed.Seconds())
	b.log.LogStandings(string(kind), year, n, elapsed)
}

// driversByRef loads drivers for the rows; unknown refs get a stub record
func (b *Builder) driversByRef(ctx context.Context, rows []*tally, ref func(*tally) string) (map[string]*models.Driver, error) {
	return loadDrivers(ctx, b.repos.Driver, collectRefs(rows, ref))
}

func (b *Builder) constructorsByRef(ctx context.Context, rows []*tally, ref func(*tally) string) (map[string]*models.Constructor, error) {
	return loadConstructors(ctx, b.repos.Constructor, collectRefs(rows, ref))
}

func collectRefs[T any](items []T, ref func(T) string) []string {
	seen := make(map[string]struct{}, len(items))
	refs := make([]string, 0, len(items))
	for _, it := range items {
		r := ref(it)
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		refs = append(refs, r)
	}
	return refs
}

func loadDrivers(ctx context.Context, repo repository.DriverRepository, refs []string) (map[string]*models.Driver, error) {
	found, err := repo.ListByRefs(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("failed to load drivers: %w", err)
	}
	out := make(map[string]*models.Driver, len(refs))
	for _, d := range found {
		out[d.Ref] = d
	}
	for _, ref := range refs {
		if _, ok := out[ref]; !ok {
			out[ref] = &models.Driver{Ref: ref, Surname: ref}
		}
	}
	return out, nil
}

func loadConstructors(ctx context.Context, repo repository.ConstructorRepository, refs []string) (map[string]*models.Constructor, error) {
	found, err := repo.ListByRefs(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("failed to load constructors: %w", err)
	}
	out := make(map[string]*models.Constructor, len(refs))
	for _, c := range found {
		out[c.Ref] = c
	}
	for _, ref := range refs {
		if _, ok := out[ref]; !ok {
			out[ref] = &models.Constructor{Ref: ref, Name: ref}
		}
	}
	return out, nil
}
