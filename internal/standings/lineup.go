package standings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Dencchi/f1-knowledge-base/internal/logger"
	"github.com/Dencchi/f1-knowledge-base/internal/models"
	"github.com/Dencchi/f1-knowledge-base/internal/repository"
)

// LineupDriver is a driver's season record for one team
type LineupDriver struct {
	Driver     *models.Driver `json:"driver"`
	Races      int            `json:"races"`
	Points     float64        `json:"points"`
	Wins       int            `json:"wins"`
	Podiums    int            `json:"podiums"`
	Poles      int            `json:"poles"`
	DNFs       int            `json:"dnfs"`
	BestFinish *int           `json:"best_finish,omitempty"`
	IsReserve  bool           `json:"is_reserve"`
}

// Lineup is a team's drivers as of a reference race
type Lineup struct {
	TeamRef       string         `json:"team_ref"`
	Year          int            `json:"year"`
	ReferenceRace *models.Race   `json:"reference_race,omitempty"`
	Drivers       []LineupDriver `json:"drivers"`
	// Comparison holds the two highest scoring regular drivers of the season
	Comparison []LineupDriver `json:"comparison"`
}

// SeasonDriver pairs a driver with the team they currently drive for
type SeasonDriver struct {
	Driver *models.Driver      `json:"driver"`
	Team   *models.Constructor `json:"team,omitempty"`
}

// Driver list orderings accepted by SeasonDrivers
const (
	SortByName   = "name"
	SortByTeam   = "team"
	SortByNumber = "number"
)

// LineupResolver determines team rosters and current lineups
type LineupResolver struct {
	repos  *repository.Repositories
	policy ReservePolicy
	clock  Clock
	log    *logger.QueryLogger
}

// NewLineupResolver creates a lineup resolver. A nil clock uses time.Now.
func NewLineupResolver(repos *repository.Repositories, policy ReservePolicy, clock Clock, log *logrus.Logger) *LineupResolver {
	return &LineupResolver{repos: repos, policy: policy, clock: clock, log: logger.NewQueryLogger(log)}
}

// roster computes stats for every driver with a main or sprint result for
// the team in year, ordered by points descending.
func (l *LineupResolver) roster(ctx context.Context, teamRef string, year int) ([]LineupDriver, error) {
	filter := repository.ResultFilter{ConstructorRef: teamRef, Year: year}
	main, err := l.repos.Result.List(ctx, models.SessionRace, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for %s: %w", teamRef, err)
	}
	sprint, err := l.repos.Result.List(ctx, models.SessionSprint, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list sprint results for %s: %w", teamRef, err)
	}

	mainBy := groupByDriver(main)
	sprintBy := groupByDriver(sprint)

	refs := make([]string, 0, len(mainBy)+len(sprintBy))
	for ref := range mainBy {
		refs = append(refs, ref)
	}
	for ref := range sprintBy {
		if _, ok := mainBy[ref]; !ok {
			refs = append(refs, ref)
		}
	}
	sort.Strings(refs)

	drivers, err := loadDrivers(ctx, l.repos.Driver, refs)
	if err != nil {
		return nil, err
	}

	out := make([]LineupDriver, 0, len(refs))
	for _, ref := range refs {
		stats := ComputeStats(mainBy[ref], sprintBy[ref])
		out = append(out, LineupDriver{
			Driver:     drivers[ref],
			Races:      stats.Races,
			Points:     stats.Points,
			Wins:       stats.Wins,
			Podiums:    stats.Podiums,
			Poles:      stats.Poles,
			DNFs:       stats.DNFs,
			BestFinish: BestFinish(mainBy[ref]),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	l.policy.Apply(out)
	return out, nil
}

// SeasonRoster returns every driver who started a main race for the team in
// year, with season stats and reserve flags, ordered by points.
func (l *LineupResolver) SeasonRoster(ctx context.Context, teamRef string, year int) ([]LineupDriver, error) {
	all, err := l.roster(ctx, teamRef, year)
	if err != nil {
		return nil, err
	}
	out := make([]LineupDriver, 0, len(all))
	for _, d := range all {
		if d.Races > 0 {
			out = append(out, d)
		}
	}
	return out, nil
}

// Comparison picks the two highest scoring non-reserve drivers of a roster
func Comparison(roster []LineupDriver) []LineupDriver {
	out := make([]LineupDriver, 0, 2)
	for _, d := range roster {
		if d.IsReserve {
			continue
		}
		out = append(out, d)
		if len(out) == 2 {
			break
		}
	}
	return out
}

// ReferenceRace resolves asOf, or else the latest race of year that has
// already taken place and has main results. It returns nil when there is none.
func (l *LineupResolver) ReferenceRace(ctx context.Context, year int, asOf *models.RaceKey) (*models.Race, error) {
	if asOf != nil {
		race, err := l.repos.Race.GetByKey(ctx, *asOf)
		if err != nil {
			return nil, fmt.Errorf("failed to get reference race %s: %w", asOf, err)
		}
		return race, nil
	}

	today := l.clock.today()
	races, err := l.repos.Race.List(ctx, repository.RaceFilter{
		Year:        year,
		OnOrBefore:  &today,
		WithResults: true,
		Descending:  true,
		Limit:       1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find reference race for %d: %w", year, err)
	}
	if len(races) == 0 {
		return nil, nil
	}
	return races[0], nil
}

// participants returns the refs with a main or sprint result in race, optionally for one team
func (l *LineupResolver) participants(ctx context.Context, race *models.Race, teamRef string) (map[string]*models.Result, error) {
	key := race.Key()
	out := make(map[string]*models.Result)
	// main results take precedence, so they are read last
	for _, session := range []models.Session{models.SessionSprint, models.SessionRace} {
		rows, err := l.repos.Result.List(ctx, session, repository.ResultFilter{Race: &key, ConstructorRef: teamRef})
		if err != nil {
			return nil, fmt.Errorf("failed to list %s results for %s: %w", session, key, err)
		}
		for _, r := range rows {
			out[r.DriverRef] = r
		}
	}
	return out, nil
}

// CurrentLineup returns the team's drivers in the reference race. Without a
// reference race every driver with a result for the team in year is returned.
func (l *LineupResolver) CurrentLineup(ctx context.Context, teamRef string, year int, asOf *models.RaceKey) (*Lineup, error) {
	if _, err := l.repos.Constructor.GetByRef(ctx, teamRef); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("constructor %s: %w", teamRef, err)
		}
		return nil, fmt.Errorf("failed to get constructor %s: %w", teamRef, err)
	}

	roster, err := l.roster(ctx, teamRef, year)
	if err != nil {
		return nil, err
	}

	ref, err := l.ReferenceRace(ctx, year, asOf)
	if err != nil {
		return nil, err
	}

	lineup := &Lineup{TeamRef: teamRef, Year: year, ReferenceRace: ref}
	if ref == nil {
		lineup.Drivers = roster
	} else {
		inRace, err := l.participants(ctx, ref, teamRef)
		if err != nil {
			return nil, err
		}
		lineup.Drivers = make([]LineupDriver, 0, len(inRace))
		for _, d := range roster {
			if _, ok := inRace[d.Driver.Ref]; ok {
				lineup.Drivers = append(lineup.Drivers, d)
			}
		}
	}

	main := make([]LineupDriver, 0, len(roster))
	for _, d := range roster {
		if d.Races > 0 {
			main = append(main, d)
		}
	}
	lineup.Comparison = Comparison(main)

	refName := ""
	if ref != nil {
		refName = ref.Key().String()
	}
	reserves := 0
	for _, d := range lineup.Drivers {
		if d.IsReserve {
			reserves++
		}
	}
	l.log.LogLineup(teamRef, year, refName, len(lineup.Drivers), reserves)

	return lineup, nil
}

// SeasonDrivers lists the drivers of a season with their current team. The
// grid of the latest finished race is used when one exists; otherwise every
// driver with a result in year.
func (l *LineupResolver) SeasonDrivers(ctx context.Context, year int, sortBy string) ([]SeasonDriver, error) {
	ref, err := l.ReferenceRace(ctx, year, nil)
	if err != nil {
		return nil, err
	}

	seasonMain, err := l.repos.Result.List(ctx, models.SessionRace, repository.ResultFilter{Year: year})
	if err != nil {
		return nil, fmt.Errorf("failed to list %d results: %w", year, err)
	}
	lastTeam := make(map[string]string)
	for _, r := range seasonMain {
		lastTeam[r.DriverRef] = r.ConstructorRef
	}

	teamOf := make(map[string]string)
	if ref != nil {
		inRace, err := l.participants(ctx, ref, "")
		if err != nil {
			return nil, err
		}
		for driverRef, r := range inRace {
			teamOf[driverRef] = r.ConstructorRef
		}
	} else {
		seasonSprint, err := l.repos.Result.List(ctx, models.SessionSprint, repository.ResultFilter{Year: year})
		if err != nil {
			return nil, fmt.Errorf("failed to list %d sprint results: %w", year, err)
		}
		// main results override the sprint team
		for _, r := range seasonSprint {
			teamOf[r.DriverRef] = r.ConstructorRef
		}
		for driverRef, team := range lastTeam {
			teamOf[driverRef] = team
		}
	}

	driverRefs := make([]string, 0, len(teamOf))
	teamRefs := make([]string, 0, len(teamOf))
	for driverRef, team := range teamOf {
		driverRefs = append(driverRefs, driverRef)
		if team != "" {
			teamRefs = append(teamRefs, team)
		}
	}
	sort.Strings(driverRefs)

	drivers, err := loadDrivers(ctx, l.repos.Driver, driverRefs)
	if err != nil {
		return nil, err
	}
	teams, err := loadConstructors(ctx, l.repos.Constructor, collectRefs(teamRefs, func(s string) string { return s }))
	if err != nil {
		return nil, err
	}

	out := make([]SeasonDriver, 0, len(driverRefs))
	for _, driverRef := range driverRefs {
		sd := SeasonDriver{Driver: drivers[driverRef]}
		if team := teamOf[driverRef]; team != "" {
			sd.Team = teams[team]
		}
		out = append(out, sd)
	}

	sortSeasonDrivers(out, sortBy)
	return out, nil
}

func sortSeasonDrivers(list []SeasonDriver, sortBy string) {
	switch sortBy {
	case SortByTeam:
		// drivers without a team go last
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i].Team, list[j].Team
			if a == nil || b == nil {
				return a != nil
			}
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		})
	case SortByNumber:
		number := func(sd SeasonDriver) int {
			if n := sd.Driver.GetNumber(); n > 0 {
				return n
			}
			return 999
		}
		sort.SliceStable(list, func(i, j int) bool { return number(list[i]) < number(list[j]) })
	default:
		sort.SliceStable(list, func(i, j int) bool { return list[i].Driver.Surname < list[j].Driver.Surname })
	}
}

func groupByDriver(rows []*models.Result) map[string][]*models.Result {
	out := make(map[string][]*models.Result)
	for _, r := range rows {
		out[r.DriverRef] = append(out[r.DriverRef], r)
	}
	return out
}
