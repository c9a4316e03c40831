package standings

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dencchi/f1-knowledge-base/internal/models"
	"github.com/Dencchi/f1-knowledge-base/internal/repository"
)

// RaceRow pairs a race with one driver's main and sprint results
type RaceRow struct {
	Race   *models.Race   `json:"race"`
	Main   *models.Result `json:"main,omitempty"`
	Sprint *models.Result `json:"sprint,omitempty"`
}

// Period is a span of seasons, e.g. "2019" or "2019-2024"
type Period struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (p Period) String() string {
	if p.Start == p.End {
		return fmt.Sprintf("%d", p.Start)
	}
	return fmt.Sprintf("%d-%d", p.Start, p.End)
}

func (p *Period) extend(year int) {
	if p.Start == 0 || year < p.Start {
		p.Start = year
	}
	if year > p.End {
		p.End = year
	}
}

// TeamSpell is a period a driver spent at one constructor
type TeamSpell struct {
	Constructor *models.Constructor `json:"constructor"`
	Period      Period              `json:"period"`
}

// DriverSpell is a period a driver spent at the profiled constructor
type DriverSpell struct {
	Driver *models.Driver `json:"driver"`
	Period Period         `json:"period"`
}

// DriverProfile is the career and season view of a driver
type DriverProfile struct {
	Driver         *models.Driver `json:"driver"`
	AvailableYears []int          `json:"available_years"`
	Year           int            `json:"year"`
	Career         Stats          `json:"career"`
	SeasonGP       Stats          `json:"season_gp"`
	SeasonSprint   Stats          `json:"season_sprint"`
	SeasonTotal    Stats          `json:"season_total"`
	Races          []RaceRow      `json:"races"`
	Teams          []TeamSpell    `json:"teams"`
}

// TeamRaceRow is one race of a constructor's season
type TeamRaceRow struct {
	Race    *models.Race     `json:"race"`
	Results []*models.Result `json:"results"`
	Sprints []*models.Result `json:"sprints"`
}

// ConstructorProfile is the history and season view of a constructor
type ConstructorProfile struct {
	Constructor    *models.Constructor `json:"constructor"`
	FirstEntry     int                 `json:"first_entry,omitempty"`
	AvailableYears []int               `json:"available_years"`
	Year           int                 `json:"year"`
	AllTime        Stats               `json:"all_time"`
	SeasonGP       Stats               `json:"season_gp"`
	SeasonSprint   Stats               `json:"season_sprint"`
	SeasonTotal    Stats               `json:"season_total"`
	Roster         []LineupDriver      `json:"roster"`
	Comparison     []LineupDriver      `json:"comparison"`
	Drivers        []DriverSpell       `json:"drivers"`
	Races          []TeamRaceRow       `json:"races"`
}

// CircuitRace is a race held at a circuit with its winner
type CircuitRace struct {
	Race   *models.Race   `json:"race"`
	Winner *models.Result `json:"winner,omitempty"`
}

// WinTally counts race wins for one driver or constructor
type WinTally struct {
	Ref  string `json:"ref"`
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

// CircuitProfile is the race history of a circuit
type CircuitProfile struct {
	Circuit   *models.Circuit `json:"circuit"`
	Races     []CircuitRace   `json:"races"`
	TopDriver *WinTally       `json:"top_driver,omitempty"`
	TopTeam   *WinTally       `json:"top_team,omitempty"`
	RaceCount int             `json:"race_count"`
	FirstYear int             `json:"first_year,omitempty"`
	LastYear  int             `json:"last_year,omitempty"`
}

// RaceDetail is a race's full classification
type RaceDetail struct {
	Race          *models.Race     `json:"race"`
	Results       []*models.Result `json:"results"`
	SprintResults []*models.Result `json:"sprint_results"`
	Podium        []*models.Result `json:"podium"`
}

// Profiles assembles entity detail views
type Profiles struct {
	repos   *repository.Repositories
	builder *Builder
	lineups *LineupResolver
	clock   Clock
}

// NewProfiles creates the profile assembler
func NewProfiles(repos *repository.Repositories, builder *Builder, lineups *LineupResolver, clock Clock) *Profiles {
	return &Profiles{repos: repos, builder: builder, lineups: lineups, clock: clock}
}

// yearsOf returns distinct years of rows, newest first
func yearsOf(rows []*models.Result) []int {
	seen := make(map[int]struct{})
	years := make([]int, 0)
	for _, r := range rows {
		if _, ok := seen[r.Race.Year]; !ok {
			seen[r.Race.Year] = struct{}{}
			years = append(years, r.Race.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

func inYear(rows []*models.Result, year int) []*models.Result {
	out := make([]*models.Result, 0)
	for _, r := range rows {
		if r.Race.Year == year {
			out = append(out, r)
		}
	}
	return out
}

// pickYear returns year when non-zero, else the newest available one
func pickYear(year int, available []int) int {
	if year != 0 || len(available) == 0 {
		return year
	}
	return available[0]
}

// Driver builds a driver profile for year, or the latest season raced when year is 0.
// Races are listed by round, descending when desc is set.
func (p *Profiles) Driver(ctx context.Context, ref string, year int, desc bool) (*DriverProfile, error) {
	driver, err := p.repos.Driver.GetByRef(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("driver %s: %w", ref, err)
	}

	filter := repository.ResultFilter{DriverRef: ref}
	main, err := p.repos.Result.List(ctx, models.SessionRace, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for %s: %w", ref, err)
	}
	sprint, err := p.repos.Result.List(ctx, models.SessionSprint, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list sprint results for %s: %w", ref, err)
	}

	prof := &DriverProfile{
		Driver:         driver,
		AvailableYears: yearsOf(main),
		Career:         ComputeStats(main, sprint),
	}
	prof.Year = pickYear(year, prof.AvailableYears)

	seasonMain := inYear(main, prof.Year)
	seasonSprint := inYear(sprint, prof.Year)
	prof.SeasonGP = ComputeStats(seasonMain, nil)
	prof.SeasonSprint = ComputeStats(seasonSprint, nil)
	prof.SeasonTotal = ComputeStats(seasonMain, seasonSprint)

	if prof.Year != 0 {
		races, err := p.repos.Race.List(ctx, repository.RaceFilter{Year: prof.Year})
		if err != nil {
			return nil, fmt.Errorf("failed to list %d races: %w", prof.Year, err)
		}
		sort.SliceStable(races, func(i, j int) bool {
			if desc {
				return races[i].Round > races[j].Round
			}
			return races[i].Round < races[j].Round
		})
		mainBy := byRace(seasonMain)
		sprintBy := byRace(seasonSprint)
		for _, race := range races {
			row := RaceRow{Race: race, Main: mainBy[race.Key()], Sprint: sprintBy[race.Key()]}
			if row.Main != nil || row.Sprint != nil {
				prof.Races = append(prof.Races, row)
			}
		}
	}

	spells := make(map[string]*Period)
	for _, r := range main {
		if spells[r.ConstructorRef] == nil {
			spells[r.ConstructorRef] = &Period{}
		}
		spells[r.ConstructorRef].extend(r.Race.Year)
	}
	teamRefs := make([]string, 0, len(spells))
	for teamRef := range spells {
		teamRefs = append(teamRefs, teamRef)
	}
	sort.Strings(teamRefs)
	teams, err := loadConstructors(ctx, p.repos.Constructor, teamRefs)
	if err != nil {
		return nil, err
	}
	for _, teamRef := range teamRefs {
		prof.Teams = append(prof.Teams, TeamSpell{Constructor: teams[teamRef], Period: *spells[teamRef]})
	}
	sort.SliceStable(prof.Teams, func(i, j int) bool { return prof.Teams[i].Period.End > prof.Teams[j].Period.End })

	return prof, nil
}

// Constructor builds a constructor profile for year, or the latest season entered when year is 0
func (p *Profiles) Constructor(ctx context.Context, ref string, year int) (*ConstructorProfile, error) {
	team, err := p.repos.Constructor.GetByRef(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("constructor %s: %w", ref, err)
	}

	filter := repository.ResultFilter{ConstructorRef: ref}
	main, err := p.repos.Result.List(ctx, models.SessionRace, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for %s: %w", ref, err)
	}
	sprint, err := p.repos.Result.List(ctx, models.SessionSprint, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list sprint results for %s: %w", ref, err)
	}

	prof := &ConstructorProfile{
		Constructor:    team,
		AvailableYears: yearsOf(main),
		AllTime:        ComputeTeamStats(main, sprint),
	}
	if n := len(prof.AvailableYears); n > 0 {
		prof.FirstEntry = prof.AvailableYears[n-1]
	}
	prof.Year = pickYear(year, prof.AvailableYears)

	seasonMain := inYear(main, prof.Year)
	seasonSprint := inYear(sprint, prof.Year)
	prof.SeasonGP = ComputeTeamStats(seasonMain, nil)
	prof.SeasonSprint = ComputeTeamStats(seasonSprint, nil)
	prof.SeasonTotal = ComputeTeamStats(seasonMain, seasonSprint)

	if prof.Roster, err = p.lineups.SeasonRoster(ctx, ref, prof.Year); err != nil {
		return nil, err
	}
	prof.Comparison = Comparison(prof.Roster)

	spells := make(map[string]*Period)
	for _, r := range main {
		if spells[r.DriverRef] == nil {
			spells[r.DriverRef] = &Period{}
		}
		spells[r.DriverRef].extend(r.Race.Year)
	}
	driverRefs := make([]string, 0, len(spells))
	for driverRef := range spells {
		driverRefs = append(driverRefs, driverRef)
	}
	drivers, err := loadDrivers(ctx, p.repos.Driver, driverRefs)
	if err != nil {
		return nil, err
	}
	for _, driverRef := range driverRefs {
		prof.Drivers = append(prof.Drivers, DriverSpell{Driver: drivers[driverRef], Period: *spells[driverRef]})
	}
	sort.Slice(prof.Drivers, func(i, j int) bool {
		a, b := prof.Drivers[i], prof.Drivers[j]
		if a.Period.End != b.Period.End {
			return a.Period.End > b.Period.End
		}
		if a.Driver.Surname != b.Driver.Surname {
			return a.Driver.Surname < b.Driver.Surname
		}
		return a.Driver.Ref < b.Driver.Ref
	})

	if prof.Year != 0 {
		races, err := p.repos.Race.List(ctx, repository.RaceFilter{Year: prof.Year})
		if err != nil {
			return nil, fmt.Errorf("failed to list %d races: %w", prof.Year, err)
		}
		sort.SliceStable(races, func(i, j int) bool { return races[i].Round < races[j].Round })
		mainBy := groupByRace(seasonMain)
		sprintBy := groupByRace(seasonSprint)
		for _, race := range races {
			row := TeamRaceRow{Race: race, Results: mainBy[race.Key()], Sprints: sprintBy[race.Key()]}
			if len(row.Results) > 0 || len(row.Sprints) > 0 {
				prof.Races = append(prof.Races, row)
			}
		}
	}

	return prof, nil
}

// Circuit builds a circuit's race history, newest first, with its most successful driver and team
func (p *Profiles) Circuit(ctx context.Context, ref string) (*CircuitProfile, error) {
	circuit, err := p.repos.Circuit.GetByRef(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("circuit %s: %w", ref, err)
	}

	races, err := p.repos.Race.List(ctx, repository.RaceFilter{CircuitRef: ref, Descending: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list races at %s: %w", ref, err)
	}
	winners, err := p.repos.Result.List(ctx, models.SessionRace, repository.ResultFilter{CircuitRef: ref, Position: intPtr(1)})
	if err != nil {
		return nil, fmt.Errorf("failed to list winners at %s: %w", ref, err)
	}

	prof := &CircuitProfile{Circuit: circuit, RaceCount: len(races)}
	if len(races) > 0 {
		prof.LastYear = races[0].Year
		prof.FirstYear = races[len(races)-1].Year
	}

	winnerBy := byRace(winners)
	for _, race := range races {
		prof.Races = append(prof.Races, CircuitRace{Race: race, Winner: winnerBy[race.Key()]})
	}

	driverWins := countWins(winners, func(r *models.Result) string { return r.DriverRef })
	teamWins := countWins(winners, func(r *models.Result) string { return r.ConstructorRef })

	if top := topTally(driverWins); top != nil {
		drivers, err := loadDrivers(ctx, p.repos.Driver, []string{top.Ref})
		if err != nil {
			return nil, err
		}
		top.Name = drivers[top.Ref].FullName()
		prof.TopDriver = top
	}
	if top := topTally(teamWins); top != nil {
		teams, err := loadConstructors(ctx, p.repos.Constructor, []string{top.Ref})
		if err != nil {
			return nil, err
		}
		top.Name = teams[top.Ref].Name
		prof.TopTeam = top
	}

	return prof, nil
}

// Race returns a race's main and sprint classification with the podium
func (p *Profiles) Race(ctx context.Context, key models.RaceKey) (*RaceDetail, error) {
	race, err := p.repos.Race.GetByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("race %s: %w", key, err)
	}

	detail := &RaceDetail{Race: race}
	filter := repository.ResultFilter{Race: &key}
	if detail.Results, err = p.repos.Result.List(ctx, models.SessionRace, filter); err != nil {
		return nil, fmt.Errorf("failed to list results for %s: %w", key, err)
	}
	if detail.SprintResults, err = p.repos.Result.List(ctx, models.SessionSprint, filter); err != nil {
		return nil, fmt.Errorf("failed to list sprint results for %s: %w", key, err)
	}
	detail.Podium = podium(detail.Results)
	return detail, nil
}

// podium returns the classified finishers among the first three rows
func podium(ordered []*models.Result) []*models.Result {
	out := make([]*models.Result, 0, 3)
	for i, r := range ordered {
		if i == 3 {
			break
		}
		if r.IsClassified() {
			out = append(out, r)
		}
	}
	return out
}

func byRace(rows []*models.Result) map[models.RaceKey]*models.Result {
	out := make(map[models.RaceKey]*models.Result, len(rows))
	for _, r := range rows {
		if _, ok := out[r.Race]; !ok {
			out[r.Race] = r
		}
	}
	return out
}

func groupByRace(rows []*models.Result) map[models.RaceKey][]*models.Result {
	out := make(map[models.RaceKey][]*models.Result)
	for _, r := range rows {
		out[r.Race] = append(out[r.Race], r)
	}
	return out
}

func countWins(winners []*models.Result, ref func(*models.Result) string) map[string]int {
	out := make(map[string]int)
	for _, r := range winners {
		out[ref(r)]++
	}
	return out
}

// topTally picks the most wins, ties to the lowest ref
func topTally(wins map[string]int) *WinTally {
	var top *WinTally
	for ref, n := range wins {
		if top == nil || n > top.Wins || (n == top.Wins && ref < top.Ref) {
			top = &WinTally{Ref: ref, Wins: n}
		}
	}
	return top
}

func intPtr(v int) *int { return &v }
