// Package search resolves free-text queries against drivers, teams, circuits
// and races, and answers "who was champion in year Y" style questions.
package search

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/Dencchi/f1-knowledge-base/internal/config"
	"github.com/Dencchi/f1-knowledge-base/internal/logger"
	"github.com/Dencchi/f1-knowledge-base/internal/metrics"
	"github.com/Dencchi/f1-knowledge-base/internal/models"
	"github.com/Dencchi/f1-knowledge-base/internal/repository"
	"github.com/Dencchi/f1-knowledge-base/internal/standings"
)

// Search intents, used as the metrics label
const (
	IntentGeneric  = "generic"
	IntentChampion = "champion"
)

// SmartAnswerChampion is the only smart answer kind
const SmartAnswerChampion = "champion"

// Config holds the matching thresholds. A candidate matches when it scores
// strictly above its threshold.
type Config struct {
	DriverThreshold       float64
	TeamThreshold         float64
	CircuitThreshold      float64
	RaceThreshold         float64
	RaceFallbackThreshold float64
	// RecentRaceCap bounds the fuzzy race fallback to the newest races
	RecentRaceCap int
	// StrictMatchMinimum is the substring hit count below which the fuzzy race fallback runs
	StrictMatchMinimum int
	ChampionKeywords   []string
	DriverKeywords     []string
	// Timeout bounds a whole search; zero disables it
	Timeout time.Duration
}

// DefaultConfig returns the standard thresholds
func DefaultConfig() Config {
	return Config{
		DriverThreshold:       80,
		TeamThreshold:         80,
		CircuitThreshold:      75,
		RaceThreshold:         70,
		RaceFallbackThreshold: 80,
		RecentRaceCap:         100,
		StrictMatchMinimum:    5,
		ChampionKeywords:      []string{"чемпион", "победил", "выиграл", "champion", "winner", "won"},
		DriverKeywords:        []string{"пилот", "driver"},
		Timeout:               2 * time.Second,
	}
}

// ConfigFrom maps the search section of the application config
func ConfigFrom(c config.SearchConfig) Config {
	return Config{
		DriverThreshold:       c.DriverThreshold,
		TeamThreshold:         c.TeamThreshold,
		CircuitThreshold:      c.CircuitThreshold,
		RaceThreshold:         c.RaceThreshold,
		RaceFallbackThreshold: c.RaceFallbackThreshold,
		RecentRaceCap:         c.RecentRaceCap,
		StrictMatchMinimum:    c.StrictMatchMinimum,
		ChampionKeywords:      c.ChampionKeywords,
		DriverKeywords:        c.DriverKeywords,
		Timeout:               c.Timeout(),
	}
}

// ChampionLookup finds the drivers' champion of a season, nil when the season has no results
type ChampionLookup interface {
	ChampionOf(ctx context.Context, year int) (*standings.Champion, error)
}

// SmartAnswer is a direct answer shown above the result lists
type SmartAnswer struct {
	Kind        string         `json:"kind"`
	Title       string         `json:"title"`
	Year        int            `json:"year"`
	Driver      *models.Driver `json:"driver"`
	Points      float64        `json:"points"`
	Description string         `json:"description"`
}

// Results holds the matches of one search. Each list holds an entity at most
// once, in first-match order.
type Results struct {
	Query       string                `json:"query"`
	Year        int                   `json:"year,omitempty"`
	Intent      string                `json:"intent"`
	SmartAnswer *SmartAnswer          `json:"smart_answer,omitempty"`
	Drivers     []*models.Driver      `json:"drivers"`
	Teams       []*models.Constructor `json:"teams"`
	Circuits    []*models.Circuit     `json:"circuits"`
	Races       []*models.Race        `json:"races"`
}

// Total is the number of matched entities across categories
func (r *Results) Total() int {
	return len(r.Drivers) + len(r.Teams) + len(r.Circuits) + len(r.Races)
}

// Option customizes an Engine
type Option func(*Engine)

// WithSimilarity replaces the default partial ratio scorer
func WithSimilarity(s Similarity) Option {
	return func(e *Engine) {
		e.sim = s
	}
}

// Engine runs searches against the entity store. It holds no per-request state.
type Engine struct {
	repos     *repository.Repositories
	champions ChampionLookup
	sim       Similarity
	cfg       Config
	log       *logger.QueryLogger
}

// NewEngine creates a search engine. champions may be nil, which disables smart answers.
func NewEngine(repos *repository.Repositories, champions ChampionLookup, cfg Config, log *logrus.Logger, opts ...Option) *Engine {
	e := &Engine{
		repos:     repos,
		champions: champions,
		sim:       DefaultSimilarity,
		cfg:       cfg,
		log:       logger.NewQueryLogger(log),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func emptyResults(q Query) *Results {
	return &Results{
		Query:    q.Text,
		Year:     q.Year,
		Intent:   IntentGeneric,
		Drivers:  []*models.Driver{},
		Teams:    []*models.Constructor{},
		Circuits: []*models.Circuit{},
		Races:    []*models.Race{},
	}
}

// Search parses text and matches it against every entity category. A blank
// query returns empty lists and no smart answer.
func (e *Engine) Search(ctx context.Context, text string) (*Results, error) {
	start := time.Now()
	q := ParseQuery(text)
	res := emptyResults(q)
	if q.Empty() {
		return res, nil
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	if q.HasYear() && q.ContainsAny(e.cfg.ChampionKeywords) {
		res.Intent = IntentChampion
		answer, err := e.smartAnswer(ctx, q.Year)
		if err != nil {
			return nil, err
		}
		res.SmartAnswer = answer
	}

	phases := []func(context.Context, Query, *Results) error{
		e.matchDrivers,
		e.matchTeams,
		e.matchCircuits,
		e.matchRaces,
	}
	for _, phase := range phases {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("search %q aborted: %w", q.Text, err)
		}
		if err := phase(ctx, q, res); err != nil {
			return nil, err
		}
	}

	elapsed := time.Since(start)
	metrics.RecordSearch(res.Intent, elapsed.Seconds())
	e.log.LogSearch(q.Text, q.Year, res.Intent, len(res.Drivers), len(res.Teams), len(res.Circuits), len(res.Races), elapsed)
	return res, nil
}

func (e *Engine) smartAnswer(ctx context.Context, year int) (*SmartAnswer, error) {
	if e.champions == nil {
		return nil, nil
	}
	champ, err := e.champions.ChampionOf(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %d champion: %w", year, err)
	}
	if champ == nil {
		return nil, nil
	}

	metrics.RecordSmartAnswer()
	e.log.LogSmartAnswer(year, champ.Driver.Ref, champ.Points)
	return &SmartAnswer{
		Kind:        SmartAnswerChampion,
		Title:       fmt.Sprintf("Champion %d", year),
		Year:        year,
		Driver:      champ.Driver,
		Points:      champ.Points,
		Description: fmt.Sprintf("Scored %d points.", int(champ.Points)),
	}, nil
}

func (e *Engine) above(query, candidate string, threshold float64) bool {
	return e.sim.Score(query, candidate) > threshold
}

func (e *Engine) matchDrivers(ctx context.Context, q Query, res *Results) error {
	var (
		pool []*models.Driver
		err  error
	)
	if q.HasYear() && q.ContainsAny(e.cfg.DriverKeywords) {
		pool, err = e.driversOfYear(ctx, q.Year)
	} else {
		pool, err = e.repos.Driver.List(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to load drivers: %w", err)
	}

	var hits []*models.Driver
	for _, d := range pool {
		if e.above(q.Lower, d.Surname, e.cfg.DriverThreshold) || e.above(q.Lower, d.FullName(), e.cfg.DriverThreshold) {
			hits = append(hits, d)
		}
	}
	res.Drivers = dedupe(hits, func(d *models.Driver) string { return d.Ref })
	return nil
}

// driversOfYear returns the drivers with a main result in year
func (e *Engine) driversOfYear(ctx context.Context, year int) ([]*models.Driver, error) {
	rows, err := e.repos.Result.List(ctx, models.SessionRace, repository.ResultFilter{Year: year})
	if err != nil {
		return nil, err
	}
	refs := dedupe(rows, func(r *models.Result) string { return r.DriverRef })
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.DriverRef
	}
	return e.repos.Driver.ListByRefs(ctx, ids)
}

func (e *Engine) matchTeams(ctx context.Context, q Query, res *Results) error {
	teams, err := e.repos.Constructor.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load constructors: %w", err)
	}

	var hits []*models.Constructor
	for _, t := range teams {
		if e.above(q.Lower, t.Name, e.cfg.TeamThreshold) {
			hits = append(hits, t)
		}
	}
	res.Teams = dedupe(hits, func(t *models.Constructor) string { return t.Ref })
	return nil
}

func (e *Engine) matchCircuits(ctx context.Context, q Query, res *Results) error {
	circuits, err := e.repos.Circuit.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load circuits: %w", err)
	}

	var hits []*models.Circuit
	for _, c := range circuits {
		if e.above(q.Lower, c.SearchText(), e.cfg.CircuitThreshold) {
			hits = append(hits, c)
		}
	}
	res.Circuits = dedupe(hits, func(c *models.Circuit) string { return c.Ref })
	return nil
}

func (e *Engine) matchRaces(ctx context.Context, q Query, res *Results) error {
	var (
		hits []*models.Race
		err  error
	)
	if q.HasYear() {
		hits, err = e.racesOfYear(ctx, q)
	} else {
		hits, err = e.racesByName(ctx, q)
	}
	if err != nil {
		return err
	}
	res.Races = dedupe(hits, func(r *models.Race) models.RaceKey { return r.Key() })
	return nil
}

// racesOfYear returns the races of the query year by date. A residual longer
// than two characters filters them by name.
func (e *Engine) racesOfYear(ctx context.Context, q Query) ([]*models.Race, error) {
	races, err := e.repos.Race.List(ctx, repository.RaceFilter{Year: q.Year})
	if err != nil {
		return nil, fmt.Errorf("failed to load %d races: %w", q.Year, err)
	}
	if utf8.RuneCountInString(q.Residual) <= 2 {
		return races, nil
	}

	var hits []*models.Race
	for _, r := range races {
		if e.above(q.Residual, r.Name, e.cfg.RaceThreshold) {
			hits = append(hits, r)
		}
	}
	return hits, nil
}

// racesByName matches race names by substring, newest first. Too few hits
// are topped up with fuzzy matches among the most recent races.
func (e *Engine) racesByName(ctx context.Context, q Query) ([]*models.Race, error) {
	hits, err := e.repos.Race.List(ctx, repository.RaceFilter{NameContains: q.Text, Descending: true})
	if err != nil {
		return nil, fmt.Errorf("failed to match race names: %w", err)
	}
	if len(hits) >= e.cfg.StrictMatchMinimum {
		return hits, nil
	}

	recent, err := e.repos.Race.List(ctx, repository.RaceFilter{Descending: true, Limit: e.cfg.RecentRaceCap})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent races: %w", err)
	}
	seen := make(map[models.RaceKey]struct{}, len(hits))
	for _, r := range hits {
		seen[r.Key()] = struct{}{}
	}
	for _, r := range recent {
		if _, ok := seen[r.Key()]; ok {
			continue
		}
		if e.above(q.Lower, r.Name, e.cfg.RaceFallbackThreshold) {
			hits = append(hits, r)
		}
	}
	return hits, nil
}

// dedupe keeps the first item per key, preserving order. It never returns nil.
func dedupe[T any, K comparable](items []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		k := key(it)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}
