package standings

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dencchi/f1-knowledge-base/internal/models"
	"github.com/Dencchi/f1-knowledge-base/internal/repository"
)

// Champion is the season's top-scoring driver
type Champion struct {
	Driver *models.Driver `json:"driver"`
	Year   int            `json:"year"`
	Points float64        `json:"points"`
}

// ConstructorChampion is the season's top-scoring constructor
type ConstructorChampion struct {
	Constructor *models.Constructor `json:"constructor"`
	Year        int                 `json:"year"`
	Points      float64             `json:"points"`
}

// ChampionResolver answers "who won year Y". Candidates are visited in
// ascending reference order and only a strictly greater total replaces the
// leader, so ties go to the lowest reference.
type ChampionResolver struct {
	repos *repository.Repositories
	agg   *Aggregator
}

// NewChampionResolver creates a champion resolver
func NewChampionResolver(repos *repository.Repositories, agg *Aggregator) *ChampionResolver {
	return &ChampionResolver{repos: repos, agg: agg}
}

// leader returns the ref with the highest combined points among candidates
// with a main result in year
func (c *ChampionResolver) leader(ctx context.Context, kind EntityKind, year int) (string, float64, error) {
	main, err := c.repos.Result.List(ctx, models.SessionRace, repository.ResultFilter{Year: year})
	if err != nil {
		return "", 0, fmt.Errorf("failed to list %d results: %w", year, err)
	}

	refs := collectRefs(main, func(r *models.Result) string {
		if kind == KindDriver {
			return r.DriverRef
		}
		return r.ConstructorRef
	})
	sort.Strings(refs)

	best, bestPoints := "", -1.0
	for _, ref := range refs {
		points, err := c.agg.SeasonPoints(ctx, kind, ref, year)
		if err != nil {
			return "", 0, err
		}
		if points > bestPoints {
			best, bestPoints = ref, points
		}
	}
	return best, bestPoints, nil
}

// ChampionOf returns the drivers' champion of year, or nil when the season
// has no main results.
func (c *ChampionResolver) ChampionOf(ctx context.Context, year int) (*Champion, error) {
	ref, points, err := c.leader(ctx, KindDriver, year)
	if err != nil || ref == "" {
		return nil, err
	}

	drivers, err := loadDrivers(ctx, c.repos.Driver, []string{ref})
	if err != nil {
		return nil, err
	}
	return &Champion{Driver: drivers[ref], Year: year, Points: points}, nil
}

// ConstructorChampionOf returns the constructors' champion of year, or nil
// when the season has no main results.
func (c *ChampionResolver) ConstructorChampionOf(ctx context.Context, year int) (*ConstructorChampion, error) {
	ref, points, err := c.leader(ctx, KindConstructor, year)
	if err != nil || ref == "" {
		return nil, err
	}

	teams, err := loadConstructors(ctx, c.repos.Constructor, []string{ref})
	if err != nil {
		return nil, err
	}
	return &ConstructorChampion{Constructor: teams[ref], Year: year, Points: points}, nil
}
