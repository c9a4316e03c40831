package repository

import (
	"context"
	"time"

	"github.com/Dencchi/f1-knowledge-base/internal/models"
)

// RaceFilter narrows race listings. Zero values mean "no constraint".
type RaceFilter struct {
	Year         int
	CircuitRef   string
	OnOrBefore   *time.Time // race date <= value
	Before       *time.Time // race date < value
	From         *time.Time // race date >= value
	WithResults  bool       // at least one main result recorded
	NameContains string     // case-insensitive substring on race name
	Descending   bool       // order by date descending instead of ascending
	Limit        int
}

// ResultFilter narrows result listings and sums. Zero values mean "no constraint".
type ResultFilter struct {
	DriverRef      string
	ConstructorRef string
	Year           int
	Race           *models.RaceKey
	CircuitRef     string
	Position       *int
}

// CircuitRepository defines the interface for circuit data access
type CircuitRepository interface {
	GetByRef(ctx context.Context, ref string) (*models.Circuit, error)
	List(ctx context.Context) ([]*models.Circuit, error)
	Upsert(ctx context.Context, circuit *models.Circuit) error
}

// ConstructorRepository defines the interface for constructor data access
type ConstructorRepository interface {
	GetByRef(ctx context.Context, ref string) (*models.Constructor, error)
	List(ctx context.Context) ([]*models.Constructor, error)
	// ListByRefs returns the constructors in the order of refs, skipping unknown ones
	ListByRefs(ctx context.Context, refs []string) ([]*models.Constructor, error)
	Upsert(ctx context.Context, constructor *models.Constructor) error
	ResetChampionships(ctx context.Context) error
	IncrementChampionships(ctx context.Context, ref string) error
}

// DriverRepository defines the interface for driver data access
type DriverRepository interface {
	GetByRef(ctx context.Context, ref string) (*models.Driver, error)
	List(ctx context.Context) ([]*models.Driver, error)
	// ListByRefs returns the drivers in the order of refs, skipping unknown ones
	ListByRefs(ctx context.Context, refs []string) ([]*models.Driver, error)
	Upsert(ctx context.Context, driver *models.Driver) error
	ResetChampionships(ctx context.Context) error
	IncrementChampionships(ctx context.Context, ref string) error
}

// RaceRepository defines the interface for race data access
type RaceRepository interface {
	GetByKey(ctx context.Context, key models.RaceKey) (*models.Race, error)
	List(ctx context.Context, filter RaceFilter) ([]*models.Race, error)
	// Years returns the distinct season years, newest first
	Years(ctx context.Context) ([]int, error)
	Upsert(ctx context.Context, race *models.Race) error
}

// ResultRepository defines the interface for main race and sprint result data access.
// Results are ordered by race date, then finishing position with unclassified rows last.
type ResultRepository interface {
	List(ctx context.Context, session models.Session, filter ResultFilter) ([]*models.Result, error)
	// SumPoints returns nil when no row matches the filter
	SumPoints(ctx context.Context, session models.Session, filter ResultFilter) (*float64, error)
	Upsert(ctx context.Context, result *models.Result) error
}
