package repository

import (
	"fmt"

	"github.com/Dencchi/f1-knowledge-base/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Circuit     CircuitRepository
	Constructor ConstructorRepository
	Driver      DriverRepository
	Race        RaceRepository
	Result      ResultRepository
}

// NewRepositories creates and returns all PostgreSQL repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Circuit:     NewPostgresCircuitRepository(db),
		Constructor: NewPostgresConstructorRepository(db),
		Driver:      NewPostgresDriverRepository(db),
		Race:        NewPostgresRaceRepository(db),
		Result:      NewPostgresResultRepository(db),
	}, nil
}

// NewMemoryRepositories exposes a MemoryStore through the repository interfaces
func NewMemoryRepositories(store *MemoryStore) *Repositories {
	if store == nil {
		store = NewMemoryStore()
	}

	return &Repositories{
		Circuit:     store.Circuits(),
		Constructor: store.Constructors(),
		Driver:      store.Drivers(),
		Race:        store.Races(),
		Result:      store.Results(),
	}
}
