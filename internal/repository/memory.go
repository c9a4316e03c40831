package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dencchi/f1-knowledge-base/internal/models"
)

// Snapshot is the JSON layout accepted by LoadSnapshot
type Snapshot struct {
	Circuits      []*models.Circuit     `json:"circuits"`
	Constructors  []*models.Constructor `json:"constructors"`
	Drivers       []*models.Driver      `json:"drivers"`
	Races         []*models.Race        `json:"races"`
	Results       []*models.Result      `json:"results"`
	SprintResults []*models.Result      `json:"sprint_results"`
}

type resultKey struct {
	session models.Session
	race    models.RaceKey
	driver  string
}

// MemoryStore is an in-process entity store. It backs tests and offline
// snapshots and implements the same interfaces as the PostgreSQL repositories.
type MemoryStore struct {
	mu           sync.RWMutex
	circuits     map[string]*models.Circuit
	constructors map[string]*models.Constructor
	drivers      map[string]*models.Driver
	races        map[models.RaceKey]*models.Race
	results      map[resultKey]*models.Result
	resultOrder  []resultKey
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		circuits:     make(map[string]*models.Circuit),
		constructors: make(map[string]*models.Constructor),
		drivers:      make(map[string]*models.Driver),
		races:        make(map[models.RaceKey]*models.Race),
		results:      make(map[resultKey]*models.Result),
	}
}

// LoadSnapshot reads a JSON snapshot file into a new store
func LoadSnapshot(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	return NewMemoryStoreFromSnapshot(&snap)
}

// NewMemoryStoreFromSnapshot loads entities in dependency order
func NewMemoryStoreFromSnapshot(snap *Snapshot) (*MemoryStore, error) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, c := range snap.Circuits {
		if err := s.Circuits().Upsert(ctx, c); err != nil {
			return nil, err
		}
	}
	for _, c := range snap.Constructors {
		if err := s.Constructors().Upsert(ctx, c); err != nil {
			return nil, err
		}
	}
	for _, d := range snap.Drivers {
		if err := s.Drivers().Upsert(ctx, d); err != nil {
			return nil, err
		}
	}
	for _, r := range snap.Races {
		if err := s.Races().Upsert(ctx, r); err != nil {
			return nil, err
		}
	}
	for _, r := range snap.Results {
		r.Session = models.SessionRace
		if err := s.Results().Upsert(ctx, r); err != nil {
			return nil, err
		}
	}
	for _, r := range snap.SprintResults {
		r.Session = models.SessionSprint
		if err := s.Results().Upsert(ctx, r); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Circuits returns the circuit view of the store
func (s *MemoryStore) Circuits() CircuitRepository { return &memoryCircuits{s} }

// Constructors returns the constructor view of the store
func (s *MemoryStore) Constructors() ConstructorRepository { return &memoryConstructors{s} }

// Drivers returns the driver view of the store
func (s *MemoryStore) Drivers() DriverRepository { return &memoryDrivers{s} }

// Races returns the race view of the store
func (s *MemoryStore) Races() RaceRepository { return &memoryRaces{s} }

// Results returns the result view of the store
func (s *MemoryStore) Results() ResultRepository { return &memoryResults{s} }

// --- circuits ---

type memoryCircuits struct{ s *MemoryStore }

func (m *memoryCircuits) GetByRef(ctx context.Context, ref string) (*models.Circuit, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	c, ok := m.s.circuits[ref]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memoryCircuits) List(ctx context.Context) ([]*models.Circuit, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	out := make([]*models.Circuit, 0, len(m.s.circuits))
	for _, c := range m.s.circuits {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Ref < out[j].Ref
	})
	return out, nil
}

func (m *memoryCircuits) Upsert(ctx context.Context, circuit *models.Circuit) error {
	if circuit == nil || circuit.Ref == "" {
		return models.ErrInvalidRef
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	cp := *circuit
	m.s.circuits[circuit.Ref] = &cp
	return nil
}

// --- constructors ---

type memoryConstructors struct{ s *MemoryStore }

func (m *memoryConstructors) GetByRef(ctx context.Context, ref string) (*models.Constructor, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	c, ok := m.s.constructors[ref]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memoryConstructors) List(ctx context.Context) ([]*models.Constructor, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	out := make([]*models.Constructor, 0, len(m.s.constructors))
	for _, c := range m.s.constructors {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Ref < out[j].Ref
	})
	return out, nil
}

func (m *memoryConstructors) ListByRefs(ctx context.Context, refs []string) ([]*models.Constructor, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	out := make([]*models.Constructor, 0, len(refs))
	for _, ref := range refs {
		if c, ok := m.s.constructors[ref]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memoryConstructors) Upsert(ctx context.Context, constructor *models.Constructor) error {
	if constructor == nil || constructor.Ref == "" {
		return models.ErrInvalidRef
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	cp := *constructor
	if existing, ok := m.s.constructors[constructor.Ref]; ok {
		// counters and livery are owned by separate jobs
		cp.Championships = existing.Championships
		if cp.HexColor == "" {
			cp.HexColor = existing.HexColor
		}
	}
	m.s.constructors[constructor.Ref] = &cp
	return nil
}

func (m *memoryConstructors) ResetChampionships(ctx context.Context) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, c := range m.s.constructors {
		c.Championships = 0
	}
	return nil
}

func (m *memoryConstructors) IncrementChampionships(ctx context.Context, ref string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	c, ok := m.s.constructors[ref]
	if !ok {
		return models.ErrNotFound
	}
	c.Championships++
	return nil
}

// --- drivers ---

type memoryDrivers struct{ s *MemoryStore }

func (m *memoryDrivers) GetByRef(ctx context.Context, ref string) (*models.Driver, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	d, ok := m.s.drivers[ref]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memoryDrivers) List(ctx context.Context) ([]*models.Driver, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	out := make([]*models.Driver, 0, len(m.s.drivers))
	for _, d := range m.s.drivers {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Surname != out[j].Surname {
			return out[i].Surname < out[j].Surname
		}
		if out[i].Forename != out[j].Forename {
			return out[i].Forename < out[j].Forename
		}
		return out[i].Ref < out[j].Ref
	})
	return out, nil
}

func (m *memoryDrivers) ListByRefs(ctx context.Context, refs []string) ([]*models.Driver, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	out := make([]*models.Driver, 0, len(refs))
	for _, ref := range refs {
		if d, ok := m.s.drivers[ref]; ok {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memoryDrivers) Upsert(ctx context.Context, driver *models.Driver) error {
	if driver == nil || driver.Ref == "" {
		return models.ErrInvalidRef
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	cp := *driver
	if existing, ok := m.s.drivers[driver.Ref]; ok {
		cp.Championships = existing.Championships
	}
	m.s.drivers[driver.Ref] = &cp
	return nil
}

func (m *memoryDrivers) ResetChampionships(ctx context.Context) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, d := range m.s.drivers {
		d.Championships = 0
	}
	return nil
}

func (m *memoryDrivers) IncrementChampionships(ctx context.Context, ref string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	d, ok := m.s.drivers[ref]
	if !ok {
		return models.ErrNotFound
	}
	d.Championships++
	return nil
}

// --- races ---

type memoryRaces struct{ s *MemoryStore }

func (m *memoryRaces) GetByKey(ctx context.Context, key models.RaceKey) (*models.Race, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	r, ok := m.s.races[key]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memoryRaces) List(ctx context.Context, filter RaceFilter) ([]*models.Race, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	var withResults map[models.RaceKey]bool
	if filter.WithResults {
		withResults = make(map[models.RaceKey]bool)
		for k := range m.s.results {
			if k.session == models.SessionRace {
				withResults[k.race] = true
			}
		}
	}
	needle := strings.ToLower(filter.NameContains)

	out := make([]*models.Race, 0)
	for key, r := range m.s.races {
		if filter.Year != 0 && r.Year != filter.Year {
			continue
		}
		if filter.CircuitRef != "" && r.CircuitRef != filter.CircuitRef {
			continue
		}
		if filter.OnOrBefore != nil && r.Date.After(*filter.OnOrBefore) {
			continue
		}
		if filter.Before != nil && !r.Date.Before(*filter.Before) {
			continue
		}
		if filter.From != nil && r.Date.Before(*filter.From) {
			continue
		}
		if filter.WithResults && !withResults[key] {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(r.Name), needle) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if filter.Descending {
			a, b = b, a
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Round < b.Round
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memoryRaces) Years(ctx context.Context) ([]int, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	seen := make(map[int]bool)
	years := make([]int, 0)
	for key := range m.s.races {
		if !seen[key.Year] {
			seen[key.Year] = true
			years = append(years, key.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

func (m *memoryRaces) Upsert(ctx context.Context, race *models.Race) error {
	if race == nil || race.Year == 0 || race.Round == 0 {
		return models.ErrInvalidYear
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	cp := *race
	m.s.races[race.Key()] = &cp
	for _, res := range m.s.results {
		if res.Race == race.Key() {
			res.RaceDate = race.Date
		}
	}
	return nil
}

// --- results ---

type memoryResults struct{ s *MemoryStore }

// matching must be called with the read lock held
func (m *memoryResults) matching(session models.Session, filter ResultFilter) []*models.Result {
	out := make([]*models.Result, 0)
	for _, key := range m.s.resultOrder {
		if key.session != session {
			continue
		}
		res := m.s.results[key]
		if filter.DriverRef != "" && res.DriverRef != filter.DriverRef {
			continue
		}
		if filter.ConstructorRef != "" && res.ConstructorRef != filter.ConstructorRef {
			continue
		}
		if filter.Year != 0 && res.Race.Year != filter.Year {
			continue
		}
		if filter.Race != nil && res.Race != *filter.Race {
			continue
		}
		if filter.Position != nil && !res.FinishedAt(*filter.Position) {
			continue
		}
		if filter.CircuitRef != "" {
			race, ok := m.s.races[res.Race]
			if !ok || race.CircuitRef != filter.CircuitRef {
				continue
			}
		}
		out = append(out, res)
	}
	return out
}

func (m *memoryResults) List(ctx context.Context, session models.Session, filter ResultFilter) ([]*models.Result, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	rows := m.matching(session, filter)
	out := make([]*models.Result, len(rows))
	for i, res := range rows {
		cp := *res
		out[i] = &cp
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.RaceDate.Equal(b.RaceDate) {
			return a.RaceDate.Before(b.RaceDate)
		}
		if a.Race != b.Race {
			if a.Race.Year != b.Race.Year {
				return a.Race.Year < b.Race.Year
			}
			return a.Race.Round < b.Race.Round
		}
		if a.Position == nil || b.Position == nil {
			return a.Position != nil
		}
		return *a.Position < *b.Position
	})
	return out, nil
}

func (m *memoryResults) SumPoints(ctx context.Context, session models.Session, filter ResultFilter) (*float64, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	rows := m.matching(session, filter)
	if len(rows) == 0 {
		return nil, nil
	}

	total := decimal.Zero
	for _, res := range rows {
		total = total.Add(decimal.NewFromFloat(res.Points))
	}
	sum := total.InexactFloat64()
	return &sum, nil
}

func (m *memoryResults) Upsert(ctx context.Context, result *models.Result) error {
	if result == nil || result.DriverRef == "" || result.ConstructorRef == "" {
		return models.ErrInvalidRef
	}
	if result.Session != models.SessionRace && result.Session != models.SessionSprint {
		return fmt.Errorf("unknown session %q", result.Session)
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	cp := *result
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	if race, ok := m.s.races[cp.Race]; ok {
		cp.RaceDate = race.Date
	}

	key := resultKey{session: cp.Session, race: cp.Race, driver: cp.DriverRef}
	if existing, ok := m.s.results[key]; ok {
		cp.ID = existing.ID
	} else {
		m.s.resultOrder = append(m.s.resultOrder, key)
	}
	m.s.results[key] = &cp
	return nil
}
