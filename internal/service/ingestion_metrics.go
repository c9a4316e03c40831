package service

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dencchi/f1-knowledge-base/internal/metrics"
)

// Imported entity names, used as metric labels and report keys
const (
	EntityCircuits     = "circuits"
	EntityConstructors = "constructors"
	EntityDrivers      = "drivers"
	EntityRaces        = "races"
	EntityResults      = "results"
	EntitySprints      = "sprint_results"
	EntityChampions    = "champions"
)

// IngestionMetrics tracks statistics about one import run and mirrors them
// to the Prometheus collectors.
type IngestionMetrics struct {
	mu               sync.RWMutex
	StartTime        time.Time
	Duration         time.Duration
	Imported         map[string]int
	Skipped          int
	ValidationErrors int
	Errors           int
}

// NewIngestionMetrics creates a new metrics tracker
func NewIngestionMetrics() *IngestionMetrics {
	return &IngestionMetrics{
		StartTime: time.Now(),
		Imported:  make(map[string]int),
	}
}

// Reset resets all metrics
func (m *IngestionMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.Imported = make(map[string]int)
	m.Skipped = 0
	m.ValidationErrors = 0
	m.Errors = 0
}

// RecordImported adds n persisted records of an entity
func (m *IngestionMetrics) RecordImported(entity string, n int) {
	if n <= 0 {
		return
	}
	m.mu.Lock()
	m.Imported[entity] += n
	m.mu.Unlock()
	metrics.RecordImportRecords(entity, n)
}

// RecordSkipped counts a record dropped because it references unknown data
func (m *IngestionMetrics) RecordSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Skipped++
}

// RecordValidationError counts a record rejected by the validator
func (m *IngestionMetrics) RecordValidationError(entity string) {
	m.mu.Lock()
	m.ValidationErrors++
	m.mu.Unlock()
	metrics.RecordImportError(entity)
}

// RecordError counts a failed request or write
func (m *IngestionMetrics) RecordError(entity string) {
	m.mu.Lock()
	m.Errors++
	m.mu.Unlock()
	metrics.RecordImportError(entity)
}

// Finish stamps the run duration and publishes it
func (m *IngestionMetrics) Finish() {
	m.mu.Lock()
	m.Duration = time.Since(m.StartTime)
	d := m.Duration
	m.mu.Unlock()
	metrics.RecordImportCompleted(d.Seconds(), float64(time.Now().Unix()))
}

// Count returns the number of imported records of an entity
func (m *IngestionMetrics) Count(entity string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Imported[entity]
}

// Counts returns a copy of the per-entity totals
func (m *IngestionMetrics) Counts() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int, len(m.Imported))
	for k, v := range m.Imported {
		out[k] = v
	}
	return out
}

// Failed returns validation and system errors combined
func (m *IngestionMetrics) Failed() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ValidationErrors + m.Errors
}

// String returns a formatted string representation of metrics
func (m *IngestionMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entities := make([]string, 0, len(m.Imported))
	for k := range m.Imported {
		entities = append(entities, k)
	}
	sort.Strings(entities)

	parts := make([]string, 0, len(entities))
	for _, e := range entities {
		parts = append(parts, fmt.Sprintf("%s=%d", e, m.Imported[e]))
	}

	return fmt.Sprintf("IngestionMetrics{%s, Skipped=%d, ValidationErrors=%d, Errors=%d, Duration=%v}",
		strings.Join(parts, ", "), m.Skipped, m.ValidationErrors, m.Errors, m.Duration)
}
