// Package standings derives championship standings, statistics, lineups and
// champions from raw race and sprint results.
package standings

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dencchi/f1-knowledge-base/internal/models"
	"github.com/Dencchi/f1-knowledge-base/internal/repository"
)

// EntityKind selects drivers or constructors
type EntityKind string

const (
	KindDriver      EntityKind = "driver"
	KindConstructor EntityKind = "constructor"
)

// ParseKind accepts "driver(s)" and "constructor(s)"/"team(s)"
func ParseKind(s string) (EntityKind, error) {
	switch s {
	case "driver", "drivers":
		return KindDriver, nil
	case "constructor", "constructors", "team", "teams":
		return KindConstructor, nil
	default:
		return "", fmt.Errorf("unknown standings kind %q", s)
	}
}

// Clock returns the current time. Tests inject a fixed one.
type Clock func() time.Time

// today truncates the clock to a UTC calendar day, matching stored race dates
func (c Clock) today() time.Time {
	now := time.Now
	if c != nil {
		now = c
	}
	t := now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Aggregator is the single place where points are summed across the main
// race and sprint tables.
type Aggregator struct {
	results repository.ResultRepository
}

// NewAggregator creates a points aggregator over a result repository
func NewAggregator(results repository.ResultRepository) *Aggregator {
	return &Aggregator{results: results}
}

// SeasonPoints returns the combined main and sprint points of a driver or
// constructor in a season. A season without results yields 0.
func (a *Aggregator) SeasonPoints(ctx context.Context, kind EntityKind, ref string, year int) (float64, error) {
	filter := repository.ResultFilter{Year: year}
	switch kind {
	case KindDriver:
		filter.DriverRef = ref
	case KindConstructor:
		filter.ConstructorRef = ref
	default:
		return 0, fmt.Errorf("unknown entity kind %q", kind)
	}
	return a.Points(ctx, filter)
}

// Points sums main and sprint points independently over filter and adds them
func (a *Aggregator) Points(ctx context.Context, filter repository.ResultFilter) (float64, error) {
	total := decimal.Zero
	for _, session := range models.Sessions {
		sum, err := a.results.SumPoints(ctx, session, filter)
		if err != nil {
			return 0, fmt.Errorf("failed to sum %s points: %w", session, err)
		}
		if sum != nil {
			total = total.Add(decimal.NewFromFloat(*sum))
		}
	}
	return total.InexactFloat64(), nil
}
