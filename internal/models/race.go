package models

import (
	"fmt"
	"time"
)

// RaceKey is the natural identity of a race: season year and round number
type RaceKey struct {
	Year  int `db:"year" json:"year"`
	Round int `db:"round" json:"round"`
}

func (k RaceKey) String() string {
	return fmt.Sprintf("%d/%d", k.Year, k.Round)
}

// Race represents a grand prix weekend
type Race struct {
	Year                 int        `db:"year" json:"year" validate:"required,gte=1950,lte=2099"`
	Round                int        `db:"round" json:"round" validate:"required,gt=0"`
	CircuitRef           string     `db:"circuit_ref" json:"circuit_ref" validate:"required"`
	Name                 string     `db:"name" json:"name" validate:"required"`
	Date                 time.Time  `db:"date" json:"date" validate:"required"`
	URL                  string     `db:"url" json:"url,omitempty" validate:"omitempty,url"`
	RaceTime             *string    `db:"race_time" json:"race_time,omitempty"`
	FP1Time              *time.Time `db:"fp1_time" json:"fp1_time,omitempty"`
	FP2Time              *time.Time `db:"fp2_time" json:"fp2_time,omitempty"`
	FP3Time              *time.Time `db:"fp3_time" json:"fp3_time,omitempty"`
	QualifyingTime       *time.Time `db:"qualifying_time" json:"qualifying_time,omitempty"`
	SprintQualifyingTime *time.Time `db:"sprint_quali_time" json:"sprint_quali_time,omitempty"`
	SprintDate           *time.Time `db:"sprint_date" json:"sprint_date,omitempty"`
}

// Key returns the race identity
func (r *Race) Key() RaceKey {
	return RaceKey{Year: r.Year, Round: r.Round}
}

// HasSprint reports whether the weekend is scheduled with a sprint
func (r *Race) HasSprint() bool {
	return r.SprintDate != nil || r.SprintQualifyingTime != nil
}

// IsFinished reports whether the race date is on or before the given day
func (r *Race) IsFinished(now time.Time) bool {
	return !r.Date.After(now)
}

func (r *Race) String() string {
	return fmt.Sprintf("%d %s", r.Year, r.Name)
}
