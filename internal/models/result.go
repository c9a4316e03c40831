package models

import (
	"time"

	"github.com/google/uuid"
)

// Session distinguishes main race results from sprint results
type Session string

const (
	SessionRace   Session = "race"
	SessionSprint Session = "sprint"
)

// Sessions lists both result tables in aggregation order
var Sessions = []Session{SessionRace, SessionSprint}

// PositionTextDisqualified marks a disqualified classification
const PositionTextDisqualified = "D"

// Result is one driver's classification in a race or sprint session
type Result struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Session        Session   `db:"-" json:"session" validate:"required,oneof=race sprint"`
	Race           RaceKey   `db:"-" json:"race"`
	RaceDate       time.Time `db:"race_date" json:"race_date"` // populated from the races join
	DriverRef      string    `db:"driver_ref" json:"driver_ref" validate:"required"`
	ConstructorRef string    `db:"constructor_ref" json:"constructor_ref" validate:"required"`
	Grid           int       `db:"grid" json:"grid" validate:"gte=0"`
	Position       *int      `db:"position" json:"position"` // nil when not classified
	PositionText   string    `db:"position_text" json:"position_text" validate:"required,max=10"`
	Points         float64   `db:"points" json:"points" validate:"gte=0"`
	Status         string    `db:"status" json:"status"`
}

// IsClassified reports whether the driver received a finishing position
func (r *Result) IsClassified() bool {
	return r.Position != nil
}

// GetPosition returns the finishing position or 0 if not classified
func (r *Result) GetPosition() int {
	if r.Position == nil {
		return 0
	}
	return *r.Position
}

// FinishedAt reports whether the driver finished exactly at pos
func (r *Result) FinishedAt(pos int) bool {
	return r.Position != nil && *r.Position == pos
}

// FinishedWithin reports whether the driver finished at pos or better
func (r *Result) FinishedWithin(pos int) bool {
	return r.Position != nil && *r.Position <= pos
}
