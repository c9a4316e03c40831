package models

import (
	"strings"
	"time"
)

// Driver represents a racing driver
type Driver struct {
	Ref           string     `db:"driver_ref" json:"driver_ref" validate:"required"`
	Code          string     `db:"code" json:"code,omitempty" validate:"omitempty,max=10"`
	Number        *int       `db:"number" json:"number,omitempty" validate:"omitempty,gte=0"`
	Forename      string     `db:"forename" json:"forename" validate:"required"`
	Surname       string     `db:"surname" json:"surname" validate:"required"`
	DOB           *time.Time `db:"dob" json:"dob,omitempty"`
	Nationality   string     `db:"nationality" json:"nationality"`
	URL           string     `db:"url" json:"url,omitempty" validate:"omitempty,url"`
	Biography     string     `db:"biography" json:"biography,omitempty"`
	Championships int        `db:"championships" json:"championships" validate:"gte=0"`
}

// FullName returns "Forename Surname"
func (d *Driver) FullName() string {
	return strings.TrimSpace(d.Forename + " " + d.Surname)
}

// GetNumber returns the permanent number or 0 if unassigned
func (d *Driver) GetNumber() int {
	if d.Number == nil {
		return 0
	}
	return *d.Number
}

func (d *Driver) String() string {
	return d.FullName()
}
