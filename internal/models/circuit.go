package models

import "fmt"

// Circuit represents a race track
type Circuit struct {
	Ref         string   `db:"circuit_ref" json:"circuit_ref" validate:"required"`
	Name        string   `db:"name" json:"name" validate:"required"`
	Location    string   `db:"location" json:"location"`
	Country     string   `db:"country" json:"country"`
	Lat         *float64 `db:"lat" json:"lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Lng         *float64 `db:"lng" json:"lng,omitempty" validate:"omitempty,gte=-180,lte=180"`
	URL         string   `db:"url" json:"url,omitempty" validate:"omitempty,url"`
	LayoutImage string   `db:"layout_image" json:"layout_image,omitempty"`
}

// SearchText returns the composite string used for fuzzy circuit lookups
func (c *Circuit) SearchText() string {
	return fmt.Sprintf("%s %s %s", c.Name, c.Location, c.Country)
}

func (c *Circuit) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.Country)
}
