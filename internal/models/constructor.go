package models

// DefaultTeamColor is used when no livery color has been assigned
const DefaultTeamColor = "#333333"

// Constructor represents a team entered in the championship
type Constructor struct {
	Ref           string `db:"constructor_ref" json:"constructor_ref" validate:"required"`
	Name          string `db:"name" json:"name" validate:"required"`
	Nationality   string `db:"nationality" json:"nationality"`
	URL           string `db:"url" json:"url,omitempty" validate:"omitempty,url"`
	Description   string `db:"description" json:"description,omitempty"`
	IsActive      bool   `db:"is_active" json:"is_active"`
	Championships int    `db:"championships" json:"championships" validate:"gte=0"`
	HexColor      string `db:"hex_color" json:"hex_color" validate:"omitempty,hexcolor"`
}

// Color returns the team color or the default one
func (c *Constructor) Color() string {
	if c.HexColor == "" {
		return DefaultTeamColor
	}
	return c.HexColor
}

func (c *Constructor) String() string {
	return c.Name
}
