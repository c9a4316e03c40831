package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Dencchi/f1-knowledge-base/internal/datasource"
	"github.com/Dencchi/f1-knowledge-base/internal/models"
)

const dateLayout = "2006-01-02"

// teamColor assigns a livery color to every constructor whose name contains Match
type teamColor struct {
	Match string
	Hex   string
}

// DataNormalizer converts provider records into the internal models
type DataNormalizer struct {
	teamColors []teamColor
	logger     *logrus.Entry
}

// NewDataNormalizer creates a new data normalizer
func NewDataNormalizer(logger *logrus.Logger) *DataNormalizer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DataNormalizer{
		teamColors: buildTeamColors(),
		logger:     logger.WithField("component", "normalizer"),
	}
}

// NormalizeCircuit converts a provider circuit
func (n *DataNormalizer) NormalizeCircuit(src *datasource.CircuitData) (*models.Circuit, error) {
	if src == nil {
		return nil, fmt.Errorf("source circuit is nil")
	}

	circuit := &models.Circuit{
		Ref:      refOrSlug(src.CircuitID, src.CircuitName),
		Name:     strings.TrimSpace(src.CircuitName),
		Location: strings.TrimSpace(src.Location.Locality),
		Country:  strings.TrimSpace(src.Location.Country),
		URL:      src.URL,
	}
	circuit.Lat = parseCoordinate(src.Location.Lat)
	circuit.Lng = parseCoordinate(src.Location.Long)
	return circuit, nil
}

// NormalizeConstructor converts a provider constructor and assigns its livery color
func (n *DataNormalizer) NormalizeConstructor(src *datasource.ConstructorData) (*models.Constructor, error) {
	if src == nil {
		return nil, fmt.Errorf("source constructor is nil")
	}

	c := &models.Constructor{
		Ref:         refOrSlug(src.ConstructorID, src.Name),
		Name:        strings.TrimSpace(src.Name),
		Nationality: src.Nationality,
		URL:         src.URL,
	}
	c.HexColor = n.TeamColor(c.Name)
	return c, nil
}

// TeamColor returns the livery color for a team name, empty when unknown.
// Later entries take precedence.
func (n *DataNormalizer) TeamColor(name string) string {
	lower := strings.ToLower(name)
	color := ""
	for _, tc := range n.teamColors {
		if strings.Contains(lower, strings.ToLower(tc.Match)) {
			color = tc.Hex
		}
	}
	return color
}

// NormalizeDriver converts a provider driver
func (n *DataNormalizer) NormalizeDriver(src *datasource.DriverData) (*models.Driver, error) {
	if src == nil {
		return nil, fmt.Errorf("source driver is nil")
	}

	d := &models.Driver{
		Ref:         refOrSlug(src.DriverID, src.GivenName+" "+src.FamilyName),
		Code:        strings.TrimSpace(src.Code),
		Forename:    strings.TrimSpace(src.GivenName),
		Surname:     strings.TrimSpace(src.FamilyName),
		Nationality: src.Nationality,
		URL:         src.URL,
	}

	if src.PermanentNumber != "" {
		num, err := strconv.Atoi(src.PermanentNumber)
		if err != nil {
			return nil, fmt.Errorf("driver %s: invalid permanent number %q: %w", d.Ref, src.PermanentNumber, err)
		}
		d.Number = &num
	}
	if src.DateOfBirth != "" {
		dob, err := time.Parse(dateLayout, src.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("driver %s: invalid date of birth %q: %w", d.Ref, src.DateOfBirth, err)
		}
		d.DOB = &dob
	}
	return d, nil
}

// NormalizeRace converts a schedule entry including its session times
func (n *DataNormalizer) NormalizeRace(src *datasource.RaceData) (*models.Race, error) {
	if src == nil {
		return nil, fmt.Errorf("source race is nil")
	}

	year, err := strconv.Atoi(src.Season)
	if err != nil {
		return nil, fmt.Errorf("invalid season %q: %w", src.Season, err)
	}
	round, err := strconv.Atoi(src.Round)
	if err != nil {
		return nil, fmt.Errorf("invalid round %q: %w", src.Round, err)
	}
	date, err := time.Parse(dateLayout, src.Date)
	if err != nil {
		return nil, fmt.Errorf("race %d/%d: invalid date %q: %w", year, round, src.Date, err)
	}

	race := &models.Race{
		Year:       year,
		Round:      round,
		CircuitRef: src.Circuit.CircuitID,
		Name:       strings.TrimSpace(src.RaceName),
		Date:       date,
		URL:        src.URL,
	}

	if src.Time != "" {
		t := src.Time
		race.RaceTime = &t
	}
	race.FP1Time = n.sessionTime(src.FirstPractice)
	race.FP2Time = n.sessionTime(src.SecondPractice)
	race.FP3Time = n.sessionTime(src.ThirdPractice)
	race.QualifyingTime = n.sessionTime(src.Qualifying)
	race.SprintQualifyingTime = n.sessionTime(src.SprintQualifying)
	if src.Sprint != nil && src.Sprint.Date != "" {
		if d, err := time.Parse(dateLayout, src.Sprint.Date); err == nil {
			race.SprintDate = &d
		}
	}
	return race, nil
}

// sessionTime combines the date and UTC time of a session, nil when either is missing
func (n *DataNormalizer) sessionTime(s *datasource.SessionTime) *time.Time {
	if s == nil || s.Date == "" || s.Time == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.Date+"T"+s.Time)
	if err != nil {
		n.logger.WithError(err).WithField("date", s.Date).Debug("Skipping unparseable session time")
		return nil
	}
	t = t.UTC()
	return &t
}

// NormalizeResult converts one classification row of a race or sprint
func (n *DataNormalizer) NormalizeResult(session models.Session, key models.RaceKey, src *datasource.ResultData) (*models.Result, error) {
	if src == nil {
		return nil, fmt.Errorf("source result is nil")
	}

	res := &models.Result{
		ID:             uuid.New(),
		Session:        session,
		Race:           key,
		DriverRef:      src.Driver.DriverID,
		ConstructorRef: src.Constructor.ConstructorID,
		PositionText:   src.PositionText,
		Status:         src.Status,
	}

	if src.Grid != "" {
		grid, err := strconv.Atoi(src.Grid)
		if err != nil {
			return nil, fmt.Errorf("result %s %s: invalid grid %q: %w", key, res.DriverRef, src.Grid, err)
		}
		res.Grid = grid
	}

	// non numeric positions mean the driver was not classified
	if pos, err := strconv.Atoi(src.Position); err == nil {
		res.Position = &pos
	}

	points, err := NormalizePoints(src.Points)
	if err != nil {
		return nil, fmt.Errorf("result %s %s: %w", key, res.DriverRef, err)
	}
	res.Points = points
	return res, nil
}

// NormalizePoints parses a points string exactly, so that half points survive
func NormalizePoints(s string) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid points %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative points %q", s)
	}
	return d.InexactFloat64(), nil
}

// refOrSlug keeps the provider id, deriving one from the name when it is missing
func refOrSlug(id, name string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return strings.ReplaceAll(slug.Make(name), "-", "_")
}

func parseCoordinate(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// buildTeamColors returns the livery colors of current and historic teams
func buildTeamColors() []teamColor {
	return []teamColor{
		{"Red Bull", "#3671C6"},
		{"Ferrari", "#E80020"},
		{"Mercedes", "#27F4D2"},
		{"McLaren", "#FF8000"},
		{"Aston Martin", "#229971"},
		{"Alpine", "#0093CC"},
		{"Williams", "#64C4FF"},
		{"RB", "#6692FF"},
		{"AlphaTauri", "#2B4562"},
		{"Sauber", "#52E252"},
		{"Haas", "#B6BABD"},
		{"Renault", "#FFF500"},
		{"Force India", "#F596C8"},
		{"Lotus", "#000000"},
		{"Jordan", "#F8F228"},
		{"Benetton", "#008C8D"},
	}
}
