package datasource

import (
	"context"
	"errors"
	"fmt"
)

// Source is a provider of Formula 1 reference data and results in the
// Ergast schema.
type Source interface {
	Name() string

	// Circuits, Constructors and Drivers page through the reference tables
	Circuits(ctx context.Context, offset, limit int) (*Page[CircuitData], error)
	Constructors(ctx context.Context, offset, limit int) (*Page[ConstructorData], error)
	Drivers(ctx context.Context, offset, limit int) (*Page[DriverData], error)

	// Schedule returns the calendar of a season with session times
	Schedule(ctx context.Context, year int) ([]RaceData, error)
	// Results returns a race with its classification, nil when not yet run
	Results(ctx context.Context, year, round int) (*RaceData, error)
	// SprintResults returns a race with its sprint classification, nil when there was no sprint
	SprintResults(ctx context.Context, year, round int) (*RaceData, error)

	// DriverChampion and ConstructorChampion return the leader of the
	// final standings of a season, nil when the season has none
	DriverChampion(ctx context.Context, year int) (*DriverStandingData, error)
	ConstructorChampion(ctx context.Context, year int) (*ConstructorStandingData, error)
}

// Page is one slice of a paginated listing
type Page[T any] struct {
	Items  []T
	Offset int
	Limit  int
	Total  int
}

// Last reports whether no further page follows
func (p *Page[T]) Last() bool {
	return len(p.Items) < p.Limit || p.Offset+len(p.Items) >= p.Total
}

// LocationData is the position of a circuit
type LocationData struct {
	Lat      string `json:"lat"`
	Long     string `json:"long"`
	Locality string `json:"locality"`
	Country  string `json:"country"`
}

// CircuitData is a circuit as served by the provider
type CircuitData struct {
	CircuitID   string       `json:"circuitId"`
	URL         string       `json:"url"`
	CircuitName string       `json:"circuitName"`
	Location    LocationData `json:"Location"`
}

// ConstructorData is a constructor as served by the provider
type ConstructorData struct {
	ConstructorID string `json:"constructorId"`
	URL           string `json:"url"`
	Name          string `json:"name"`
	Nationality   string `json:"nationality"`
}

// DriverData is a driver as served by the provider
type DriverData struct {
	DriverID        string `json:"driverId"`
	PermanentNumber string `json:"permanentNumber"`
	Code            string `json:"code"`
	URL             string `json:"url"`
	GivenName       string `json:"givenName"`
	FamilyName      string `json:"familyName"`
	DateOfBirth     string `json:"dateOfBirth"`
	Nationality     string `json:"nationality"`
}

// SessionTime is the date and UTC time of a practice or qualifying session
type SessionTime struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// ResultData is one classification row of a race or sprint
type ResultData struct {
	Number       string          `json:"number"`
	Position     string          `json:"position"`
	PositionText string          `json:"positionText"`
	Points       string          `json:"points"`
	Driver       DriverData      `json:"Driver"`
	Constructor  ConstructorData `json:"Constructor"`
	Grid         string          `json:"grid"`
	Laps         string          `json:"laps"`
	Status       string          `json:"status"`
}

// RaceData is a race weekend, optionally with its results
type RaceData struct {
	Season           string       `json:"season"`
	Round            string       `json:"round"`
	URL              string       `json:"url"`
	RaceName         string       `json:"raceName"`
	Circuit          CircuitData  `json:"Circuit"`
	Date             string       `json:"date"`
	Time             string       `json:"time"`
	FirstPractice    *SessionTime `json:"FirstPractice,omitempty"`
	SecondPractice   *SessionTime `json:"SecondPractice,omitempty"`
	ThirdPractice    *SessionTime `json:"ThirdPractice,omitempty"`
	Qualifying       *SessionTime `json:"Qualifying,omitempty"`
	Sprint           *SessionTime `json:"Sprint,omitempty"`
	SprintQualifying *SessionTime `json:"SprintQualifying,omitempty"`
	Results          []ResultData `json:"Results,omitempty"`
	SprintResults    []ResultData `json:"SprintResults,omitempty"`
}

// DriverStandingData is a row of the drivers' standings
type DriverStandingData struct {
	Position     string            `json:"position"`
	Points       string            `json:"points"`
	Wins         string            `json:"wins"`
	Driver       DriverData        `json:"Driver"`
	Constructors []ConstructorData `json:"Constructors"`
}

// ConstructorStandingData is a row of the constructors' standings
type ConstructorStandingData struct {
	Position    string          `json:"position"`
	Points      string          `json:"points"`
	Wins        string          `json:"wins"`
	Constructor ConstructorData `json:"Constructor"`
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string
	Err     error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s (%v)", e.Source, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Source, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the same code
func (e DataSourceError) Is(target error) bool {
	return codeSentinels[e.Code] == target
}

// Common error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
)

// Sentinels matched by errors.Is against a DataSourceError of the same code
var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrNotFound          = errors.New("data not found")
	ErrInvalidData       = errors.New("invalid data format")
	ErrNetworkError      = errors.New("network error")
	ErrServerError       = errors.New("server error")
)

var codeSentinels = map[string]error{
	ErrCodeRateLimitExceeded: ErrRateLimitExceeded,
	ErrCodeNotFound:          ErrNotFound,
	ErrCodeInvalidData:       ErrInvalidData,
	ErrCodeNetworkError:      ErrNetworkError,
	ErrCodeServerError:       ErrServerError,
}

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
