package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Dencchi/f1-knowledge-base/internal/models"
)

// DataValidator checks normalized records before they are persisted. Struct
// tag rules live on the models; the methods here add cross-field rules.
type DataValidator struct {
	validate *validator.Validate
	logger   *logrus.Entry
}

// NewDataValidator creates a new data validator
func NewDataValidator(logger *logrus.Logger) *DataValidator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DataValidator{
		validate: validator.New(),
		logger:   logger.WithField("component", "validator"),
	}
}

// ValidateCircuit validates circuit data
func (v *DataValidator) ValidateCircuit(c *models.Circuit) []string {
	return v.structErrors(c)
}

// ValidateConstructor validates constructor data
func (v *DataValidator) ValidateConstructor(c *models.Constructor) []string {
	return v.structErrors(c)
}

// ValidateDriver validates driver data
func (v *DataValidator) ValidateDriver(d *models.Driver) []string {
	return v.structErrors(d)
}

// ValidateRace validates race data for required fields and session ordering
func (v *DataValidator) ValidateRace(race *models.Race) []string {
	errs := v.structErrors(race)

	if race.Date.Year() != race.Year && !race.Date.IsZero() {
		errs = append(errs, fmt.Sprintf("race date %s is outside season %d", race.Date.Format(dateLayout), race.Year))
	}
	if race.QualifyingTime != nil && race.QualifyingTime.After(race.Date.AddDate(0, 0, 1)) {
		errs = append(errs, "qualifying scheduled after race day")
	}
	if race.SprintDate != nil && race.SprintDate.After(race.Date) {
		errs = append(errs, "sprint scheduled after race day")
	}
	return errs
}

// ValidateResult validates a classification row
func (v *DataValidator) ValidateResult(res *models.Result) []string {
	errs := v.structErrors(res)

	if res.Position != nil && *res.Position <= 0 {
		errs = append(errs, fmt.Sprintf("position must be positive, got %d", *res.Position))
	}
	if res.Race.Year == 0 || res.Race.Round == 0 {
		errs = append(errs, "race key is required")
	}
	return errs
}

// ValidateResultInRace checks a row against the set of known references
func (v *DataValidator) ValidateResultInRace(res *models.Result, drivers, constructors map[string]bool) []string {
	var errs []string
	if !drivers[res.DriverRef] {
		errs = append(errs, fmt.Sprintf("unknown driver %q", res.DriverRef))
	}
	if !constructors[res.ConstructorRef] {
		errs = append(errs, fmt.Sprintf("unknown constructor %q", res.ConstructorRef))
	}
	return errs
}

func (v *DataValidator) structErrors(s interface{}) []string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			out = append(out, field+" is required")
		case "url":
			out = append(out, fmt.Sprintf("%s must be a valid URL, got %q", field, fe.Value()))
		default:
			out = append(out, fmt.Sprintf("%s failed %s=%s, got %v", field, fe.Tag(), fe.Param(), fe.Value()))
		}
	}
	return out
}
