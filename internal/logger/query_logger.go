package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// QueryLogger logs read-path computations: searches, standings and lineups.
type QueryLogger struct {
	*logrus.Entry
}

// NewQueryLogger creates a new query logger. A nil base logger discards output.
func NewQueryLogger(baseLogger *logrus.Logger) *QueryLogger {
	if baseLogger == nil {
		baseLogger = Discard()
	}
	return &QueryLogger{
		Entry: baseLogger.WithField("component", "query"),
	}
}

// LogSearch logs a completed search with per-category hit counts
func (ql *QueryLogger) LogSearch(query string, year int, intent string, drivers, teams, circuits, races int, duration time.Duration) {
	ql.WithFields(logrus.Fields{
		"query":       query,
		"year":        year,
		"intent":      intent,
		"drivers":     drivers,
		"teams":       teams,
		"circuits":    circuits,
		"races":       races,
		"duration_ms": duration.Milliseconds(),
	}).Info("Search completed")
}

// LogSmartAnswer logs a resolved champion answer
func (ql *QueryLogger) LogSmartAnswer(year int, driverRef string, points float64) {
	ql.WithFields(logrus.Fields{
		"year":       year,
		"driver_ref": driverRef,
		"points":     points,
	}).Debug("Smart answer resolved")
}

// LogStandings logs a standings computation
func (ql *QueryLogger) LogStandings(kind string, year, entries int, duration time.Duration) {
	ql.WithFields(logrus.Fields{
		"kind":        kind,
		"year":        year,
		"entries":     entries,
		"duration_ms": duration.Milliseconds(),
	}).Debug("Standings computed")
}

// LogLineup logs a lineup resolution
func (ql *QueryLogger) LogLineup(teamRef string, year int, referenceRace string, drivers, reserves int) {
	ql.WithFields(logrus.Fields{
		"team_ref":       teamRef,
		"year":           year,
		"reference_race": referenceRace,
		"drivers":        drivers,
		"reserves":       reserves,
	}).Debug("Lineup resolved")
}
