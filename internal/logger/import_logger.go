package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ImportLogger provides dedicated logging for Jolpica imports.
type ImportLogger struct {
	*logrus.Entry
}

// NewImportLogger creates a new import logger
func NewImportLogger(baseLogger *logrus.Logger) *ImportLogger {
	if baseLogger == nil {
		baseLogger = Discard()
	}
	return &ImportLogger{
		Entry: baseLogger.WithField("component", "import"),
	}
}

// LogImportStarted logs the start of an import run
func (il *ImportLogger) LogImportStarted(startYear, endYear int) {
	il.WithFields(logrus.Fields{
		"start_year": startYear,
		"end_year":   endYear,
	}).Info("Import started")
}

// LogImportPage logs one fetched page of a paginated resource
func (il *ImportLogger) LogImportPage(resource string, offset, limit, total int) {
	il.WithFields(logrus.Fields{
		"resource": resource,
		"offset":   offset,
		"limit":    limit,
		"total":    total,
	}).Debug("Import page fetched")
}

// LogImportCompleted logs the record counts of a finished import
func (il *ImportLogger) LogImportCompleted(counts map[string]int, failed int, duration time.Duration) {
	fields := logrus.Fields{
		"failed":      failed,
		"duration_ms": duration.Milliseconds(),
	}
	for entity, n := range counts {
		fields[entity] = n
	}
	il.WithFields(fields).Info("Import completed")
}

// LogChampionshipSync logs a recomputed title for a season
func (il *ImportLogger) LogChampionshipSync(kind string, year int, ref string) {
	il.WithFields(logrus.Fields{
		"kind": kind,
		"year": year,
		"ref":  ref,
	}).Debug("Championship recorded")
}
