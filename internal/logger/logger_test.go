package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("debug").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("not-a-level").GetLevel())
}

func TestNewLoggerProductionFormatter(t *testing.T) {
	t.Setenv(EnvironmentVariable, "production")

	log := NewLogger("info")
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestQueryLoggerSearch(t *testing.T) {
	log, buf := setupTestLogger()
	ql := NewQueryLogger(log)

	ql.LogSearch("verstappen 2021", 2021, "generic", 1, 0, 0, 22, 15*time.Millisecond)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "query", logEntry["component"])
	assert.Equal(t, "verstappen 2021", logEntry["query"])
	assert.Equal(t, float64(22), logEntry["races"])
	assert.Equal(t, float64(15), logEntry["duration_ms"])
}

func TestQueryLoggerSmartAnswer(t *testing.T) {
	log, buf := setupTestLogger()
	NewQueryLogger(log).LogSmartAnswer(2021, "max_verstappen", 395.5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "max_verstappen", logEntry["driver_ref"])
	assert.Equal(t, "debug", logEntry["level"])
}

func TestQueryLoggerLineup(t *testing.T) {
	log, buf := setupTestLogger()
	NewQueryLogger(log).LogLineup("mclaren", 2024, "2024/22", 2, 0)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "2024/22", logEntry["reference_race"])
}

func TestNilBaseLoggerDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		NewQueryLogger(nil).LogStandings("driver", 2021, 20, time.Second)
		NewImportLogger(nil).LogImportStarted(2021, 2026)
	})
}

func TestImportLoggerCompleted(t *testing.T) {
	log, buf := setupTestLogger()
	il := NewImportLogger(log)

	il.LogImportCompleted(map[string]int{"drivers": 30, "results": 440}, 1, 2*time.Second)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "import", logEntry["component"])
	assert.Equal(t, float64(30), logEntry["drivers"])
	assert.Equal(t, float64(440), logEntry["results"])
	assert.Equal(t, float64(1), logEntry["failed"])
	assert.Equal(t, "Import completed", logEntry["msg"])
}

func TestImportLoggerPage(t *testing.T) {
	log, buf := setupTestLogger()
	NewImportLogger(log).LogImportPage("drivers", 100, 100, 864)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "drivers", logEntry["resource"])
	assert.Equal(t, float64(864), logEntry["total"])
}
