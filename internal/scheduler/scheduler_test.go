package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Dencchi/f1-knowledge-base/internal/logger"
	"github.com/Dencchi/f1-knowledge-base/internal/service"
)

type mockImporter struct {
	mock.Mock
}

func (m *mockImporter) Run(ctx context.Context, opts service.ImportOptions) (*service.IngestionMetrics, error) {
	args := m.Called(ctx, opts)
	metrics, _ := args.Get(0).(*service.IngestionMetrics)
	return metrics, args.Error(1)
}

func newTestScheduler(imp Importer) *Scheduler {
	s := NewScheduler(imp, logger.Discard())
	s.now = func() time.Time { return time.Date(2025, 7, 6, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestScheduleRejectsBadExpression(t *testing.T) {
	s := newTestScheduler(&mockImporter{})
	_, err := s.ScheduleSeasonImport("every monday", true)
	assert.Error(t, err)
}

func TestStartRequiresJobs(t *testing.T) {
	s := newTestScheduler(&mockImporter{})
	assert.Error(t, s.Start())
}

func TestLifecycle(t *testing.T) {
	s := newTestScheduler(&mockImporter{})

	id, err := s.ScheduleSeasonImport("0 6 * * 1", true)
	require.NoError(t, err)
	_, err = s.ScheduleCalendarRefresh("@daily")
	require.NoError(t, err)
	assert.Len(t, s.Entries(), 2)
	assert.True(t, s.GetNextRun().IsZero(), "no next run before start")

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.False(t, s.GetNextRun().IsZero())

	_, err = s.ScheduleCalendarRefresh("@hourly")
	assert.Error(t, err, "jobs cannot be added while running")
	assert.Error(t, s.RemoveJob(id))

	s.Stop()
	assert.False(t, s.IsRunning())

	require.NoError(t, s.RemoveJob(id))
	assert.Len(t, s.Entries(), 1)
}

func TestSeasonImportJobOptions(t *testing.T) {
	imp := &mockImporter{}
	want := service.ImportOptions{StartYear: 2025, EndYear: 2025}
	imp.On("Run", mock.Anything, want).Return(service.NewIngestionMetrics(), nil).Once()

	s := newTestScheduler(imp)
	id, err := s.ScheduleSeasonImport("@weekly", true)
	require.NoError(t, err)

	s.cron.Entry(id).Job.Run()
	imp.AssertExpectations(t)
}

func TestCalendarRefreshJobOptions(t *testing.T) {
	imp := &mockImporter{}
	want := service.ImportOptions{
		StartYear: 2025, EndYear: 2026,
		SkipReferences: true, SkipResults: true, SkipChampionships: true,
	}
	imp.On("Run", mock.Anything, want).Return(nil, errors.New("jolpica down")).Once()

	s := newTestScheduler(imp)
	id, err := s.ScheduleCalendarRefresh("@daily")
	require.NoError(t, err)

	// a failed run is logged, not propagated
	s.cron.Entry(id).Job.Run()
	imp.AssertExpectations(t)
}
