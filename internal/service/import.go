package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dencchi/f1-knowledge-base/internal/datasource"
	"github.com/Dencchi/f1-knowledge-base/internal/logger"
	"github.com/Dencchi/f1-knowledge-base/internal/models"
	"github.com/Dencchi/f1-knowledge-base/internal/repository"
)

// First seasons of the two championships
const (
	FirstDriversSeason      = 1950
	FirstConstructorsSeason = 1958
)

const defaultPageSize = 100

// ImportOptions selects what an import run covers. Seasons are inclusive.
type ImportOptions struct {
	StartYear         int
	EndYear           int
	SkipReferences    bool
	SkipResults       bool
	SkipChampionships bool
}

// ImportService loads reference data, calendars and results from a
// datasource.Source into the entity store. Runs are serialized.
type ImportService struct {
	source     datasource.Source
	repos      *repository.Repositories
	validator  *DataValidator
	normalizer *DataNormalizer
	metrics    *IngestionMetrics
	logger     *logger.ImportLogger
	pageSize   int
	now        func() time.Time

	running sync.Mutex
}

// NewImportService creates a new import service
func NewImportService(
	source datasource.Source,
	repos *repository.Repositories,
	validator *DataValidator,
	normalizer *DataNormalizer,
	log *logrus.Logger,
	pageSize int,
) *ImportService {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if validator == nil {
		validator = NewDataValidator(log)
	}
	if normalizer == nil {
		normalizer = NewDataNormalizer(log)
	}

	return &ImportService{
		source:     source,
		repos:      repos,
		validator:  validator,
		normalizer: normalizer,
		metrics:    NewIngestionMetrics(),
		logger:     logger.NewImportLogger(log),
		pageSize:   pageSize,
		now:        time.Now,
	}
}

// Run performs a full import: references, then each season, then the
// championship counters.
func (s *ImportService) Run(ctx context.Context, opts ImportOptions) (*IngestionMetrics, error) {
	if opts.StartYear > opts.EndYear {
		return nil, fmt.Errorf("start year %d is after end year %d", opts.StartYear, opts.EndYear)
	}

	s.running.Lock()
	defer s.running.Unlock()

	s.metrics.Reset()
	s.logger.LogImportStarted(opts.StartYear, opts.EndYear)

	err := s.run(ctx, opts)

	s.metrics.Finish()
	s.logger.LogImportCompleted(s.metrics.Counts(), s.metrics.Failed(), s.metrics.Duration)
	return s.metrics, err
}

func (s *ImportService) run(ctx context.Context, opts ImportOptions) error {
	if !opts.SkipReferences {
		if err := s.ImportReferences(ctx); err != nil {
			return err
		}
	}

	for year := opts.StartYear; year <= opts.EndYear; year++ {
		var err error
		if opts.SkipResults {
			_, err = s.ImportSchedule(ctx, year)
		} else {
			err = s.ImportSeason(ctx, year)
		}
		if err != nil {
			return err
		}
	}

	if !opts.SkipChampionships {
		return s.SyncChampionships(ctx)
	}
	return nil
}

// ImportReferences pages through circuits, constructors and drivers
func (s *ImportService) ImportReferences(ctx context.Context) error {
	if err := paginate(ctx, s, EntityCircuits, s.source.Circuits, s.saveCircuit); err != nil {
		return err
	}
	if err := paginate(ctx, s, EntityConstructors, s.source.Constructors, s.saveConstructor); err != nil {
		return err
	}
	return paginate(ctx, s, EntityDrivers, s.source.Drivers, s.saveDriver)
}

// paginate fetches pages until the reported total is reached, saving every
// item. The source may serve fewer items per page than requested.
func paginate[T any](ctx context.Context, s *ImportService, entity string, fetch func(context.Context, int, int) (*datasource.Page[T], error), save func(context.Context, *T) (bool, error)) error {
	offset := 0
	for {
		page, err := fetch(ctx, offset, s.pageSize)
		if err != nil {
			s.metrics.RecordError(entity)
			return fmt.Errorf("failed to fetch %s at offset %d: %w", entity, offset, err)
		}
		s.logger.LogImportPage(entity, offset, s.pageSize, page.Total)

		if len(page.Items) == 0 {
			return nil
		}

		saved := 0
		for i := range page.Items {
			ok, err := save(ctx, &page.Items[i])
			if err != nil {
				s.metrics.RecordError(entity)
				return err
			}
			if ok {
				saved++
			}
		}
		s.metrics.RecordImported(entity, saved)

		offset += len(page.Items)
		if page.Total > 0 {
			if offset >= page.Total {
				return nil
			}
		} else if len(page.Items) < s.pageSize {
			return nil
		}
	}
}

// rejected logs validation failures; the record is skipped, not fatal
func (s *ImportService) rejected(entity, ref string, problems []string) {
	s.metrics.RecordValidationError(entity)
	s.logger.WithFields(logrus.Fields{
		"entity": entity,
		"ref":    ref,
	}).Warnf("Record rejected: %s", strings.Join(problems, "; "))
}

func (s *ImportService) saveCircuit(ctx context.Context, src *datasource.CircuitData) (bool, error) {
	c, err := s.normalizer.NormalizeCircuit(src)
	if err != nil {
		s.rejected(EntityCircuits, src.CircuitID, []string{err.Error()})
		return false, nil
	}
	if problems := s.validator.ValidateCircuit(c); len(problems) > 0 {
		s.rejected(EntityCircuits, c.Ref, problems)
		return false, nil
	}
	if err := s.repos.Circuit.Upsert(ctx, c); err != nil {
		return false, fmt.Errorf("failed to save circuit %s: %w", c.Ref, err)
	}
	return true, nil
}

func (s *ImportService) saveConstructor(ctx context.Context, src *datasource.ConstructorData) (bool, error) {
	c, err := s.normalizer.NormalizeConstructor(src)
	if err != nil {
		s.rejected(EntityConstructors, src.ConstructorID, []string{err.Error()})
		return false, nil
	}
	if problems := s.validator.ValidateConstructor(c); len(problems) > 0 {
		s.rejected(EntityConstructors, c.Ref, problems)
		return false, nil
	}
	if err := s.repos.Constructor.Upsert(ctx, c); err != nil {
		return false, fmt.Errorf("failed to save constructor %s: %w", c.Ref, err)
	}
	return true, nil
}

func (s *ImportService) saveDriver(ctx context.Context, src *datasource.DriverData) (bool, error) {
	d, err := s.normalizer.NormalizeDriver(src)
	if err != nil {
		s.rejected(EntityDrivers, src.DriverID, []string{err.Error()})
		return false, nil
	}
	if problems := s.validator.ValidateDriver(d); len(problems) > 0 {
		s.rejected(EntityDrivers, d.Ref, problems)
		return false, nil
	}
	if err := s.repos.Driver.Upsert(ctx, d); err != nil {
		return false, fmt.Errorf("failed to save driver %s: %w", d.Ref, err)
	}
	return true, nil
}

// ImportSchedule stores the calendar of a season with session times.
// Races on circuits missing from the store are skipped.
func (s *ImportService) ImportSchedule(ctx context.Context, year int) ([]*models.Race, error) {
	schedule, err := s.source.Schedule(ctx, year)
	if err != nil {
		if errors.Is(err, datasource.ErrNotFound) {
			s.logger.WithField("year", year).Warn("No calendar for season")
			return nil, nil
		}
		s.metrics.RecordError(EntityRaces)
		return nil, fmt.Errorf("failed to fetch %d schedule: %w", year, err)
	}

	races := make([]*models.Race, 0, len(schedule))
	for i := range schedule {
		race, err := s.saveRace(ctx, &schedule[i])
		if err != nil {
			s.metrics.RecordError(EntityRaces)
			return races, err
		}
		if race != nil {
			races = append(races, race)
		}
	}
	s.metrics.RecordImported(EntityRaces, len(races))
	return races, nil
}

func (s *ImportService) saveRace(ctx context.Context, src *datasource.RaceData) (*models.Race, error) {
	race, err := s.normalizer.NormalizeRace(src)
	if err != nil {
		s.rejected(EntityRaces, src.Season+"/"+src.Round, []string{err.Error()})
		return nil, nil
	}
	if problems := s.validator.ValidateRace(race); len(problems) > 0 {
		s.rejected(EntityRaces, race.Key().String(), problems)
		return nil, nil
	}

	if _, err := s.repos.Circuit.GetByRef(ctx, race.CircuitRef); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.metrics.RecordSkipped()
			s.logger.WithFields(logrus.Fields{
				"race":    race.Key().String(),
				"circuit": race.CircuitRef,
			}).Warn("Circuit not found, skipping race")
			return nil, nil
		}
		return nil, err
	}

	if existing, err := s.repos.Race.GetByKey(ctx, race.Key()); err == nil {
		mergeSchedule(race, existing)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	if err := s.repos.Race.Upsert(ctx, race); err != nil {
		return nil, fmt.Errorf("failed to save race %s: %w", race.Key(), err)
	}
	return race, nil
}

// mergeSchedule keeps session times already stored when the update lacks them
func mergeSchedule(race, existing *models.Race) {
	if race.RaceTime == nil {
		race.RaceTime = existing.RaceTime
	}
	if race.FP1Time == nil {
		race.FP1Time = existing.FP1Time
	}
	if race.FP2Time == nil {
		race.FP2Time = existing.FP2Time
	}
	if race.FP3Time == nil {
		race.FP3Time = existing.FP3Time
	}
	if race.QualifyingTime == nil {
		race.QualifyingTime = existing.QualifyingTime
	}
	if race.SprintQualifyingTime == nil {
		race.SprintQualifyingTime = existing.SprintQualifyingTime
	}
	if race.SprintDate == nil {
		race.SprintDate = existing.SprintDate
	}
}

// ImportSeason stores the calendar of a season and the main race and sprint
// results of every round that has taken place.
func (s *ImportService) ImportSeason(ctx context.Context, year int) error {
	races, err := s.ImportSchedule(ctx, year)
	if err != nil {
		return err
	}

	known, err := s.knownRefs(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	for _, race := range races {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !race.IsFinished(now) {
			continue
		}

		main, err := s.source.Results(ctx, race.Year, race.Round)
		if err != nil {
			s.metrics.RecordError(EntityResults)
			return fmt.Errorf("failed to fetch results of %s: %w", race.Key(), err)
		}
		if main != nil {
			if err := s.saveResults(ctx, models.SessionRace, race.Key(), main.Results, known); err != nil {
				return err
			}
		}

		sprint, err := s.source.SprintResults(ctx, race.Year, race.Round)
		if err != nil {
			s.metrics.RecordError(EntitySprints)
			return fmt.Errorf("failed to fetch sprint of %s: %w", race.Key(), err)
		}
		if sprint != nil {
			if err := s.saveResults(ctx, models.SessionSprint, race.Key(), sprint.SprintResults, known); err != nil {
				return err
			}
		}
	}
	return nil
}

type refSets struct {
	drivers      map[string]bool
	constructors map[string]bool
}

func (s *ImportService) knownRefs(ctx context.Context) (*refSets, error) {
	drivers, err := s.repos.Driver.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	constructors, err := s.repos.Constructor.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list constructors: %w", err)
	}

	known := &refSets{
		drivers:      make(map[string]bool, len(drivers)),
		constructors: make(map[string]bool, len(constructors)),
	}
	for _, d := range drivers {
		known.drivers[d.Ref] = true
	}
	for _, c := range constructors {
		known.constructors[c.Ref] = true
	}
	return known, nil
}

func (s *ImportService) saveResults(ctx context.Context, session models.Session, key models.RaceKey, rows []datasource.ResultData, known *refSets) error {
	entity := EntityResults
	if session == models.SessionSprint {
		entity = EntitySprints
	}

	saved := 0
	for i := range rows {
		res, err := s.normalizer.NormalizeResult(session, key, &rows[i])
		if err != nil {
			s.rejected(entity, key.String(), []string{err.Error()})
			continue
		}
		if problems := s.validator.ValidateResultInRace(res, known.drivers, known.constructors); len(problems) > 0 {
			s.metrics.RecordSkipped()
			s.logger.WithField("race", key.String()).Debugf("Skipping result: %s", strings.Join(problems, "; "))
			continue
		}
		if problems := s.validator.ValidateResult(res); len(problems) > 0 {
			s.rejected(entity, key.String()+"/"+res.DriverRef, problems)
			continue
		}
		if err := s.repos.Result.Upsert(ctx, res); err != nil {
			s.metrics.RecordError(entity)
			return fmt.Errorf("failed to save %s result %s/%s: %w", session, key, res.DriverRef, err)
		}
		saved++
	}
	s.metrics.RecordImported(entity, saved)
	return nil
}

// SyncChampionships recomputes the title counters of drivers and constructors
// from the final standings of every completed season.
func (s *ImportService) SyncChampionships(ctx context.Context) error {
	current := s.now().Year()

	if err := s.repos.Driver.ResetChampionships(ctx); err != nil {
		return fmt.Errorf("failed to reset driver championships: %w", err)
	}
	for year := FirstDriversSeason; year < current; year++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		st, err := s.source.DriverChampion(ctx, year)
		if err != nil {
			s.metrics.RecordError(EntityChampions)
			s.logger.WithError(err).WithField("year", year).Warn("Failed to fetch driver standings")
			continue
		}
		if st == nil {
			continue
		}
		ref := st.Driver.DriverID
		if err := s.repos.Driver.IncrementChampionships(ctx, ref); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				s.metrics.RecordSkipped()
				continue
			}
			return fmt.Errorf("failed to record %d driver title: %w", year, err)
		}
		s.metrics.RecordImported(EntityChampions, 1)
		s.logger.LogChampionshipSync("driver", year, ref)
	}

	if err := s.repos.Constructor.ResetChampionships(ctx); err != nil {
		return fmt.Errorf("failed to reset constructor championships: %w", err)
	}
	for year := FirstConstructorsSeason; year < current; year++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		st, err := s.source.ConstructorChampion(ctx, year)
		if err != nil {
			s.metrics.RecordError(EntityChampions)
			s.logger.WithError(err).WithField("year", year).Warn("Failed to fetch constructor standings")
			continue
		}
		if st == nil {
			continue
		}
		ref := st.Constructor.ConstructorID
		if err := s.repos.Constructor.IncrementChampionships(ctx, ref); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				s.metrics.RecordSkipped()
				continue
			}
			return fmt.Errorf("failed to record %d constructor title: %w", year, err)
		}
		s.metrics.RecordImported(EntityChampions, 1)
		s.logger.LogChampionshipSync("constructor", year, ref)
	}
	return nil
}

// GetMetrics returns the metrics of the last run
func (s *ImportService) GetMetrics() *IngestionMetrics {
	return s.metrics
}
