package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Dencchi/f1-knowledge-base/internal/database"
	"github.com/Dencchi/f1-knowledge-base/internal/models"
)

const (
	raceColumns = `r.year, r.round, r.circuit_ref, r.name, r.date, r.url, r.race_time,
		r.fp1_time, r.fp2_time, r.fp3_time, r.qualifying_time, r.sprint_quali_time, r.sprint_date`
	errScanRace = "failed to scan race: %w"
)

// PostgresRaceRepository implements RaceRepository for PostgreSQL
type PostgresRaceRepository struct {
	db *database.DB
}

// NewPostgresRaceRepository creates a new race repository
func NewPostgresRaceRepository(db *database.DB) RaceRepository {
	return &PostgresRaceRepository{db: db}
}

func scanRace(row pgx.Row) (*models.Race, error) {
	race := &models.Race{}
	err := row.Scan(
		&race.Year, &race.Round, &race.CircuitRef, &race.Name, &race.Date, &race.URL, &race.RaceTime,
		&race.FP1Time, &race.FP2Time, &race.FP3Time, &race.QualifyingTime, &race.SprintQualifyingTime, &race.SprintDate,
	)
	return race, err
}

// GetByKey retrieves a race by season and round
func (r *PostgresRaceRepository) GetByKey(ctx context.Context, key models.RaceKey) (*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races r WHERE r.year = $1 AND r.round = $2`

	race, err := scanRace(r.db.GetPool().QueryRow(ctx, query, key.Year, key.Round))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race %s: %w", key, err)
	}
	return race, nil
}

// List retrieves races matching the filter ordered by date
func (r *PostgresRaceRepository) List(ctx context.Context, filter RaceFilter) ([]*models.Race, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Year != 0 {
		conds = append(conds, "r.year = "+arg(filter.Year))
	}
	if filter.CircuitRef != "" {
		conds = append(conds, "r.circuit_ref = "+arg(filter.CircuitRef))
	}
	if filter.OnOrBefore != nil {
		conds = append(conds, "r.date <= "+arg(*filter.OnOrBefore))
	}
	if filter.Before != nil {
		conds = append(conds, "r.date < "+arg(*filter.Before))
	}
	if filter.From != nil {
		conds = append(conds, "r.date >= "+arg(*filter.From))
	}
	if filter.WithResults {
		conds = append(conds, "EXISTS (SELECT 1 FROM results res WHERE res.year = r.year AND res.round = r.round)")
	}
	if filter.NameContains != "" {
		conds = append(conds, "r.name ILIKE '%' || "+arg(escapeLike(filter.NameContains))+" || '%'")
	}

	query := `SELECT ` + raceColumns + ` FROM races r`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if filter.Descending {
		query += " ORDER BY r.date DESC, r.year DESC, r.round DESC"
	} else {
		query += " ORDER BY r.date ASC, r.year ASC, r.round ASC"
	}
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query races: %w", err)
	}
	defer rows.Close()

	var races []*models.Race
	for rows.Next() {
		race, err := scanRace(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanRace, err)
		}
		races = append(races, race)
	}
	return races, rows.Err()
}

// Years returns the distinct seasons, newest first
func (r *PostgresRaceRepository) Years(ctx context.Context) ([]int, error) {
	rows, err := r.db.GetPool().Query(ctx, `SELECT DISTINCT year FROM races ORDER BY year DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query seasons: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// Upsert inserts or updates a race by season and round
func (r *PostgresRaceRepository) Upsert(ctx context.Context, race *models.Race) error {
	query := `
		INSERT INTO races (year, round, circuit_ref, name, date, url, race_time,
			fp1_time, fp2_time, fp3_time, qualifying_time, sprint_quali_time, sprint_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (year, round) DO UPDATE SET
			circuit_ref = EXCLUDED.circuit_ref,
			name = EXCLUDED.name,
			date = EXCLUDED.date,
			url = EXCLUDED.url,
			race_time = EXCLUDED.race_time,
			fp1_time = EXCLUDED.fp1_time,
			fp2_time = EXCLUDED.fp2_time,
			fp3_time = EXCLUDED.fp3_time,
			qualifying_time = EXCLUDED.qualifying_time,
			sprint_quali_time = EXCLUDED.sprint_quali_time,
			sprint_date = EXCLUDED.sprint_date
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		race.Year, race.Round, race.CircuitRef, race.Name, race.Date, race.URL, race.RaceTime,
		race.FP1Time, race.FP2Time, race.FP3Time, race.QualifyingTime, race.SprintQualifyingTime, race.SprintDate,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert race %s: %w", race.Key(), err)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
