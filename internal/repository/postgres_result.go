package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Dencchi/f1-knowledge-base/internal/database"
	"github.com/Dencchi/f1-knowledge-base/internal/models"
)

// PostgresResultRepository implements ResultRepository for PostgreSQL.
// Main and sprint results share a shape and live in separate tables.
type PostgresResultRepository struct {
	db *database.DB
}

// NewPostgresResultRepository creates a new result repository
func NewPostgresResultRepository(db *database.DB) ResultRepository {
	return &PostgresResultRepository{db: db}
}

func tableFor(session models.Session) (string, error) {
	switch session {
	case models.SessionRace:
		return "results", nil
	case models.SessionSprint:
		return "sprint_results", nil
	default:
		return "", fmt.Errorf("unknown session %q", session)
	}
}

// where builds the filter clause over the result table aliased "res" joined to races "r"
func (f ResultFilter) where() (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.DriverRef != "" {
		conds = append(conds, "res.driver_ref = "+arg(f.DriverRef))
	}
	if f.ConstructorRef != "" {
		conds = append(conds, "res.constructor_ref = "+arg(f.ConstructorRef))
	}
	if f.Year != 0 {
		conds = append(conds, "res.year = "+arg(f.Year))
	}
	if f.Race != nil {
		conds = append(conds, "res.year = "+arg(f.Race.Year), "res.round = "+arg(f.Race.Round))
	}
	if f.CircuitRef != "" {
		conds = append(conds, "r.circuit_ref = "+arg(f.CircuitRef))
	}
	if f.Position != nil {
		conds = append(conds, "res.position = "+arg(*f.Position))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List retrieves results ordered by race date, then position with unclassified rows last
func (r *PostgresResultRepository) List(ctx context.Context, session models.Session, filter ResultFilter) ([]*models.Result, error) {
	table, err := tableFor(session)
	if err != nil {
		return nil, err
	}

	where, args := filter.where()
	query := `
		SELECT res.id, res.year, res.round, r.date, res.driver_ref, res.constructor_ref,
		       res.grid, res.position, res.position_text, res.points, res.status
		FROM ` + table + ` res
		JOIN races r ON r.year = res.year AND r.round = res.round` + where + `
		ORDER BY r.date ASC, res.year ASC, res.round ASC, res.position ASC NULLS LAST`

	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var results []*models.Result
	for rows.Next() {
		res := &models.Result{Session: session}
		err := rows.Scan(
			&res.ID, &res.Race.Year, &res.Race.Round, &res.RaceDate, &res.DriverRef, &res.ConstructorRef,
			&res.Grid, &res.Position, &res.PositionText, &res.Points, &res.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// SumPoints returns SUM(points) over the filter, nil when no row matches
func (r *PostgresResultRepository) SumPoints(ctx context.Context, session models.Session, filter ResultFilter) (*float64, error) {
	table, err := tableFor(session)
	if err != nil {
		return nil, err
	}

	where, args := filter.where()
	query := `
		SELECT SUM(res.points)
		FROM ` + table + ` res
		JOIN races r ON r.year = res.year AND r.round = res.round` + where

	var sum *float64
	if err := r.db.GetPool().QueryRow(ctx, query, args...).Scan(&sum); err != nil {
		return nil, fmt.Errorf("failed to sum points in %s: %w", table, err)
	}
	return sum, nil
}

// Upsert inserts or replaces a driver's result for a race session
func (r *PostgresResultRepository) Upsert(ctx context.Context, res *models.Result) error {
	table, err := tableFor(res.Session)
	if err != nil {
		return err
	}
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}

	query := `
		INSERT INTO ` + table + ` (id, year, round, driver_ref, constructor_ref, grid, position, position_text, points, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (year, round, driver_ref) DO UPDATE SET
			constructor_ref = EXCLUDED.constructor_ref,
			grid = EXCLUDED.grid,
			position = EXCLUDED.position,
			position_text = EXCLUDED.position_text,
			points = EXCLUDED.points,
			status = EXCLUDED.status
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		res.ID, res.Race.Year, res.Race.Round, res.DriverRef, res.ConstructorRef,
		res.Grid, res.Position, res.PositionText, res.Points, res.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert %s row for %s at %s: %w", table, res.DriverRef, res.Race, err)
	}
	return nil
}
