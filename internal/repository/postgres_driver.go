package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Dencchi/f1-knowledge-base/internal/database"
	"github.com/Dencchi/f1-knowledge-base/internal/models"
)

const driverColumns = `driver_ref, code, number, forename, surname, dob, nationality, url, biography, championships`

// PostgresDriverRepository implements DriverRepository for PostgreSQL
type PostgresDriverRepository struct {
	db *database.DB
}

// NewPostgresDriverRepository creates a new driver repository
func NewPostgresDriverRepository(db *database.DB) DriverRepository {
	return &PostgresDriverRepository{db: db}
}

func scanDriver(row pgx.Row) (*models.Driver, error) {
	d := &models.Driver{}
	err := row.Scan(&d.Ref, &d.Code, &d.Number, &d.Forename, &d.Surname, &d.DOB,
		&d.Nationality, &d.URL, &d.Biography, &d.Championships)
	return d, err
}

func (r *PostgresDriverRepository) collect(rows pgx.Rows) ([]*models.Driver, error) {
	defer rows.Close()

	var out []*models.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan driver: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetByRef retrieves a driver by reference
func (r *PostgresDriverRepository) GetByRef(ctx context.Context, ref string) (*models.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE driver_ref = $1`

	d, err := scanDriver(r.db.GetPool().QueryRow(ctx, query, ref))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get driver %s: %w", ref, err)
	}
	return d, nil
}

// List returns every driver ordered by surname and forename
func (r *PostgresDriverRepository) List(ctx context.Context) ([]*models.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers ORDER BY surname, forename, driver_ref`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query drivers: %w", err)
	}
	return r.collect(rows)
}

// ListByRefs returns drivers in the order of refs
func (r *PostgresDriverRepository) ListByRefs(ctx context.Context, refs []string) ([]*models.Driver, error) {
	if len(refs) == 0 {
		return []*models.Driver{}, nil
	}

	query := `
		SELECT ` + driverColumns + `
		FROM drivers d
		JOIN unnest($1::text[]) WITH ORDINALITY AS wanted(ref, ord) ON wanted.ref = d.driver_ref
		ORDER BY wanted.ord
	`

	rows, err := r.db.GetPool().Query(ctx, query, refs)
	if err != nil {
		return nil, fmt.Errorf("failed to query drivers by refs: %w", err)
	}
	return r.collect(rows)
}

// Upsert inserts or updates a driver, keeping the championship counter
func (r *PostgresDriverRepository) Upsert(ctx context.Context, d *models.Driver) error {
	query := `
		INSERT INTO drivers (` + driverColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (driver_ref) DO UPDATE SET
			code = EXCLUDED.code,
			number = EXCLUDED.number,
			forename = EXCLUDED.forename,
			surname = EXCLUDED.surname,
			dob = EXCLUDED.dob,
			nationality = EXCLUDED.nationality,
			url = EXCLUDED.url,
			biography = CASE WHEN EXCLUDED.biography = '' THEN drivers.biography ELSE EXCLUDED.biography END
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		d.Ref, d.Code, d.Number, d.Forename, d.Surname, d.DOB,
		d.Nationality, d.URL, d.Biography, d.Championships,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert driver %s: %w", d.Ref, err)
	}
	return nil
}

// ResetChampionships zeroes every driver's title counter
func (r *PostgresDriverRepository) ResetChampionships(ctx context.Context) error {
	if _, err := r.db.GetPool().Exec(ctx, `UPDATE drivers SET championships = 0`); err != nil {
		return fmt.Errorf("failed to reset driver championships: %w", err)
	}
	return nil
}

// IncrementChampionships adds one title to a driver
func (r *PostgresDriverRepository) IncrementChampionships(ctx context.Context, ref string) error {
	tag, err := r.db.GetPool().Exec(ctx,
		`UPDATE drivers SET championships = championships + 1 WHERE driver_ref = $1`, ref)
	if err != nil {
		return fmt.Errorf("failed to increment championships for %s: %w", ref, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
