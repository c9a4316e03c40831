package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Dencchi/f1-knowledge-base/internal/database"
	"github.com/Dencchi/f1-knowledge-base/internal/models"
)

const constructorColumns = `constructor_ref, name, nationality, url, description, is_active, championships, hex_color`

// PostgresConstructorRepository implements ConstructorRepository for PostgreSQL
type PostgresConstructorRepository struct {
	db *database.DB
}

// NewPostgresConstructorRepository creates a new constructor repository
func NewPostgresConstructorRepository(db *database.DB) ConstructorRepository {
	return &PostgresConstructorRepository{db: db}
}

func scanConstructor(row pgx.Row) (*models.Constructor, error) {
	c := &models.Constructor{}
	err := row.Scan(&c.Ref, &c.Name, &c.Nationality, &c.URL, &c.Description, &c.IsActive, &c.Championships, &c.HexColor)
	return c, err
}

func (r *PostgresConstructorRepository) collect(rows pgx.Rows) ([]*models.Constructor, error) {
	defer rows.Close()

	var out []*models.Constructor
	for rows.Next() {
		c, err := scanConstructor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan constructor: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByRef retrieves a constructor by reference
func (r *PostgresConstructorRepository) GetByRef(ctx context.Context, ref string) (*models.Constructor, error) {
	query := `SELECT ` + constructorColumns + ` FROM constructors WHERE constructor_ref = $1`

	c, err := scanConstructor(r.db.GetPool().QueryRow(ctx, query, ref))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get constructor %s: %w", ref, err)
	}
	return c, nil
}

// List returns every constructor ordered by name
func (r *PostgresConstructorRepository) List(ctx context.Context) ([]*models.Constructor, error) {
	query := `SELECT ` + constructorColumns + ` FROM constructors ORDER BY name, constructor_ref`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query constructors: %w", err)
	}
	return r.collect(rows)
}

// ListByRefs returns constructors in the order of refs
func (r *PostgresConstructorRepository) ListByRefs(ctx context.Context, refs []string) ([]*models.Constructor, error) {
	if len(refs) == 0 {
		return []*models.Constructor{}, nil
	}

	query := `
		SELECT ` + constructorColumns + `
		FROM constructors c
		JOIN unnest($1::text[]) WITH ORDINALITY AS wanted(ref, ord) ON wanted.ref = c.constructor_ref
		ORDER BY wanted.ord
	`

	rows, err := r.db.GetPool().Query(ctx, query, refs)
	if err != nil {
		return nil, fmt.Errorf("failed to query constructors by refs: %w", err)
	}
	return r.collect(rows)
}

// Upsert inserts or updates a constructor, keeping its championship counter and color
func (r *PostgresConstructorRepository) Upsert(ctx context.Context, c *models.Constructor) error {
	color := c.HexColor
	if color == "" {
		color = models.DefaultTeamColor
	}

	query := `
		INSERT INTO constructors (` + constructorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (constructor_ref) DO UPDATE SET
			name = EXCLUDED.name,
			nationality = EXCLUDED.nationality,
			url = EXCLUDED.url,
			description = CASE WHEN EXCLUDED.description = '' THEN constructors.description ELSE EXCLUDED.description END,
			is_active = EXCLUDED.is_active,
			hex_color = CASE WHEN $9 THEN EXCLUDED.hex_color ELSE constructors.hex_color END
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		c.Ref, c.Name, c.Nationality, c.URL, c.Description, c.IsActive, c.Championships, color,
		c.HexColor != "",
	)
	if err != nil {
		return fmt.Errorf("failed to upsert constructor %s: %w", c.Ref, err)
	}
	return nil
}

// ResetChampionships zeroes every constructor's title counter
func (r *PostgresConstructorRepository) ResetChampionships(ctx context.Context) error {
	if _, err := r.db.GetPool().Exec(ctx, `UPDATE constructors SET championships = 0`); err != nil {
		return fmt.Errorf("failed to reset constructor championships: %w", err)
	}
	return nil
}

// IncrementChampionships adds one title to a constructor
func (r *PostgresConstructorRepository) IncrementChampionships(ctx context.Context, ref string) error {
	tag, err := r.db.GetPool().Exec(ctx,
		`UPDATE constructors SET championships = championships + 1 WHERE constructor_ref = $1`, ref)
	if err != nil {
		return fmt.Errorf("failed to increment championships for %s: %w", ref, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
