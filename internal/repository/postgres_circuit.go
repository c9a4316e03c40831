package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Dencchi/f1-knowledge-base/internal/database"
	"github.com/Dencchi/f1-knowledge-base/internal/models"
)

const circuitColumns = `circuit_ref, name, location, country, lat, lng, url, layout_image`

// PostgresCircuitRepository implements CircuitRepository for PostgreSQL
type PostgresCircuitRepository struct {
	db *database.DB
}

// NewPostgresCircuitRepository creates a new circuit repository
func NewPostgresCircuitRepository(db *database.DB) CircuitRepository {
	return &PostgresCircuitRepository{db: db}
}

func scanCircuit(row pgx.Row) (*models.Circuit, error) {
	c := &models.Circuit{}
	err := row.Scan(&c.Ref, &c.Name, &c.Location, &c.Country, &c.Lat, &c.Lng, &c.URL, &c.LayoutImage)
	return c, err
}

// GetByRef retrieves a circuit by reference
func (r *PostgresCircuitRepository) GetByRef(ctx context.Context, ref string) (*models.Circuit, error) {
	query := `SELECT ` + circuitColumns + ` FROM circuits WHERE circuit_ref = $1`

	c, err := scanCircuit(r.db.GetPool().QueryRow(ctx, query, ref))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get circuit %s: %w", ref, err)
	}
	return c, nil
}

// List returns every circuit ordered by name
func (r *PostgresCircuitRepository) List(ctx context.Context) ([]*models.Circuit, error) {
	query := `SELECT ` + circuitColumns + ` FROM circuits ORDER BY name, circuit_ref`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query circuits: %w", err)
	}
	defer rows.Close()

	var circuits []*models.Circuit
	for rows.Next() {
		c, err := scanCircuit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan circuit: %w", err)
		}
		circuits = append(circuits, c)
	}
	return circuits, rows.Err()
}

// Upsert inserts or updates a circuit by reference
func (r *PostgresCircuitRepository) Upsert(ctx context.Context, c *models.Circuit) error {
	query := `
		INSERT INTO circuits (` + circuitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (circuit_ref) DO UPDATE SET
			name = EXCLUDED.name,
			location = EXCLUDED.location,
			country = EXCLUDED.country,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			url = EXCLUDED.url,
			layout_image = CASE WHEN EXCLUDED.layout_image = '' THEN circuits.layout_image ELSE EXCLUDED.layout_image END
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		c.Ref, c.Name, c.Location, c.Country, c.Lat, c.Lng, c.URL, c.LayoutImage,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert circuit %s: %w", c.Ref, err)
	}
	return nil
}
