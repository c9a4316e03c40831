package database

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed migrations/001_init.up.sql
var initSchema string

// Migrate creates the schema when it does not exist yet
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, initSchema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
