package database

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestDatabaseURLEnv names the variable that enables PostgreSQL-backed tests
const TestDatabaseURLEnv = "F1KB_TEST_DATABASE_URL"

// SetupTestDB connects to the database named by F1KB_TEST_DATABASE_URL and
// applies the schema. The test is skipped when the variable is unset.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv(TestDatabaseURLEnv)
	if dsn == "" {
		t.Skip("Integration test - requires database setup (" + TestDatabaseURLEnv + ")")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Connect(ctx, dsn, 4)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { TeardownTestDB(t, db) })
	return db
}

// TeardownTestDB truncates the entity tables and closes the pool
func TeardownTestDB(t *testing.T, db *DB) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.pool.Exec(ctx, "TRUNCATE sprint_results, results, races, drivers, constructors, circuits")
	if err != nil {
		t.Logf("warning: failed to truncate test database: %v", err)
	}
	db.Close()
}
