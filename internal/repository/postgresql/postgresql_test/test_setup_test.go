package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

var (
	testDB     *database.DB
	testDBErr  error
	testDBOnce sync.Once
)

// setupTestDB connects to TEST_DATABASE_URL, applies db/schema.sql once and
// empties every table. Tests are skipped when no database is configured.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	testDBOnce.Do(func() {
		testDB, testDBErr = database.NewPostgreSQLDB(dsn)
		if testDBErr != nil {
			return
		}
		testDBErr = applySchema(context.Background(), testDB)
	})
	require.NoError(t, testDBErr)
	require.NoError(t, truncateAllTables(context.Background(), testDB))
	return testDB
}

func applySchema(ctx context.Context, db *database.DB) error {
	_, file, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "db", "schema.sql")
	schema, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.Exec(ctx, string(schema)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func truncateAllTables(ctx context.Context, db *database.DB) error {
	tables := []string{
		"notifications",
		"reopened_days",
		"period_locks",
		"approval_steps",
		"requests",
		"time_records",
		"holidays",
		"schedule_rules",
		"refresh_tokens",
		"users",
		"sectors",
	}

	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range tables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	return tx.Commit(ctx)
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// createTestUser inserts an active user and returns its id.
func createTestUser(t *testing.T, db *database.DB, name, role string, sectorID *string) string {
	t.Helper()

	var id string
	err := db.QueryRow(context.Background(), `
		INSERT INTO users (name, email, password_hash, role, sector_id)
		VALUES ($1, $2, 'x', $3, $4)
		RETURNING id
	`, name, newID()+"@sefaz.gov.br", role, sectorID).Scan(&id)
	require.NoError(t, err)
	return id
}
