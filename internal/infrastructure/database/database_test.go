package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mariemm1/IoTIrrigation/internal/infrastructure/database"
	_ "github.com/mariemm1/IoTIrrigation/migrations"
)

// openTestDB opens a database in a temp directory and runs migrations.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return db
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, table := range []string{"organizations", "users", "devices", "sensor_readings"} {
		var name string
		err := db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not created: %v", table, err)
		}
	}

	// Running again is a no-op.
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestMigrateDown(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.MigrateDown(ctx); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}

	var name string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='devices'",
	).Scan(&name)
	if err == nil {
		t.Error("devices table still exists after rollback")
	}
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestDevEUIUniqueness(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, `
		INSERT INTO organizations (id, name, created_at, updated_at)
		VALUES ('org-1', 'Farm', '2026-08-15T12:00:00Z', '2026-08-15T12:00:00Z')
	`); err != nil {
		t.Fatalf("inserting organization: %v", err)
	}

	insert := `
		INSERT INTO devices (id, dev_eui, organization_id, user_id, created_at, updated_at)
		VALUES (?, ?, 'org-1', 'user-1', '2026-08-15T12:00:00Z', '2026-08-15T12:00:00Z')
	`
	if _, err := db.ExecContext(ctx, insert, "dev-1", "a84041fdfe2b9f2b"); err != nil {
		t.Fatalf("inserting device: %v", err)
	}
	if _, err := db.ExecContext(ctx, insert, "dev-2", "a84041fdfe2b9f2b"); err == nil {
		t.Error("duplicate dev_eui insert succeeded, want unique constraint error")
	}
}
