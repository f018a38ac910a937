package device_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mariemm1/IoTIrrigation/internal/device"
	"github.com/mariemm1/IoTIrrigation/internal/infrastructure/database"
	"github.com/mariemm1/IoTIrrigation/internal/organization"
	_ "github.com/mariemm1/IoTIrrigation/migrations"
)

// newTestDB opens a migrated database with one organization seeded.
func newTestDB(t *testing.T) (*database.DB, string) {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	org := &organization.Organization{Name: "Test Farm", Address: "Route 1"}
	if err := organization.NewSQLiteRepository(db.DB).Create(ctx, org); err != nil {
		t.Fatalf("seeding organization: %v", err)
	}
	return db, org.ID
}

func testDevice(devEUI, orgID string) *device.Device {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	return &device.Device{
		DevEUI:         devEUI,
		Name:           "valve-1",
		Description:    "plot A",
		Status:         device.StatusOnline,
		OrganizationID: orgID,
		UserID:         "user-1",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestRepositoryCreate(t *testing.T) {
	db, orgID := newTestDB(t)
	repo := device.NewSQLiteRepository(db.DB)
	ctx := context.Background()

	d := testDevice("a84041fdfe2b9f2b", orgID)
	if err := repo.Create(ctx, d); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if d.ID == "" {
		t.Error("Create() did not assign an ID")
	}

	t.Run("duplicate EUI conflicts", func(t *testing.T) {
		dup := testDevice("a84041fdfe2b9f2b", orgID)
		if err := repo.Create(ctx, dup); !errors.Is(err, device.ErrConflict) {
			t.Errorf("Create(duplicate) error = %v, want ErrConflict", err)
		}
	})
}

func TestRepositoryLookups(t *testing.T) {
	db, orgID := newTestDB(t)
	repo := device.NewSQLiteRepository(db.DB)
	ctx := context.Background()

	lat, lng := 36.8, 10.18
	seen := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	d := testDevice("a84041fdfe2b9f2b", orgID)
	d.Lat, d.Lng = &lat, &lng
	d.LastSeen = &seen
	if err := repo.Create(ctx, d); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("by id round-trips optional fields", func(t *testing.T) {
		got, err := repo.GetByID(ctx, d.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.Lat == nil || *got.Lat != 36.8 || got.Lng == nil || *got.Lng != 10.18 {
			t.Errorf("position = %v/%v", got.Lat, got.Lng)
		}
		if got.Altitude != nil {
			t.Errorf("Altitude = %v, want nil", *got.Altitude)
		}
		if got.LastSeen == nil || !got.LastSeen.Equal(seen) {
			t.Errorf("LastSeen = %v, want %v", got.LastSeen, seen)
		}
	})

	t.Run("by dev eui", func(t *testing.T) {
		got, err := repo.GetByDevEUI(ctx, "a84041fdfe2b9f2b")
		if err != nil {
			t.Fatalf("GetByDevEUI() error = %v", err)
		}
		if got.ID != d.ID {
			t.Errorf("GetByDevEUI() ID = %q, want %q", got.ID, d.ID)
		}
	})

	t.Run("missing is ErrNotFound", func(t *testing.T) {
		if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, device.ErrNotFound) {
			t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
		}
	})
}

func TestRepositoryListFilters(t *testing.T) {
	db, orgID := newTestDB(t)
	repo := device.NewSQLiteRepository(db.DB)
	ctx := context.Background()

	org2 := &organization.Organization{Name: "Other Farm"}
	if err := organization.NewSQLiteRepository(db.DB).Create(ctx, org2); err != nil {
		t.Fatalf("seeding second organization: %v", err)
	}

	seed := []struct{ eui, org, user string }{
		{"a84041fdfe2b9f01", orgID, "user-1"},
		{"a84041fdfe2b9f02", orgID, "user-2"},
		{"a84041fdfe2b9f03", org2.ID, "user-1"},
	}
	for _, s := range seed {
		d := testDevice(s.eui, s.org)
		d.UserID = s.user
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create(%s) error = %v", s.eui, err)
		}
	}

	all, err := repo.List(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("List() = %d devices, err %v, want 3", len(all), err)
	}

	byOwner, err := repo.ListByOwner(ctx, "user-1")
	if err != nil || len(byOwner) != 2 {
		t.Fatalf("ListByOwner() = %d devices, err %v, want 2", len(byOwner), err)
	}

	byOrg, err := repo.ListByOrganization(ctx, org2.ID)
	if err != nil || len(byOrg) != 1 {
		t.Fatalf("ListByOrganization() = %d devices, err %v, want 1", len(byOrg), err)
	}
	if byOrg[0].DevEUI != "a84041fdfe2b9f03" {
		t.Errorf("ListByOrganization() device = %s", byOrg[0].DevEUI)
	}
}

func TestRepositoryUpdateDelete(t *testing.T) {
	db, orgID := newTestDB(t)
	repo := device.NewSQLiteRepository(db.DB)
	ctx := context.Background()

	d := testDevice("a84041fdfe2b9f2b", orgID)
	if err := repo.Create(ctx, d); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	d.Name = "valve-renamed"
	d.Status = device.StatusOffline
	d.UpdatedAt = time.Now().UTC()
	if err := repo.Update(ctx, d); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "valve-renamed" || got.Status != device.StatusOffline {
		t.Errorf("update not persisted: %+v", got)
	}

	if err := repo.Delete(ctx, d.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, d.ID); !errors.Is(err, device.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
