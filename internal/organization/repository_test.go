package organization_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mariemm1/IoTIrrigation/internal/infrastructure/database"
	"github.com/mariemm1/IoTIrrigation/internal/organization"
	_ "github.com/mariemm1/IoTIrrigation/migrations"
)

func newTestRepo(t *testing.T) *organization.SQLiteRepository {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return organization.NewSQLiteRepository(db.DB)
}

func TestCreate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	t.Run("assigns id and timestamps", func(t *testing.T) {
		org := &organization.Organization{Name: "North Farm", Address: "Route 12"}
		if err := repo.Create(ctx, org); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if org.ID == "" {
			t.Error("Create() did not assign an ID")
		}
		if org.CreatedAt.IsZero() || org.UpdatedAt.IsZero() {
			t.Error("Create() did not set timestamps")
		}
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		err := repo.Create(ctx, &organization.Organization{Name: "North Farm"})
		if !errors.Is(err, organization.ErrNameTaken) {
			t.Errorf("Create() error = %v, want ErrNameTaken", err)
		}
	})

	t.Run("rejects blank name", func(t *testing.T) {
		err := repo.Create(ctx, &organization.Organization{Name: "  "})
		if !errors.Is(err, organization.ErrInvalidName) {
			t.Errorf("Create() error = %v, want ErrInvalidName", err)
		}
	})
}

func TestGetByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	org := &organization.Organization{
		Name:         "South Farm",
		Address:      "Route 9",
		ContactEmail: "ops@south.example",
	}
	if err := repo.Create(ctx, org); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(ctx, org.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "South Farm" || got.Address != "Route 9" || got.ContactEmail != "ops@south.example" {
		t.Errorf("GetByID() = %+v", got)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, organization.ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	org := &organization.Organization{Name: "East Farm"}
	if err := repo.Create(ctx, org); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	org.Name = "East Farm Ltd"
	org.Address = "New address"
	if err := repo.Update(ctx, org); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(ctx, org.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "East Farm Ltd" || got.Address != "New address" {
		t.Errorf("update not persisted: %+v", got)
	}

	missing := &organization.Organization{ID: "missing", Name: "X"}
	if err := repo.Update(ctx, missing); !errors.Is(err, organization.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	org := &organization.Organization{Name: "West Farm"}
	if err := repo.Create(ctx, org); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Delete(ctx, org.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, org.ID); !errors.Is(err, organization.ErrNotFound) {
		t.Errorf("GetByID() after delete = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, org.ID); !errors.Is(err, organization.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		if err := repo.Create(ctx, &organization.Organization{Name: name}); err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
	}

	orgs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(orgs) != 3 {
		t.Fatalf("List() returned %d, want 3", len(orgs))
	}
	if orgs[0].Name != "Alpha" || orgs[2].Name != "Zeta" {
		t.Errorf("List() order = %s..%s, want name order", orgs[0].Name, orgs[2].Name)
	}
}
