package auth_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mariemm1/IoTIrrigation/internal/auth"
	"github.com/mariemm1/IoTIrrigation/internal/infrastructure/database"
	_ "github.com/mariemm1/IoTIrrigation/migrations"
)

func newTestRepo(t *testing.T) *auth.SQLiteUserRepository {
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
	return auth.NewSQLiteUserRepository(db.DB)
}

func testUser(username string) *auth.User {
	return &auth.User{
		Username:     username,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=1$c2FsdA$aGFzaA",
		Email:        username + "@example.com",
		Role:         auth.RoleUser,
	}
}

func TestUserCreate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := testUser("marie")
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if u.ID == "" {
		t.Error("Create() did not assign an ID")
	}

	t.Run("duplicate username", func(t *testing.T) {
		if err := repo.Create(ctx, testUser("marie")); !errors.Is(err, auth.ErrUsernameExists) {
			t.Errorf("Create() error = %v, want ErrUsernameExists", err)
		}
	})

	t.Run("invalid username", func(t *testing.T) {
		bad := testUser("has spaces!")
		if err := repo.Create(ctx, bad); err == nil {
			t.Error("Create() accepted invalid username")
		}
	})

	t.Run("invalid role", func(t *testing.T) {
		bad := testUser("other")
		bad.Role = "superuser"
		if err := repo.Create(ctx, bad); err == nil {
			t.Error("Create() accepted invalid role")
		}
	})
}

func TestUserLookup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := testUser("amine")
	u.OrganizationID = "org-1"
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	byID, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.Username != "amine" || byID.OrganizationID != "org-1" {
		t.Errorf("GetByID() = %+v", byID)
	}

	byName, err := repo.GetByUsername(ctx, "amine")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if byName.ID != u.ID {
		t.Errorf("GetByUsername() ID = %q, want %q", byName.ID, u.ID)
	}

	if _, err := repo.GetByUsername(ctx, "ghost"); !errors.Is(err, auth.ErrUserNotFound) {
		t.Errorf("GetByUsername(ghost) error = %v, want ErrUserNotFound", err)
	}
}

func TestUserUpdateDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := testUser("sami")
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	u.Role = auth.RoleAdmin
	u.Email = "new@example.com"
	if err := repo.Update(ctx, u); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Role != auth.RoleAdmin || got.Email != "new@example.com" {
		t.Errorf("update not persisted: %+v", got)
	}

	if err := repo.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, u.ID); !errors.Is(err, auth.ErrUserNotFound) {
		t.Errorf("second Delete() error = %v, want ErrUserNotFound", err)
	}
}
