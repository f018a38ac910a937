package device_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mariemm1/IoTIrrigation/internal/chirpstack"
	"github.com/mariemm1/IoTIrrigation/internal/device"
	"github.com/mariemm1/IoTIrrigation/internal/infrastructure/logging"
	"github.com/mariemm1/IoTIrrigation/internal/organization"
	"github.com/mariemm1/IoTIrrigation/internal/telemetry"
	_ "github.com/mariemm1/IoTIrrigation/migrations"
)

// fakeNetworkServer simulates the ChirpStack client.
type fakeNetworkServer struct {
	devices  map[string]*chirpstack.DeviceInfo
	updateOK bool

	getCalls    []string
	updateCalls []string
}

func (f *fakeNetworkServer) GetDevice(_ context.Context, devEUI string) (*chirpstack.DeviceInfo, bool) {
	f.getCalls = append(f.getCalls, devEUI)
	info, ok := f.devices[devEUI]
	return info, ok
}

func (f *fakeNetworkServer) UpdateDeviceMeta(_ context.Context, devEUI string, _, _ *string, _ string) bool {
	f.updateCalls = append(f.updateCalls, devEUI)
	return f.updateOK
}

// fakeDownlink records enqueued commands.
type fakeDownlink struct {
	ok    bool
	calls []struct {
		devEUI       string
		value, fPort int
	}
}

func (f *fakeDownlink) EnqueueDownlink(_ context.Context, devEUI string, value, fPort int) bool {
	f.calls = append(f.calls, struct {
		devEUI       string
		value, fPort int
	}{devEUI, value, fPort})
	return f.ok
}

// fakeReadings serves one canned reading for every device.
type fakeReadings struct {
	reading *telemetry.Reading
}

func (f *fakeReadings) LastOne(_ context.Context, _ string) (*telemetry.Reading, error) {
	if f.reading == nil {
		return nil, telemetry.ErrNoReadings
	}
	return f.reading, nil
}

// testEnv bundles a service over a real SQLite registry with fakes around it.
type testEnv struct {
	svc   *device.SyncService
	repo  *device.SQLiteRepository
	ns    *fakeNetworkServer
	dl    *fakeDownlink
	reads *fakeReadings
	orgID string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, orgID := newTestDB(t)

	ns := &fakeNetworkServer{
		devices: map[string]*chirpstack.DeviceInfo{
			"a84041fdfe2b9f2b": {
				DevEUI:      "a84041fdfe2b9f2b",
				Name:        "remote-valve",
				Description: "remote description",
				Status:      chirpstack.StatusOnline,
				LastSeenAt:  "2026-08-15T10:00:00Z",
			},
		},
		updateOK: true,
	}
	dl := &fakeDownlink{ok: true}
	reads := &fakeReadings{}
	repo := device.NewSQLiteRepository(db.DB)

	svc := device.NewSyncService(
		repo,
		organization.NewSQLiteRepository(db.DB),
		ns, dl, reads, nil,
		logging.Default(), 2)

	return &testEnv{svc: svc, repo: repo, ns: ns, dl: dl, reads: reads, orgID: orgID}
}

func TestAdopt(t *testing.T) {
	ctx := context.Background()

	t.Run("pulls remote metadata and organization address", func(t *testing.T) {
		env := newTestEnv(t)

		d, err := env.svc.Adopt(ctx, &device.Device{
			DevEUI:         "A8-40-41-FD-FE-2B-9F-2B",
			OrganizationID: env.orgID,
			UserID:         "user-1",
		})
		if err != nil {
			t.Fatalf("Adopt() error = %v", err)
		}
		if d.DevEUI != "a84041fdfe2b9f2b" {
			t.Errorf("DevEUI = %q, want canonical form", d.DevEUI)
		}
		if d.Name != "remote-valve" || d.Description != "remote description" {
			t.Errorf("metadata = %q/%q, want remote values", d.Name, d.Description)
		}
		if d.Address != "Route 1" {
			t.Errorf("Address = %q, want organization address", d.Address)
		}
		if d.Status != device.StatusOnline {
			t.Errorf("Status = %q", d.Status)
		}
		want := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
		if d.LastSeen == nil || !d.LastSeen.Equal(want) {
			t.Errorf("LastSeen = %v, want %v", d.LastSeen, want)
		}

		stored, err := env.repo.GetByDevEUI(ctx, "a84041fdfe2b9f2b")
		if err != nil {
			t.Fatalf("device not persisted: %v", err)
		}
		if stored.Name != "remote-valve" {
			t.Errorf("persisted Name = %q", stored.Name)
		}
	})

	t.Run("backfills position from latest reading", func(t *testing.T) {
		env := newTestEnv(t)
		env.reads.reading = &telemetry.Reading{
			DevEUI: "a84041fdfe2b9f2b",
			Object: map[string]any{"latitude": 36.8, "longitude": 10.18},
		}

		d, err := env.svc.Adopt(ctx, &device.Device{
			DevEUI:         "a84041fdfe2b9f2b",
			OrganizationID: env.orgID,
			UserID:         "user-1",
		})
		if err != nil {
			t.Fatalf("Adopt() error = %v", err)
		}
		if d.Lat == nil || *d.Lat != 36.8 || d.Lng == nil || *d.Lng != 10.18 {
			t.Errorf("position = %v/%v, want backfilled fix", d.Lat, d.Lng)
		}
	})

	t.Run("casing variant of adopted EUI conflicts", func(t *testing.T) {
		env := newTestEnv(t)

		if _, err := env.svc.Adopt(ctx, &device.Device{
			DevEUI: "a84041fdfe2b9f2b", OrganizationID: env.orgID, UserID: "user-1",
		}); err != nil {
			t.Fatalf("first Adopt() error = %v", err)
		}

		_, err := env.svc.Adopt(ctx, &device.Device{
			DevEUI: "A84041FDFE2B9F2B", OrganizationID: env.orgID, UserID: "user-2",
		})
		if !errors.Is(err, device.ErrConflict) {
			t.Errorf("Adopt(casing variant) error = %v, want ErrConflict", err)
		}
	})

	t.Run("unknown organization fails before network call", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.svc.Adopt(ctx, &device.Device{
			DevEUI: "a84041fdfe2b9f2b", OrganizationID: "ghost", UserID: "user-1",
		})
		if !errors.Is(err, device.ErrValidation) {
			t.Errorf("Adopt() error = %v, want ErrValidation", err)
		}
		if len(env.ns.getCalls) != 0 {
			t.Error("network server queried despite invalid organization")
		}
	})

	t.Run("missing user fails", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.svc.Adopt(ctx, &device.Device{
			DevEUI: "a84041fdfe2b9f2b", OrganizationID: env.orgID,
		})
		if !errors.Is(err, device.ErrValidation) {
			t.Errorf("Adopt() error = %v, want ErrValidation", err)
		}
	})

	t.Run("device unknown to network server fails and persists nothing", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.svc.Adopt(ctx, &device.Device{
			DevEUI: "ffffffffffffffff", OrganizationID: env.orgID, UserID: "user-1",
		})
		if !errors.Is(err, device.ErrNotFound) {
			t.Errorf("Adopt() error = %v, want ErrNotFound", err)
		}
		if _, err := env.repo.GetByDevEUI(ctx, "ffffffffffffffff"); !errors.Is(err, device.ErrNotFound) {
			t.Error("device persisted despite failed remote check")
		}
	})
}

func TestRevise(t *testing.T) {
	ctx := context.Background()

	adopt := func(t *testing.T, env *testEnv) *device.Device {
		t.Helper()
		d, err := env.svc.Adopt(ctx, &device.Device{
			DevEUI: "a84041fdfe2b9f2b", OrganizationID: env.orgID, UserID: "user-1",
		})
		if err != nil {
			t.Fatalf("Adopt() error = %v", err)
		}
		return d
	}

	t.Run("pushes remote then persists", func(t *testing.T) {
		env := newTestEnv(t)
		d := adopt(t, env)

		name := "renamed"
		got, err := env.svc.Revise(ctx, d.ID, device.Patch{Name: &name})
		if err != nil {
			t.Fatalf("Revise() error = %v", err)
		}
		if got.Name != "renamed" {
			t.Errorf("Name = %q", got.Name)
		}
		if len(env.ns.updateCalls) != 1 {
			t.Errorf("update calls = %d, want 1", len(env.ns.updateCalls))
		}

		stored, _ := env.repo.GetByID(ctx, d.ID)
		if stored.Name != "renamed" {
			t.Errorf("persisted Name = %q", stored.Name)
		}
	})

	t.Run("failed push persists nothing", func(t *testing.T) {
		env := newTestEnv(t)
		d := adopt(t, env)
		env.ns.updateOK = false

		name := "renamed"
		_, err := env.svc.Revise(ctx, d.ID, device.Patch{Name: &name})
		if !errors.Is(err, device.ErrGateway) {
			t.Errorf("Revise() error = %v, want ErrGateway", err)
		}

		stored, _ := env.repo.GetByID(ctx, d.ID)
		if stored.Name != "remote-valve" {
			t.Errorf("Name = %q changed despite failed push", stored.Name)
		}
	})

	t.Run("immutable fields rejected", func(t *testing.T) {
		env := newTestEnv(t)
		d := adopt(t, env)

		otherEUI := "ffffffffffffffff"
		if _, err := env.svc.Revise(ctx, d.ID, device.Patch{DevEUI: &otherEUI}); !errors.Is(err, device.ErrValidation) {
			t.Errorf("Revise(devEui change) error = %v, want ErrValidation", err)
		}
		otherOrg := "other-org"
		if _, err := env.svc.Revise(ctx, d.ID, device.Patch{OrganizationID: &otherOrg}); !errors.Is(err, device.ErrValidation) {
			t.Errorf("Revise(org change) error = %v, want ErrValidation", err)
		}
		otherUser := "user-2"
		if _, err := env.svc.Revise(ctx, d.ID, device.Patch{UserID: &otherUser}); !errors.Is(err, device.ErrValidation) {
			t.Errorf("Revise(user change) error = %v, want ErrValidation", err)
		}
	})

	t.Run("same EUI in different spelling is not a change", func(t *testing.T) {
		env := newTestEnv(t)
		d := adopt(t, env)

		spelled := "A8:40:41:FD:FE:2B:9F:2B"
		if _, err := env.svc.Revise(ctx, d.ID, device.Patch{DevEUI: &spelled}); err != nil {
			t.Errorf("Revise(same EUI respelled) error = %v", err)
		}
	})

	t.Run("explicit position wins over telemetry", func(t *testing.T) {
		env := newTestEnv(t)
		d := adopt(t, env)
		env.reads.reading = &telemetry.Reading{
			Object: map[string]any{"latitude": 1.0, "longitude": 2.0},
		}

		lat, lng := 36.8, 10.18
		got, err := env.svc.Revise(ctx, d.ID, device.Patch{Lat: &lat, Lng: &lng})
		if err != nil {
			t.Fatalf("Revise() error = %v", err)
		}
		if *got.Lat != 36.8 || *got.Lng != 10.18 {
			t.Errorf("position = %v/%v, want patch values", *got.Lat, *got.Lng)
		}
	})

	t.Run("no patched position re-derives from telemetry", func(t *testing.T) {
		env := newTestEnv(t)
		d := adopt(t, env)
		env.reads.reading = &telemetry.Reading{
			Object: map[string]any{"latitude": 5.5, "longitude": 6.6},
		}

		name := "renamed"
		got, err := env.svc.Revise(ctx, d.ID, device.Patch{Name: &name})
		if err != nil {
			t.Fatalf("Revise() error = %v", err)
		}
		if got.Lat == nil || *got.Lat != 5.5 {
			t.Errorf("Lat = %v, want re-derived 5.5", got.Lat)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		env := newTestEnv(t)
		if _, err := env.svc.Revise(ctx, "missing", device.Patch{}); !errors.Is(err, device.ErrNotFound) {
			t.Errorf("Revise(missing) error = %v, want ErrNotFound", err)
		}
	})
}

func TestSendCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("coerces values to one byte", func(t *testing.T) {
		env := newTestEnv(t)

		tests := []struct {
			in   int
			want int
		}{
			{5, 1}, {1, 1}, {0, 0}, {-3, 0},
		}
		for _, tt := range tests {
			v, port, err := env.svc.SendCommand(ctx, "a84041fdfe2b9f2b", tt.in, nil)
			if err != nil {
				t.Fatalf("SendCommand(%d) error = %v", tt.in, err)
			}
			if v != tt.want {
				t.Errorf("SendCommand(%d) value = %d, want %d", tt.in, v, tt.want)
			}
			if port != 2 {
				t.Errorf("SendCommand(%d) port = %d, want default 2", tt.in, port)
			}
		}
	})

	t.Run("explicit port honored and EUI normalized", func(t *testing.T) {
		env := newTestEnv(t)

		port := 10
		_, got, err := env.svc.SendCommand(ctx, "A8-40-41-FD-FE-2B-9F-2B", 1, &port)
		if err != nil {
			t.Fatalf("SendCommand() error = %v", err)
		}
		if got != 10 {
			t.Errorf("port = %d, want 10", got)
		}
		last := env.dl.calls[len(env.dl.calls)-1]
		if last.devEUI != "a84041fdfe2b9f2b" {
			t.Errorf("enqueued EUI = %q, want canonical", last.devEUI)
		}
	})

	t.Run("gateway refusal", func(t *testing.T) {
		env := newTestEnv(t)
		env.dl.ok = false

		if _, _, err := env.svc.SendCommand(ctx, "a84041fdfe2b9f2b", 1, nil); !errors.Is(err, device.ErrGateway) {
			t.Errorf("SendCommand() error = %v, want ErrGateway", err)
		}
	})
}

func TestPeekRemote(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	d, err := env.svc.PeekRemote(ctx, "A84041FDFE2B9F2B")
	if err != nil {
		t.Fatalf("PeekRemote() error = %v", err)
	}
	if d.Name != "remote-valve" || d.DevEUI != "a84041fdfe2b9f2b" {
		t.Errorf("PeekRemote() = %+v", d)
	}
	if d.ID != "" {
		t.Error("PeekRemote() result should be transient, got registry ID")
	}

	if _, err := env.svc.PeekRemote(ctx, "ffffffffffffffff"); !errors.Is(err, device.ErrNotFound) {
		t.Errorf("PeekRemote(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	d, err := env.svc.Adopt(ctx, &device.Device{
		DevEUI: "a84041fdfe2b9f2b", OrganizationID: env.orgID, UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("Adopt() error = %v", err)
	}

	if err := env.svc.Delete(ctx, d.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := env.svc.Delete(ctx, d.ID); !errors.Is(err, device.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
