package device

import (
	"context"
	"fmt"
	"time"

	"github.com/mariemm1/IoTIrrigation/internal/chirpstack"
	"github.com/mariemm1/IoTIrrigation/internal/geo"
	"github.com/mariemm1/IoTIrrigation/internal/infrastructure/logging"
	"github.com/mariemm1/IoTIrrigation/internal/organization"
	"github.com/mariemm1/IoTIrrigation/internal/telemetry"
)

// NetworkServer is the slice of the network server client the service needs.
// Satisfied by *chirpstack.Client.
type NetworkServer interface {
	GetDevice(ctx context.Context, devEUI string) (*chirpstack.DeviceInfo, bool)
	UpdateDeviceMeta(ctx context.Context, devEUI string, name, description *string, status string) bool
}

// Downlink enqueues commands for a device. Satisfied by *chirpstack.Client
// (HTTP queue) and *chirpstack.MQTTDownlink (broker).
type Downlink interface {
	EnqueueDownlink(ctx context.Context, devEUI string, value int, fPort int) bool
}

// OrganizationSource resolves organizations for adoption checks.
// Satisfied by organization.Repository.
type OrganizationSource interface {
	GetByID(ctx context.Context, id string) (*organization.Organization, error)
}

// TelemetrySource supplies the latest reading for GPS backfill.
// Satisfied by telemetry.Store.
type TelemetrySource interface {
	LastOne(ctx context.Context, devEUI string) (*telemetry.Reading, error)
}

// EventSink records sync and command events. Satisfied by *influxdb.Client.
type EventSink interface {
	WriteSyncEvent(devEUI string, event string, fields map[string]interface{})
	WriteCommandEvent(devEUI string, value int, fPort int, accepted bool)
	WriteGatewayError(devEUI string, operation string)
}

// SyncService coordinates the local registry, the network server, and
// telemetry-derived position.
type SyncService struct {
	repo     Repository
	orgs     OrganizationSource
	ns       NetworkServer
	downlink Downlink
	readings TelemetrySource

	// events is optional; nil disables event recording.
	events EventSink

	logger       *logging.Logger
	defaultFPort int
}

// NewSyncService wires the sync service. events may be nil.
func NewSyncService(
	repo Repository,
	orgs OrganizationSource,
	ns NetworkServer,
	downlink Downlink,
	readings TelemetrySource,
	events EventSink,
	logger *logging.Logger,
	defaultFPort int,
) *SyncService {
	if defaultFPort <= 0 {
		defaultFPort = 2
	}
	return &SyncService{
		repo:         repo,
		orgs:         orgs,
		ns:           ns,
		downlink:     downlink,
		readings:     readings,
		events:       events,
		logger:       logger.With("component", "device-sync"),
		defaultFPort: defaultFPort,
	}
}

// Adopt registers a device that already exists on the network server.
//
// The incoming record needs DevEUI, OrganizationID, and UserID; everything
// else is pulled in: name, description, and timestamps from the network
// server, address from the organization, position from the latest reading.
//
// Checks run in order: duplicate EUI (ErrConflict), organization exists
// (ErrValidation), user set (ErrValidation), device known to the network
// server (ErrNotFound). Nothing is persisted when any check fails.
func (s *SyncService) Adopt(ctx context.Context, d *Device) (*Device, error) {
	d.DevEUI = NormalizeEUI(d.DevEUI)
	if d.DevEUI == "" {
		return nil, fmt.Errorf("%w: devEui is required", ErrValidation)
	}

	if _, err := s.repo.GetByDevEUI(ctx, d.DevEUI); err == nil {
		return nil, fmt.Errorf("%w: devEui %s", ErrConflict, d.DevEUI)
	}

	if d.OrganizationID == "" {
		return nil, fmt.Errorf("%w: organizationId is required", ErrValidation)
	}
	org, err := s.orgs.GetByID(ctx, d.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("%w: no organization with id %s", ErrValidation, d.OrganizationID)
	}

	if d.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrValidation)
	}

	info, ok := s.ns.GetDevice(ctx, d.DevEUI)
	if !ok {
		s.recordGatewayError(d.DevEUI, "get_device")
		return nil, fmt.Errorf("%w: no device on network server with devEui %s", ErrNotFound, d.DevEUI)
	}

	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	d.Name = info.Name
	d.Description = info.Description
	d.Status = info.Status
	if d.Status == "" {
		d.Status = StatusOffline
	}
	// Remote timestamps are best effort; absent or malformed ones keep
	// the local defaults.
	if t, err := time.Parse(time.RFC3339, info.LastSeenAt); err == nil {
		d.LastSeen = &t
	}
	if t, err := time.Parse(time.RFC3339, info.CreatedAt); err == nil {
		d.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, info.UpdatedAt); err == nil {
		d.UpdatedAt = t
	}

	d.Address = org.Address

	s.backfillPosition(ctx, d)

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("device adopted", "dev_eui", d.DevEUI, "organization_id", d.OrganizationID)
	s.recordSyncEvent(d.DevEUI, "adopted", map[string]interface{}{
		"organization_id": d.OrganizationID,
	})
	return d, nil
}

// Revise applies a patch to an adopted device.
//
// DevEUI, OrganizationID, and UserID are immutable; a patch naming a
// different value fails with ErrValidation (EUIs are compared in canonical
// form, so a spelling change is not a change). The merged name and
// description, and the status when patched, are pushed to the network
// server first; if that push fails, nothing is persisted and ErrGateway
// is returned.
//
// Position: when the patch sets lat or lng, the patch wins. Otherwise the
// position is re-derived from the latest reading, keeping the stored value
// when telemetry has nothing.
func (s *SyncService) Revise(ctx context.Context, id string, patch Patch) (*Device, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.DevEUI != nil && NormalizeEUI(*patch.DevEUI) != existing.DevEUI {
		return nil, fmt.Errorf("%w: devEui is immutable", ErrValidation)
	}
	if patch.OrganizationID != nil && *patch.OrganizationID != existing.OrganizationID {
		return nil, fmt.Errorf("%w: organizationId is immutable", ErrValidation)
	}
	if patch.UserID != nil && *patch.UserID != existing.UserID {
		return nil, fmt.Errorf("%w: userId is immutable", ErrValidation)
	}

	newName := existing.Name
	if patch.Name != nil {
		newName = *patch.Name
	}
	newDescription := existing.Description
	if patch.Description != nil {
		newDescription = *patch.Description
	}
	newAddress := existing.Address
	if patch.Address != nil {
		newAddress = *patch.Address
	}
	newStatus := ""
	if patch.Status != nil {
		if *patch.Status != StatusOnline && *patch.Status != StatusOffline {
			return nil, fmt.Errorf("%w: status must be %s or %s", ErrValidation, StatusOnline, StatusOffline)
		}
		newStatus = *patch.Status
	}

	// Remote first. The network server stays authoritative for metadata;
	// a local row must never claim a name the server refused.
	if !s.ns.UpdateDeviceMeta(ctx, existing.DevEUI, &newName, &newDescription, newStatus) {
		s.recordGatewayError(existing.DevEUI, "update_device")
		return nil, fmt.Errorf("%w: metadata push failed for %s", ErrGateway, existing.DevEUI)
	}

	if patch.Lat == nil && patch.Lng == nil {
		s.backfillPosition(ctx, existing)
	} else {
		if patch.Lat != nil {
			existing.Lat = patch.Lat
		}
		if patch.Lng != nil {
			existing.Lng = patch.Lng
		}
		if patch.Altitude != nil {
			existing.Altitude = patch.Altitude
		}
	}

	existing.Name = newName
	existing.Description = newDescription
	existing.Address = newAddress
	if newStatus != "" {
		existing.Status = newStatus
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.logger.Info("device revised", "dev_eui", existing.DevEUI)
	s.recordSyncEvent(existing.DevEUI, "revised", nil)
	return existing, nil
}

// SendCommand enqueues a one-byte downlink for a device.
//
// Any positive value is coerced to 1, everything else to 0, so a single
// byte reaches the actuator. A nil fPort uses the configured default.
// Returns the coerced value and the port used; ErrGateway when the network
// server refused the command.
func (s *SyncService) SendCommand(ctx context.Context, devEUI string, value int, fPort *int) (int, int, error) {
	eui := NormalizeEUI(devEUI)
	if eui == "" {
		return 0, 0, fmt.Errorf("%w: devEui is required", ErrValidation)
	}

	v := 0
	if value > 0 {
		v = 1
	}
	port := s.defaultFPort
	if fPort != nil && *fPort > 0 {
		port = *fPort
	}

	ok := s.downlink.EnqueueDownlink(ctx, eui, v, port)
	if s.events != nil {
		s.events.WriteCommandEvent(eui, v, port, ok)
	}
	if !ok {
		return v, port, fmt.Errorf("%w: downlink enqueue failed for %s", ErrGateway, eui)
	}

	s.logger.Info("command sent", "dev_eui", eui, "value", v, "f_port", port)
	return v, port, nil
}

// PeekRemote fetches a device's live state from the network server without
// touching the registry. The result is a transient Device carrying only
// what the server reports.
func (s *SyncService) PeekRemote(ctx context.Context, devEUI string) (*Device, error) {
	eui := NormalizeEUI(devEUI)
	info, ok := s.ns.GetDevice(ctx, eui)
	if !ok {
		return nil, fmt.Errorf("%w: no device on network server with devEui %s", ErrNotFound, eui)
	}

	d := &Device{
		DevEUI:      eui,
		Name:        info.Name,
		Description: info.Description,
		Status:      info.Status,
	}
	if t, err := time.Parse(time.RFC3339, info.LastSeenAt); err == nil {
		d.LastSeen = &t
	}
	if t, err := time.Parse(time.RFC3339, info.CreatedAt); err == nil {
		d.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, info.UpdatedAt); err == nil {
		d.UpdatedAt = t
	}
	return d, nil
}

// GetByID returns a device from the registry.
func (s *SyncService) GetByID(ctx context.Context, id string) (*Device, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByDevEUI returns a device by EUI in any spelling.
func (s *SyncService) GetByDevEUI(ctx context.Context, devEUI string) (*Device, error) {
	return s.repo.GetByDevEUI(ctx, NormalizeEUI(devEUI))
}

// ListAll returns every adopted device.
func (s *SyncService) ListAll(ctx context.Context) ([]Device, error) {
	return s.repo.List(ctx)
}

// ListByOwner returns devices registered by a user.
func (s *SyncService) ListByOwner(ctx context.Context, userID string) ([]Device, error) {
	return s.repo.ListByOwner(ctx, userID)
}

// ListByOrganization returns devices belonging to an organization.
func (s *SyncService) ListByOrganization(ctx context.Context, organizationID string) ([]Device, error) {
	return s.repo.ListByOrganization(ctx, organizationID)
}

// Delete removes a device from the registry. The network server record is
// left alone; un-adoption is not decommissioning.
func (s *SyncService) Delete(ctx context.Context, id string) error {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("device removed", "dev_eui", d.DevEUI)
	s.recordSyncEvent(d.DevEUI, "deleted", nil)
	return nil
}

// backfillPosition overwrites the device position from the latest reading
// when one yields a fix. No reading, or a reading without coordinates,
// leaves the stored position untouched.
func (s *SyncService) backfillPosition(ctx context.Context, d *Device) {
	r, err := s.readings.LastOne(ctx, d.DevEUI)
	if err != nil {
		return
	}
	p, ok := geo.Extract(r)
	if !ok {
		return
	}
	d.Lat = &p.Lat
	d.Lng = &p.Lng
	if p.Altitude != nil {
		d.Altitude = p.Altitude
	}
}

func (s *SyncService) recordSyncEvent(devEUI, event string, fields map[string]interface{}) {
	if s.events != nil {
		s.events.WriteSyncEvent(devEUI, event, fields)
	}
}

func (s *SyncService) recordGatewayError(devEUI, operation string) {
	if s.events != nil {
		s.events.WriteGatewayError(devEUI, operation)
	}
}
