package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for device persistence operations.
type Repository interface {
	Create(ctx context.Context, d *Device) error
	GetByID(ctx context.Context, id string) (*Device, error)
	GetByDevEUI(ctx context.Context, devEUI string) (*Device, error)
	List(ctx context.Context) ([]Device, error)
	ListByOwner(ctx context.Context, userID string) ([]Device, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]Device, error)
	Update(ctx context.Context, d *Device) error
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed device repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const deviceColumns = `id, dev_eui, name, description, address, status, last_seen,
	organization_id, user_id, latitude, longitude, altitude, created_at, updated_at`

// Create inserts a new device. An empty ID is filled with a UUID.
// The EUI must already be canonical. Returns ErrConflict when another row
// holds the same EUI.
func (r *SQLiteRepository) Create(ctx context.Context, d *Device) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}

	const query = `INSERT INTO devices (` + deviceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.DevEUI, d.Name, d.Description, d.Address, d.Status,
		nullableTime(d.LastSeen),
		d.OrganizationID, d.UserID,
		nullFloat(d.Lat), nullFloat(d.Lng), nullFloat(d.Altitude),
		d.CreatedAt.Format(time.RFC3339), d.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrConflict
		}
		return fmt.Errorf("inserting device %s: %w", d.ID, err)
	}
	return nil
}

// GetByID returns a device by registry ID, or ErrNotFound.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	const query = `SELECT ` + deviceColumns + ` FROM devices WHERE id = ?`
	return scanDeviceRow(r.db.QueryRowContext(ctx, query, id))
}

// GetByDevEUI returns a device by canonical EUI, or ErrNotFound.
func (r *SQLiteRepository) GetByDevEUI(ctx context.Context, devEUI string) (*Device, error) {
	const query = `SELECT ` + deviceColumns + ` FROM devices WHERE dev_eui = ?`
	return scanDeviceRow(r.db.QueryRowContext(ctx, query, devEUI))
}

// List returns all devices ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Device, error) {
	const query = `SELECT ` + deviceColumns + ` FROM devices ORDER BY name, dev_eui`
	return r.queryDevices(ctx, query)
}

// ListByOwner returns devices registered by a user.
func (r *SQLiteRepository) ListByOwner(ctx context.Context, userID string) ([]Device, error) {
	const query = `SELECT ` + deviceColumns + ` FROM devices WHERE user_id = ? ORDER BY name, dev_eui`
	return r.queryDevices(ctx, query, userID)
}

// ListByOrganization returns devices belonging to an organization.
func (r *SQLiteRepository) ListByOrganization(ctx context.Context, organizationID string) ([]Device, error) {
	const query = `SELECT ` + deviceColumns + ` FROM devices WHERE organization_id = ? ORDER BY name, dev_eui`
	return r.queryDevices(ctx, query, organizationID)
}

// Update replaces every stored field of a device by ID.
func (r *SQLiteRepository) Update(ctx context.Context, d *Device) error {
	const query = `UPDATE devices
		SET dev_eui = ?, name = ?, description = ?, address = ?, status = ?,
			last_seen = ?, organization_id = ?, user_id = ?,
			latitude = ?, longitude = ?, altitude = ?, updated_at = ?
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		d.DevEUI, d.Name, d.Description, d.Address, d.Status,
		nullableTime(d.LastSeen),
		d.OrganizationID, d.UserID,
		nullFloat(d.Lat), nullFloat(d.Lng), nullFloat(d.Altitude),
		d.UpdatedAt.Format(time.RFC3339), d.ID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrConflict
		}
		return fmt.Errorf("updating device %s: %w", d.ID, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a device by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting device %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// queryDevices executes a query and returns a slice of Device.
func (r *SQLiteRepository) queryDevices(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// deviceScanner abstracts sql.Row and sql.Rows.
type deviceScanner interface {
	Scan(dest ...any) error
}

// scanDeviceRow scans a single device and maps sql.ErrNoRows to ErrNotFound.
func scanDeviceRow(row deviceScanner) (*Device, error) {
	d, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// scanDevice scans a device row.
func scanDevice(row deviceScanner) (*Device, error) {
	var d Device
	var lastSeen sql.NullString
	var lat, lng, alt sql.NullFloat64
	var createdAt, updatedAt string

	err := row.Scan(&d.ID, &d.DevEUI, &d.Name, &d.Description, &d.Address,
		&d.Status, &lastSeen, &d.OrganizationID, &d.UserID,
		&lat, &lng, &alt, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scanning device: %w", err)
	}

	if lastSeen.Valid {
		if t, err := time.Parse(time.RFC3339, lastSeen.String); err == nil {
			d.LastSeen = &t
		}
	}
	if lat.Valid {
		d.Lat = &lat.Float64
	}
	if lng.Valid {
		d.Lng = &lng.Float64
	}
	if alt.Valid {
		d.Altitude = &alt.Float64
	}
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is ours
	d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is ours
	return &d, nil
}

// nullableTime converts a *time.Time to a nullable RFC3339 column value.
func nullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

// nullFloat converts a *float64 to sql.NullFloat64 for nullable columns.
func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// isUniqueConstraintError reports whether err is a SQLite unique violation.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
