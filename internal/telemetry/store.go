package telemetry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mariemm1/IoTIrrigation/internal/infrastructure/database"
)

// Sentinel errors for telemetry queries.
var (
	// ErrNoReadings is returned when a device has no stored uplinks.
	ErrNoReadings = errors.New("telemetry: no readings for device")
)

// defaultLimit caps Latest when the caller passes a non-positive limit.
const defaultLimit = 100

// Store provides read access to stored uplinks.
type Store interface {
	// Latest returns up to limit readings for a device, newest first.
	Latest(ctx context.Context, devEUI string, limit int) ([]Reading, error)

	// Between returns readings in [from, to], newest first.
	Between(ctx context.Context, devEUI string, from, to time.Time) ([]Reading, error)

	// LastOne returns the most recent reading, or ErrNoReadings.
	LastOne(ctx context.Context, devEUI string) (*Reading, error)
}

// SQLiteStore implements Store against the sensor_readings table.
type SQLiteStore struct {
	db *database.DB
}

// NewSQLiteStore creates a telemetry store.
func NewSQLiteStore(db *database.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const readingColumns = `id, application_id, dev_eui, f_port, data, rx_info_json, object_json, received_at`

// Latest returns up to limit readings for a device, newest first.
func (s *SQLiteStore) Latest(ctx context.Context, devEUI string, limit int) ([]Reading, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+readingColumns+`
		FROM sensor_readings
		WHERE dev_eui = ?
		ORDER BY received_at DESC
		LIMIT ?
	`, devEUI, limit)
	if err != nil {
		return nil, fmt.Errorf("querying latest readings: %w", err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

// Between returns readings in [from, to], newest first.
func (s *SQLiteStore) Between(ctx context.Context, devEUI string, from, to time.Time) ([]Reading, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+readingColumns+`
		FROM sensor_readings
		WHERE dev_eui = ? AND received_at >= ? AND received_at <= ?
		ORDER BY received_at DESC
	`, devEUI, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("querying readings between: %w", err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

// LastOne returns the most recent reading for a device.
func (s *SQLiteStore) LastOne(ctx context.Context, devEUI string) (*Reading, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+readingColumns+`
		FROM sensor_readings
		WHERE dev_eui = ?
		ORDER BY received_at DESC
		LIMIT 1
	`, devEUI)

	r, err := scanReading(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoReadings
		}
		return nil, err
	}
	return r, nil
}

// scanner abstracts sql.Row and sql.Rows for scanReading.
type scanner interface {
	Scan(dest ...any) error
}

// scanReading scans a single reading row and applies defaults.
func scanReading(row scanner) (*Reading, error) {
	var r Reading
	var rxInfoJSON, objectJSON, receivedAt string

	if err := row.Scan(
		&r.ID, &r.ApplicationID, &r.DevEUI, &r.FPort, &r.Data,
		&rxInfoJSON, &objectJSON, &receivedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scanning reading: %w", err)
	}

	if rxInfoJSON != "" {
		if err := json.Unmarshal([]byte(rxInfoJSON), &r.RxInfo); err != nil {
			return nil, fmt.Errorf("parsing rx_info for reading %s: %w", r.ID, err)
		}
	}
	if objectJSON != "" {
		if err := json.Unmarshal([]byte(objectJSON), &r.Object); err != nil {
			return nil, fmt.Errorf("parsing object for reading %s: %w", r.ID, err)
		}
	}
	if t, err := time.Parse(time.RFC3339, receivedAt); err == nil {
		r.ReceivedAt = t
	}

	r.applyDefaults()
	return &r, nil
}

// scanReadings drains a result set into a slice.
func scanReadings(rows *sql.Rows) ([]Reading, error) {
	var readings []Reading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating readings: %w", err)
	}
	return readings, nil
}
