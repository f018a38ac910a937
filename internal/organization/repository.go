package organization

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for organization persistence operations.
type Repository interface {
	Create(ctx context.Context, org *Organization) error
	GetByID(ctx context.Context, id string) (*Organization, error)
	List(ctx context.Context) ([]Organization, error)
	Update(ctx context.Context, org *Organization) error
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed organization repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const orgColumns = `id, name, address, contact_email, contact_phone, description, created_at, updated_at`

// Create inserts a new organization. An empty ID is filled with a UUID.
// Returns ErrNameTaken when the name is already in use.
func (r *SQLiteRepository) Create(ctx context.Context, org *Organization) error {
	if strings.TrimSpace(org.Name) == "" {
		return ErrInvalidName
	}
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	org.CreatedAt = now
	org.UpdatedAt = now

	const query = `INSERT INTO organizations (` + orgColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		org.ID, org.Name, org.Address, org.ContactEmail, org.ContactPhone,
		org.Description,
		org.CreatedAt.Format(time.RFC3339), org.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrNameTaken
		}
		return fmt.Errorf("inserting organization %s: %w", org.ID, err)
	}
	return nil
}

// GetByID returns a single organization, or ErrNotFound.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Organization, error) {
	const query = `SELECT ` + orgColumns + ` FROM organizations WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	org, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return org, nil
}

// List returns all organizations ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Organization, error) {
	const query = `SELECT ` + orgColumns + ` FROM organizations ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying organizations: %w", err)
	}
	defer rows.Close()

	var orgs []Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, *org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating organizations: %w", err)
	}
	return orgs, nil
}

// Update replaces the mutable fields of an organization.
// Returns ErrNotFound when the ID does not exist.
func (r *SQLiteRepository) Update(ctx context.Context, org *Organization) error {
	if strings.TrimSpace(org.Name) == "" {
		return ErrInvalidName
	}
	org.UpdatedAt = time.Now().UTC()

	const query = `UPDATE organizations
		SET name = ?, address = ?, contact_email = ?, contact_phone = ?,
			description = ?, updated_at = ?
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		org.Name, org.Address, org.ContactEmail, org.ContactPhone,
		org.Description, org.UpdatedAt.Format(time.RFC3339), org.ID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrNameTaken
		}
		return fmt.Errorf("updating organization %s: %w", org.ID, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an organization by ID.
// Returns ErrNotFound when the ID does not exist.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM organizations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting organization %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanOrganization scans a single organization row.
func scanOrganization(row scanner) (*Organization, error) {
	var org Organization
	var createdAt, updatedAt string

	err := row.Scan(&org.ID, &org.Name, &org.Address, &org.ContactEmail,
		&org.ContactPhone, &org.Description, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scanning organization: %w", err)
	}
	org.CreatedAt = parseTime(createdAt)
	org.UpdatedAt = parseTime(updatedAt)
	return &org, nil
}

// parseTime parses an ISO 8601 timestamp from SQLite.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// isUniqueConstraintError reports whether err is a SQLite unique violation.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
