package organization

import "errors"

// Sentinel errors for organization operations.
var (
	// ErrNotFound indicates the organization does not exist.
	ErrNotFound = errors.New("organization: not found")

	// ErrNameTaken indicates another organization already uses the name.
	ErrNameTaken = errors.New("organization: name already taken")

	// ErrInvalidName indicates a missing or blank name.
	ErrInvalidName = errors.New("organization: name is required")
)
