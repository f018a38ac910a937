package device

import "errors"

// Sentinel errors forming the service's error taxonomy. The API layer maps
// these onto HTTP statuses: not found 404, validation 400, conflict 409,
// gateway 502.
var (
	// ErrNotFound indicates the device does not exist locally.
	ErrNotFound = errors.New("device: not found")

	// ErrValidation indicates bad input: missing fields, an unknown
	// organization, or an attempt to change an immutable field.
	ErrValidation = errors.New("device: validation failed")

	// ErrConflict indicates a device with the same canonical EUI already
	// exists.
	ErrConflict = errors.New("device: already exists")

	// ErrGateway indicates the network server rejected or failed an
	// operation. Nothing was persisted locally.
	ErrGateway = errors.New("device: network server error")
)
