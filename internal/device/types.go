package device

import "time"

// Device status values, mirroring the network server's enabled flag.
const (
	StatusOnline  = "ONLINE"
	StatusOffline = "OFFLINE"
)

// Device is the local registry row for an adopted device.
type Device struct {
	ID string `json:"id"`

	// DevEUI is stored in canonical form: lowercase hex, no separators.
	DevEUI string `json:"devEui"`

	Name        string `json:"name"`
	Description string `json:"description"`

	// Address is copied from the owning organization at adoption.
	Address string `json:"address"`

	Status   string     `json:"status"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`

	// OrganizationID and UserID are immutable after adoption.
	OrganizationID string `json:"organizationId"`
	UserID         string `json:"userId"`

	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
	Altitude *float64 `json:"altitude,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Patch carries the fields a revision may change. Nil means "leave as is".
// DevEUI, OrganizationID, and UserID are present only so the service can
// reject attempts to change them.
type Patch struct {
	DevEUI         *string `json:"devEui,omitempty"`
	OrganizationID *string `json:"organizationId,omitempty"`
	UserID         *string `json:"userId,omitempty"`

	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Address     *string `json:"address,omitempty"`

	// Status, when set, is forwarded to the network server as the
	// enabled/disabled flag. Must be ONLINE or OFFLINE.
	Status *string `json:"status,omitempty"`

	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
	Altitude *float64 `json:"altitude,omitempty"`
}
