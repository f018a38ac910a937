package chirpstack

// Device status values derived from the network server's disabled flag.
const (
	StatusOnline  = "ONLINE"
	StatusOffline = "OFFLINE"
)

// DeviceInfo is the metadata the network server holds for a device.
//
// Timestamps are the server's RFC3339 strings, passed through untouched;
// an empty string means the server did not report that field.
type DeviceInfo struct {
	DevEUI      string `json:"devEui"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LastSeenAt  string `json:"lastSeenAt"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`

	// Status is ONLINE when the device is enabled on the server,
	// OFFLINE when disabled.
	Status string `json:"status"`
}

// deviceResponse is the wire shape of GET /api/devices/{devEui}.
type deviceResponse struct {
	Device     deviceBody `json:"device"`
	LastSeenAt string     `json:"lastSeenAt"`
	CreatedAt  string     `json:"createdAt"`
	UpdatedAt  string     `json:"updatedAt"`
}

// deviceBody is the device object inside GET and PUT payloads.
type deviceBody struct {
	DevEUI          string            `json:"devEui"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	ApplicationID   string            `json:"applicationId"`
	DeviceProfileID string            `json:"deviceProfileId"`
	JoinEUI         string            `json:"joinEui,omitempty"`
	IsDisabled      bool              `json:"isDisabled"`
	Tags            map[string]string `json:"tags"`
	Variables       map[string]string `json:"variables"`
}

// updateRequest is the wire shape of PUT /api/devices/{devEui}.
type updateRequest struct {
	Device deviceBody `json:"device"`
}

// queueItem is a single downlink in POST /api/devices/{devEui}/queue.
type queueItem struct {
	DevEUI    string `json:"devEui"`
	Confirmed bool   `json:"confirmed"`
	FPort     int    `json:"fPort"`

	// Data is the base64-encoded downlink payload.
	Data string `json:"data"`
}

// enqueueRequest is the wire shape of the queue endpoint.
type enqueueRequest struct {
	QueueItem queueItem `json:"queueItem"`
}
