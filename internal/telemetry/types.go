package telemetry

import "time"

// Reading is one uplink from a device.
type Reading struct {
	ID            string `json:"id"`
	ApplicationID string `json:"applicationId"`

	// DevEUI is the canonical (lowercase hex) device EUI.
	DevEUI string `json:"devEui"`

	FPort int `json:"fPort"`

	// Data is the raw uplink payload, base64 as published by the
	// network server.
	Data string `json:"data"`

	// RxInfo is the per-gateway receive metadata. Shape varies with the
	// network server version, so it stays generic.
	RxInfo []map[string]any `json:"rxInfo"`

	// Object is the decoded payload produced by the device profile codec.
	Object map[string]any `json:"object"`

	ReceivedAt time.Time `json:"receivedAt"`
}

// applyDefaults fills fields that must never be nil for consumers.
func (r *Reading) applyDefaults() {
	if r.RxInfo == nil {
		r.RxInfo = []map[string]any{}
	}
	if r.Object == nil {
		r.Object = map[string]any{}
	}
	if r.ReceivedAt.IsZero() {
		r.ReceivedAt = time.Now().UTC()
	}
}
