package mqtt

import "fmt"

// Topic layout used by the ChirpStack MQTT integration.
//
// The network server subscribes to a per-device command topic; anything
// published there is enqueued as a downlink for that device. The backend
// additionally publishes its own status on a service topic so operators can
// see whether the core is up without polling the REST API.
const (
	// statusTopic carries the backend's online/offline status, retained.
	statusTopic = "irrigation/system/status"
)

// DownlinkTopic returns the ChirpStack command topic for a device.
//
// Format: application/{applicationID}/device/{devEUI}/command/down
// The devEUI must already be in canonical form (lowercase hex).
func DownlinkTopic(applicationID, devEUI string) string {
	return fmt.Sprintf("application/%s/device/%s/command/down", applicationID, devEUI)
}

// StatusTopic returns the topic carrying the backend's own status messages.
func StatusTopic() string {
	return statusTopic
}
