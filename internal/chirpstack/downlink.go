package chirpstack

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/mariemm1/IoTIrrigation/internal/infrastructure/logging"
	"github.com/mariemm1/IoTIrrigation/internal/infrastructure/mqtt"
)

// Publisher is the broker surface MQTTDownlink needs.
// Satisfied by *mqtt.Client.
type Publisher interface {
	PublishJSON(topic string, payload []byte) error
}

// MQTTDownlink enqueues downlinks through the network server's MQTT
// integration instead of the REST queue endpoint.
//
// ChirpStack subscribes to application/{applicationID}/device/{devEUI}/command/down
// and treats anything published there as a queue item. The application ID is
// not stored locally, so it is resolved with a device fetch before
// publishing.
type MQTTDownlink struct {
	client *Client
	pub    Publisher
	logger *logging.Logger
}

// NewMQTTDownlink creates the MQTT downlink transport.
func NewMQTTDownlink(client *Client, pub Publisher, logger *logging.Logger) *MQTTDownlink {
	return &MQTTDownlink{
		client: client,
		pub:    pub,
		logger: logger.With("component", "chirpstack-mqtt"),
	}
}

// downlinkMessage is the JSON body ChirpStack expects on the command topic.
type downlinkMessage struct {
	DevEUI    string `json:"devEui"`
	Confirmed bool   `json:"confirmed"`
	FPort     int    `json:"fPort"`
	Data      string `json:"data"`
}

// EnqueueDownlink publishes a one-byte downlink on the device command topic.
// Returns true when the broker accepted the publish.
func (d *MQTTDownlink) EnqueueDownlink(ctx context.Context, devEUI string, value int, fPort int) bool {
	resp, ok := d.client.fetchDevice(ctx, devEUI)
	if !ok {
		return false
	}
	if resp.Device.ApplicationID == "" {
		d.logger.Warn("device missing applicationId", "dev_eui", devEUI)
		return false
	}

	payload, err := json.Marshal(downlinkMessage{
		DevEUI:    devEUI,
		Confirmed: false,
		FPort:     fPort,
		Data:      base64.StdEncoding.EncodeToString([]byte{byte(value)}),
	})
	if err != nil {
		d.logger.Error("marshaling downlink", "dev_eui", devEUI, "error", err)
		return false
	}

	topic := mqtt.DownlinkTopic(resp.Device.ApplicationID, devEUI)
	if err := d.pub.PublishJSON(topic, payload); err != nil {
		d.logger.Error("publishing downlink", "dev_eui", devEUI, "topic", topic, "error", err)
		return false
	}

	d.logger.Info("downlink published", "dev_eui", devEUI, "value", value, "f_port", fPort)
	return true
}
