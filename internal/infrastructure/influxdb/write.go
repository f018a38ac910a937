package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSyncEvent records a device lifecycle event (adopted, revised, deleted,
// synced). The write is non-blocking; data is batched and sent asynchronously.
//
// Example:
//
//	client.WriteSyncEvent("a84041fdfe2b9f2b", "adopted",
//	    map[string]interface{}{"organization_id": orgID})
func (c *Client) WriteSyncEvent(devEUI string, event string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["count"] = 1

	point := write.NewPoint(
		"sync_events",
		map[string]string{
			"dev_eui": devEUI,
			"event":   event,
		},
		fields,
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteCommandEvent records a downlink command dispatch and its outcome.
//
// The accepted flag is whether the network server took the command; value
// and fPort are what was enqueued.
func (c *Client) WriteCommandEvent(devEUI string, value int, fPort int, accepted bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"command_events",
		map[string]string{
			"dev_eui": devEUI,
		},
		map[string]interface{}{
			"value":    value,
			"f_port":   fPort,
			"accepted": accepted,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteGatewayError records a failed call to the network server.
//
// Tagged by operation (get_device, update_device, enqueue_downlink) so error
// rates can be graphed per call type.
func (c *Client) WriteGatewayError(devEUI string, operation string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"gateway_errors",
		map[string]string{
			"dev_eui":   devEUI,
			"operation": operation,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
