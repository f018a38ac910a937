package chirpstack

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mariemm1/IoTIrrigation/internal/infrastructure/config"
	"github.com/mariemm1/IoTIrrigation/internal/infrastructure/logging"
)

// maxResponseSize bounds response bodies read from the network server.
const maxResponseSize = 1 << 20 // 1MB

// Client is the HTTP client for the ChirpStack v4 REST API.
//
// Safe for concurrent use. All requests carry the API token and are bounded
// by the configured request timeout through the underlying http.Client.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *logging.Logger
}

// New creates a ChirpStack client from configuration.
func New(cfg config.ChirpStackConfig, logger *logging.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http: &http.Client{
			Timeout: cfg.GetRequestTimeout(),
		},
		logger: logger.With("component", "chirpstack"),
	}
}

// GetDevice fetches device metadata from the network server.
//
// Returns the metadata and true when the device exists and the server
// responded. Any failure (unknown device, unreachable server, malformed
// body) is logged and reported as absence; the caller decides what absence
// means.
func (c *Client) GetDevice(ctx context.Context, devEUI string) (*DeviceInfo, bool) {
	resp, ok := c.fetchDevice(ctx, devEUI)
	if !ok {
		return nil, false
	}

	status := StatusOnline
	if resp.Device.IsDisabled {
		status = StatusOffline
	}

	return &DeviceInfo{
		DevEUI:      devEUI,
		Name:        resp.Device.Name,
		Description: resp.Device.Description,
		LastSeenAt:  resp.LastSeenAt,
		CreatedAt:   resp.CreatedAt,
		UpdatedAt:   resp.UpdatedAt,
		Status:      status,
	}, true
}

// UpdateDeviceMeta pushes name, description, and enabled state to the
// network server.
//
// The v4 PUT endpoint replaces the whole device object, so the current
// object is fetched first and its required identifiers (applicationId,
// deviceProfileId), joinEui, tags, and variables are echoed back verbatim.
// A nil name or description keeps the current value. Status ONLINE enables
// the device, OFFLINE disables it; any other value leaves the flag alone.
//
// Returns true only when the server accepted the update.
func (c *Client) UpdateDeviceMeta(ctx context.Context, devEUI string, name, description *string, status string) bool {
	resp, ok := c.fetchDevice(ctx, devEUI)
	if !ok {
		return false
	}
	d := resp.Device

	if d.ApplicationID == "" {
		c.logger.Warn("device missing applicationId", "dev_eui", devEUI)
		return false
	}
	if d.DeviceProfileID == "" {
		// The server rejects a PUT without it (expects a 32-char id).
		c.logger.Warn("device missing deviceProfileId", "dev_eui", devEUI)
		return false
	}

	if name != nil {
		d.Name = *name
	}
	if description != nil {
		d.Description = *description
	}
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case StatusOffline:
		d.IsDisabled = true
	case StatusOnline:
		d.IsDisabled = false
	}

	d.DevEUI = devEUI
	if d.Tags == nil {
		d.Tags = map[string]string{}
	}
	if d.Variables == nil {
		d.Variables = map[string]string{}
	}

	body, err := json.Marshal(updateRequest{Device: d})
	if err != nil {
		c.logger.Error("marshaling device update", "dev_eui", devEUI, "error", err)
		return false
	}

	url := fmt.Sprintf("%s/api/devices/%s", c.baseURL, devEUI)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		c.logger.Error("building device update request", "dev_eui", devEUI, "error", err)
		return false
	}
	c.setHeaders(req)

	httpResp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("device update failed", "dev_eui", devEUI, "error", err)
		return false
	}
	defer httpResp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(httpResp.Body, maxResponseSize)) //nolint:errcheck // drain for reuse

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		c.logger.Warn("device update rejected", "dev_eui", devEUI, "status", httpResp.StatusCode)
		return false
	}
	return true
}

// EnqueueDownlink queues a one-byte downlink on the device queue.
//
// The payload is the single byte [value], base64-encoded, unconfirmed.
// Returns true when the server accepted the queue item.
func (c *Client) EnqueueDownlink(ctx context.Context, devEUI string, value int, fPort int) bool {
	body, err := json.Marshal(enqueueRequest{
		QueueItem: queueItem{
			DevEUI:    devEUI,
			Confirmed: false,
			FPort:     fPort,
			Data:      base64.StdEncoding.EncodeToString([]byte{byte(value)}),
		},
	})
	if err != nil {
		c.logger.Error("marshaling downlink", "dev_eui", devEUI, "error", err)
		return false
	}

	url := fmt.Sprintf("%s/api/devices/%s/queue", c.baseURL, devEUI)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		c.logger.Error("building downlink request", "dev_eui", devEUI, "error", err)
		return false
	}
	c.setHeaders(req)

	httpResp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("downlink enqueue failed", "dev_eui", devEUI, "error", err)
		return false
	}
	defer httpResp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(httpResp.Body, maxResponseSize)) //nolint:errcheck // drain for reuse

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		c.logger.Warn("downlink rejected", "dev_eui", devEUI, "f_port", fPort, "status", httpResp.StatusCode)
		return false
	}

	c.logger.Info("downlink enqueued", "dev_eui", devEUI, "value", value, "f_port", fPort)
	return true
}

// fetchDevice performs GET /api/devices/{devEui} and decodes the response.
func (c *Client) fetchDevice(ctx context.Context, devEUI string) (*deviceResponse, bool) {
	url := fmt.Sprintf("%s/api/devices/%s", c.baseURL, devEUI)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Error("building device request", "dev_eui", devEUI, "error", err)
		return nil, false
	}
	c.setHeaders(req)

	httpResp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("device fetch failed", "dev_eui", devEUI, "error", err)
		return nil, false
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		c.logger.Warn("device not found on network server", "dev_eui", devEUI, "status", httpResp.StatusCode)
		return nil, false
	}

	var resp deviceResponse
	if err := json.NewDecoder(io.LimitReader(httpResp.Body, maxResponseSize)).Decode(&resp); err != nil {
		c.logger.Error("decoding device response", "dev_eui", devEUI, "error", err)
		return nil, false
	}
	return &resp, true
}

// setHeaders applies authentication and content negotiation headers.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
}
