// Package mqtt wraps paho.mqtt.golang for publishing to the broker the
// LoRaWAN network server listens on.
//
// The backend uses MQTT in one direction only: enqueueing downlink commands
// on the network server's command topic when the HTTP queue endpoint is not
// the configured transport. Uplink ingestion happens outside this service,
// so there is no subscription support here.
//
// The client maintains the connection with automatic reconnection and
// exponential backoff, publishes a Last Will and Testament so other services
// can detect an unexpected disconnect, and exposes a health check for the
// API health endpoint.
package mqtt
