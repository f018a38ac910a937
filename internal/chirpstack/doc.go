// Package chirpstack talks to the ChirpStack v4 REST API.
//
// The network server is the source of truth for device metadata (name,
// description, enabled state, last-seen). This client reads and writes that
// metadata and enqueues downlink commands on the device queue.
//
// Calls never propagate transport errors to callers. A failed GET reports
// the device as absent; failed writes report false. Failures are logged and
// optionally recorded in the event sink; the caller decides whether absence
// is a gateway problem or a genuine not-found.
package chirpstack
