// Package device holds the local device registry and the sync service that
// keeps it aligned with the LoRaWAN network server.
//
// A device row is a local projection of a device that already exists on the
// network server, enriched with ownership (organization, user) and an
// inferred position. The network server stays authoritative for metadata:
// adoption pulls it, revision pushes it first and persists only on success.
//
// Dev EUIs are normalized to lowercase hex without separators before any
// lookup or store, so every spelling of the same EUI hits the same row.
package device
