// Package telemetry reads the sensor uplink mirror.
//
// Uplinks published by the network server are written to the sensor_readings
// table by an external ingestion path; this package only queries them. The
// decoded payload and gateway receive metadata are stored as JSON and
// surfaced as generic maps, since payload shapes vary per device profile.
package telemetry
