// Package influxdb records sync and command events as time-series points.
//
// The sink is optional and best-effort: when enabled, every device adoption,
// revision, command dispatch, and remote sync failure is written as a point
// so operators can graph command volume and gateway error rates. When
// disabled or unreachable, the rest of the backend is unaffected.
//
// Writes are non-blocking and batched by the underlying client; errors are
// delivered asynchronously through the error callback.
package influxdb
