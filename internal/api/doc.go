// Package api provides the HTTP REST API for the irrigation backend.
//
// It exposes device adoption and revision, downlink commands, telemetry
// queries, and organization and user management to dashboards and tooling.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
