// Package server provides the MCP server context and the HTTP plumbing
// around it for bookify.
//
// # Key Components
//
// ServerContext carries the booking service, the Google token store and the
// instrumentation shared by every MCP tool handler. It holds no per-account
// clients: each booking operation builds its own.
//
// HTTPServer serves the MCP streamable-http transport next to the health
// endpoints. MetricsServer exposes Prometheus metrics on a dedicated port.
//
// HealthChecker implements /healthz, /readyz and /healthz/detailed for
// Kubernetes probes.
package server
