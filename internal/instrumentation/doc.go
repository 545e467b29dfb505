// Package instrumentation provides OpenTelemetry instrumentation for bookify.
//
// # Metrics
//
// Booking Metrics:
//   - booking_operations_total: Counter of booking operations by operation, status and failure kind
//   - booking_operation_duration_seconds: Histogram of booking operation durations
//   - credential_revocations_total: Counter of credentials revoked after provider rejections, by reason
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Spans are created for booking operations (booking.<operation>), MCP tool
// invocations (tool.<name>) and Google API calls (google.<service>.<operation>).
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_METRIC_EXPORT_INTERVAL: Push interval in milliseconds for otlp and stdout (default: 10000)
//   - OTEL_SERVICE_NAME: Service name (default: bookify)
//
// All Metrics and AuditLogger methods are safe to call on a nil receiver, so
// callers can pass nil when instrumentation is disabled.
package instrumentation
