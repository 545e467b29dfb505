package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrKind      = "kind"
	attrReason    = "reason"
	attrTool      = "tool"
)

// Metrics provides methods for recording observability metrics.
//
// A nil *Metrics or a zero value records nothing.
type Metrics struct {
	// Booking metrics
	bookingOperationsTotal   metric.Int64Counter
	bookingOperationDuration metric.Float64Histogram
	credentialRevocations    metric.Int64Counter

	// Google API metrics
	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	// Booking Metrics
	m.bookingOperationsTotal, err = meter.Int64Counter(
		"booking_operations_total",
		metric.WithDescription("Total number of booking operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking_operations_total counter: %w", err)
	}

	m.bookingOperationDuration, err = meter.Float64Histogram(
		"booking_operation_duration_seconds",
		metric.WithDescription("Booking operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking_operation_duration_seconds histogram: %w", err)
	}

	m.credentialRevocations, err = meter.Int64Counter(
		"credential_revocations_total",
		metric.WithDescription("Total number of credentials revoked after provider rejections"),
		metric.WithUnit("{revocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create credential_revocations_total counter: %w", err)
	}

	// Google API Metrics
	m.googleAPIOperationsTotal, err = meter.Int64Counter(
		"google_api_operations_total",
		metric.WithDescription("Total number of Google API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operations_total counter: %w", err)
	}

	m.googleAPIOperationDuration, err = meter.Float64Histogram(
		"google_api_operation_duration_seconds",
		metric.WithDescription("Google API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operation_duration_seconds histogram: %w", err)
	}

	// MCP Tool Metrics
	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordBookingOperation records a booking operation.
//
// Parameters:
//   - operation: find_available, list_floors, create, list, update, delete
//   - status: "success" or "error"
//   - kind: failure kind (empty on success)
//   - duration: Time taken for the operation
func (m *Metrics) RecordBookingOperation(ctx context.Context, operation, status, kind string, duration time.Duration) {
	if m == nil || m.bookingOperationsTotal == nil || m.bookingOperationDuration == nil {
		return
	}

	counterAttrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
		attribute.String(attrKind, kind),
	}

	m.bookingOperationsTotal.Add(ctx, 1, metric.WithAttributes(counterAttrs...))
	m.bookingOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	))
}

// RecordCredentialRevocation records a credential revocation with its reason.
func (m *Metrics) RecordCredentialRevocation(ctx context.Context, reason string) {
	if m == nil || m.credentialRevocations == nil {
		return
	}

	m.credentialRevocations.Add(ctx, 1, metric.WithAttributes(attribute.String(attrReason, reason)))
}

// RecordGoogleAPIOperation records a Google API operation with service, operation,
// status, and duration.
//
// Parameters:
//   - service: Google service name (calendar, directory, oauth)
//   - operation: Operation type (list, get, insert, update, delete, freebusy, revoke)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.googleAPIOperationsTotal == nil || m.googleAPIOperationDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.googleAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
