package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/teemow/bookify"

// Span attribute keys.
const (
	SpanAttrTool             = "mcp.tool"
	SpanAttrAccount          = "mcp.account"
	SpanAttrReadOnly         = "mcp.read_only"
	SpanAttrService          = "google.service"
	SpanAttrOperation        = "google.operation"
	SpanAttrBookingOperation = "booking.operation"
	SpanAttrDomain           = "booking.domain"
	SpanAttrRoom             = "booking.room"

	// SpanAttrResourceType and SpanAttrResourceID identify the event, room
	// or MCP resource an operation touches.
	SpanAttrResourceType = "bookify.resource_type"
	SpanAttrResourceID   = "bookify.resource_id"
)

// SpanAttributeBuilder collects span attributes. Empty string values are
// skipped so callers can pass optional fields unconditionally.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{attrs: make([]attribute.KeyValue, 0, 8)}
}

func (b *SpanAttributeBuilder) str(key, value string) *SpanAttributeBuilder {
	if value != "" {
		b.attrs = append(b.attrs, attribute.String(key, value))
	}
	return b
}

// WithOperation sets the booking operation (find, create, list, update, delete).
func (b *SpanAttributeBuilder) WithOperation(operation string) *SpanAttributeBuilder {
	return b.str(SpanAttrBookingOperation, operation)
}

func (b *SpanAttributeBuilder) WithDomain(domain string) *SpanAttributeBuilder {
	return b.str(SpanAttrDomain, domain)
}

func (b *SpanAttributeBuilder) WithRoom(room string) *SpanAttributeBuilder {
	return b.str(SpanAttrRoom, room)
}

// WithAccount sets the caller account. Pass an anonymized value.
func (b *SpanAttributeBuilder) WithAccount(account string) *SpanAttributeBuilder {
	return b.str(SpanAttrAccount, account)
}

func (b *SpanAttributeBuilder) WithResource(resourceType, resourceID string) *SpanAttributeBuilder {
	return b.str(SpanAttrResourceType, resourceType).str(SpanAttrResourceID, resourceID)
}

func (b *SpanAttributeBuilder) WithReadOnly(readOnly bool) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.Bool(SpanAttrReadOnly, readOnly))
	return b
}

func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

func startSpan(ctx context.Context, name string, kind trace.SpanKind, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(tracerName).Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(kind),
	)
}

// StartSpan starts an internal span. The caller ends it.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return startSpan(ctx, name, trace.SpanKindInternal, attrs)
}

// StartToolSpan starts the server span of an MCP tool call, named tool.<name>.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{attribute.String(SpanAttrTool, toolName)}, attrs...)
	return startSpan(ctx, "tool."+toolName, trace.SpanKindServer, attrs)
}

// StartBookingSpan starts a span named booking.<operation>.
func StartBookingSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return startSpan(ctx, "booking."+operation, trace.SpanKindInternal, attrs)
}

// StartGoogleAPISpan starts the client span of a Google API call, named
// google.<service>.<operation>.
func StartGoogleAPISpan(ctx context.Context, service, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{
		attribute.String(SpanAttrService, service),
		attribute.String(SpanAttrOperation, operation),
	}, attrs...)
	return startSpan(ctx, "google."+service+"."+operation, trace.SpanKindClient, attrs)
}

// SetSpanError marks the span failed. A nil error is ignored.
func SetSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// GetTraceID returns the trace id of the span in ctx, or "" without one.
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// GetSpanID returns the span id of the span in ctx, or "" without one.
func GetSpanID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.SpanID().String()
	}
	return ""
}
