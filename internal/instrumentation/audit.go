package instrumentation

import (
	"context"
	"log/slog"
	"time"
)

// ToolInvocation captures a single MCP tool call for audit logging.
//
// # Privacy Considerations
//
// Account holds the caller's address. General logs only carry its domain;
// the full address is logged when the audit logger is configured with
// IncludePII.
type ToolInvocation struct {
	Tool      string
	Account   string
	Operation string

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
	SpanID  string
}

// NewToolInvocation creates a new ToolInvocation with timing started.
// Call Complete() when the tool operation finishes.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithAccount sets the account the tool acted for.
func (ti *ToolInvocation) WithAccount(account string) *ToolInvocation {
	ti.Account = account
	return ti
}

// WithOperation sets the booking operation the tool maps to.
func (ti *ToolInvocation) WithOperation(operation string) *ToolInvocation {
	ti.Operation = operation
	return ti
}

// WithSpanContext extracts trace context from the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID, ti.SpanID = GetTraceID(ctx), GetSpanID(ctx)
	return ti
}

// Complete marks the invocation as completed and calculates duration.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteWithError marks the invocation as failed with the given error.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// CompleteSuccess marks the invocation as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for structured logging.
func (ti *ToolInvocation) LogAttrs(includePII bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		accountAttr(ti.Account, includePII),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}
	if ti.Operation != "" {
		attrs = append(attrs, slog.String("operation", ti.Operation))
	}
	return appendTrace(attrs, ti.TraceID, ti.SpanID, ti.Error)
}

// BookingChange captures a mutating booking operation for the audit trail.
type BookingChange struct {
	Operation string
	Account   string
	Domain    string
	BookingID string
	Room      string

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Kind      string
	Error     string

	TraceID string
	SpanID  string
}

// NewBookingChange starts timing a booking change.
func NewBookingChange(operation string) *BookingChange {
	return &BookingChange{
		Operation: operation,
		StartTime: time.Now(),
	}
}

// WithAccount sets the account that owns the booking.
func (bc *BookingChange) WithAccount(account string) *BookingChange {
	bc.Account = account
	return bc
}

// WithDomain sets the organisation domain whose rooms are used.
func (bc *BookingChange) WithDomain(domain string) *BookingChange {
	bc.Domain = domain
	return bc
}

// WithBooking sets the booking (event) id.
func (bc *BookingChange) WithBooking(id string) *BookingChange {
	bc.BookingID = id
	return bc
}

// WithRoom sets the room resource address.
func (bc *BookingChange) WithRoom(room string) *BookingChange {
	bc.Room = room
	return bc
}

// WithSpanContext extracts trace context from the current span.
func (bc *BookingChange) WithSpanContext(ctx context.Context) *BookingChange {
	bc.TraceID, bc.SpanID = GetTraceID(ctx), GetSpanID(ctx)
	return bc
}

// CompleteSuccess marks the change as committed.
func (bc *BookingChange) CompleteSuccess() *BookingChange {
	bc.Duration = time.Since(bc.StartTime)
	bc.Success = true
	return bc
}

// CompleteWithError marks the change as failed with a failure kind.
func (bc *BookingChange) CompleteWithError(kind string, err error) *BookingChange {
	bc.Duration = time.Since(bc.StartTime)
	bc.Success = false
	bc.Kind = kind
	if err != nil {
		bc.Error = err.Error()
	}
	return bc
}

// LogAttrs returns slog attributes for structured logging.
func (bc *BookingChange) LogAttrs(includePII bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("operation", bc.Operation),
		accountAttr(bc.Account, includePII),
		slog.Duration("duration", bc.Duration),
		slog.Bool("success", bc.Success),
	}
	if bc.Domain != "" {
		attrs = append(attrs, slog.String("domain", bc.Domain))
	}
	if bc.BookingID != "" {
		attrs = append(attrs, slog.String("booking_id", bc.BookingID))
	}
	if bc.Room != "" {
		attrs = append(attrs, slog.String("room", bc.Room))
	}
	if bc.Kind != "" {
		attrs = append(attrs, slog.String("kind", bc.Kind))
	}
	return appendTrace(attrs, bc.TraceID, bc.SpanID, bc.Error)
}

func accountAttr(account string, includePII bool) slog.Attr {
	if includePII {
		return slog.String("user", account)
	}
	return slog.String("user_domain", ExtractUserDomain(account))
}

func appendTrace(attrs []slog.Attr, traceID, spanID, errMsg string) []slog.Attr {
	if traceID != "" {
		attrs = append(attrs, slog.String("trace_id", traceID))
	}
	if spanID != "" {
		attrs = append(attrs, slog.String("span_id", spanID))
	}
	if errMsg != "" {
		attrs = append(attrs, slog.String("error", errMsg))
	}
	return attrs
}

// AuditLogger provides structured audit logging for tool invocations and
// booking changes. A nil *AuditLogger logs nothing.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger.
// By default, PII is not included in logs.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogToolInvocation logs a tool invocation.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled || ti == nil {
		return
	}

	args := attrsToArgs(ti.LogAttrs(al.includePII))
	if ti.Success {
		al.logger.Info("tool_executed", args...)
	} else {
		al.logger.Warn("tool_failed", args...)
	}
}

// LogBookingChange logs a committed or failed booking change.
func (al *AuditLogger) LogBookingChange(bc *BookingChange) {
	if al == nil || !al.enabled || bc == nil {
		return
	}

	args := attrsToArgs(bc.LogAttrs(al.includePII))
	if bc.Success {
		al.logger.Info("booking_changed", args...)
	} else {
		al.logger.Warn("booking_change_failed", args...)
	}
}

func attrsToArgs(attrs []slog.Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}
