package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

const (
	testEmail  = "jane@example.com"
	testDomain = "example.com"
	testRoom   = "c_123@resource.calendar.google.com"
)

func newJSONAuditLogger(buf *bytes.Buffer, config AuditLoggingConfig) *AuditLogger {
	return NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(buf, nil)), config)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestBookingChange_CompleteSuccess(t *testing.T) {
	bc := NewBookingChange("create").
		WithAccount(testEmail).
		WithDomain(testDomain).
		WithRoom(testRoom).
		WithBooking("evt-1").
		CompleteSuccess()

	if !bc.Success {
		t.Error("Success should be true")
	}
	if bc.Duration < 0 {
		t.Error("Duration should not be negative")
	}
	if bc.Kind != "" || bc.Error != "" {
		t.Errorf("expected no failure details, got kind=%q error=%q", bc.Kind, bc.Error)
	}
}

func TestBookingChange_CompleteWithError(t *testing.T) {
	bc := NewBookingChange("delete").CompleteWithError("event_already_deleted", errors.New("gone"))

	if bc.Success {
		t.Error("Success should be false")
	}
	if bc.Kind != "event_already_deleted" {
		t.Errorf("Kind = %q", bc.Kind)
	}
	if bc.Error != "gone" {
		t.Errorf("Error = %q", bc.Error)
	}
}

func TestAuditLogger_LogBookingChange(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONAuditLogger(&buf, AuditLoggingConfig{Enabled: true})

	logger.LogBookingChange(NewBookingChange("create").
		WithAccount(testEmail).
		WithRoom(testRoom).
		WithBooking("evt-1").
		WithSpanContext(context.Background()).
		CompleteSuccess())

	entry := decodeLine(t, &buf)
	if entry["msg"] != "booking_changed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["user_domain"] != testDomain {
		t.Errorf("user_domain = %v, want %s", entry["user_domain"], testDomain)
	}
	if _, ok := entry["user"]; ok {
		t.Error("full address must not be logged without IncludePII")
	}
	if entry["booking_id"] != "evt-1" {
		t.Errorf("booking_id = %v", entry["booking_id"])
	}
	if _, ok := entry["trace_id"]; ok {
		t.Error("trace_id must be omitted without a span")
	}
}

func TestAuditLogger_IncludePII(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONAuditLogger(&buf, AuditLoggingConfig{Enabled: true, IncludePII: true})

	logger.LogBookingChange(NewBookingChange("update").
		WithAccount(testEmail).
		CompleteWithError("forbidden", errors.New("denied")))

	entry := decodeLine(t, &buf)
	if entry["msg"] != "booking_change_failed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["user"] != testEmail {
		t.Errorf("user = %v, want %s", entry["user"], testEmail)
	}
	if entry["kind"] != "forbidden" {
		t.Errorf("kind = %v", entry["kind"])
	}
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONAuditLogger(&buf, AuditLoggingConfig{Enabled: true})

	logger.LogToolInvocation(NewToolInvocation("bookings_list").
		WithAccount(testEmail).
		WithOperation("list").
		CompleteSuccess())

	entry := decodeLine(t, &buf)
	if entry["msg"] != "tool_executed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["tool"] != "bookings_list" {
		t.Errorf("tool = %v", entry["tool"])
	}
}

func TestAuditLogger_DisabledAndNil(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONAuditLogger(&buf, AuditLoggingConfig{Enabled: false})

	logger.LogBookingChange(NewBookingChange("create").CompleteSuccess())
	logger.LogToolInvocation(NewToolInvocation("bookings_create").CompleteSuccess())
	if buf.Len() != 0 {
		t.Errorf("expected no output when disabled, got %q", buf.String())
	}

	// Should not panic
	var nilLogger *AuditLogger
	nilLogger.LogBookingChange(NewBookingChange("create"))
	nilLogger.LogToolInvocation(NewToolInvocation("bookings_create"))
}
