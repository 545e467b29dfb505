package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/bookify/internal/booking"
	"github.com/teemow/bookify/internal/google"
	"github.com/teemow/bookify/internal/instrumentation"
	"github.com/teemow/bookify/internal/logging"
	"github.com/teemow/bookify/internal/server"
)

func newServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), server.Options{
		TokenStore: google.NewMemoryTokenStore(),
		Logger:     logging.Discard(),
	})
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

// toolCounts collects mcp_tool_invocations_total per status.
func toolCounts(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "mcp_tool_invocations_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is not an int64 sum", m.Name)
			}
			for _, dp := range sum.DataPoints {
				status, _ := dp.Attributes.Value("status")
				counts[status.AsString()] += dp.Value
			}
		}
	}
	return counts
}

func TestInstrumentedToolHandler_Success(t *testing.T) {
	sc := newServerContext(t)

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	}

	result, err := InstrumentedToolHandler("test_tool", sc, handler)(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
	if result == nil {
		t.Error("expected result, got nil")
	}
}

func TestInstrumentedToolHandler_Error(t *testing.T) {
	sc := newServerContext(t)

	expectedErr := errors.New("test error")
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	}

	_, err := InstrumentedToolHandler("test_tool", sc, handler)(context.Background(), mcp.CallToolRequest{})
	if err != expectedErr {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestInstrumentedToolHandler_RecordsMetricsAndAudit(t *testing.T) {
	sc := newServerContext(t)

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	metrics, err := instrumentation.NewMetrics(provider.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	sc.SetMetrics(metrics)

	var buf bytes.Buffer
	sc.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(
		slog.New(slog.NewJSONHandler(&buf, nil)),
		instrumentation.AuditLoggingConfig{Enabled: true},
	))

	ok := InstrumentedToolHandler("rooms_list_floors", sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("[]"), nil
	})
	failing := InstrumentedToolHandler("bookings_create", sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("no room"), nil
	})

	if _, err := ok(context.Background(), mcp.CallToolRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := failing(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected result.IsError to be true")
	}

	counts := toolCounts(t, reader)
	if counts[instrumentation.StatusSuccess] != 1 || counts[instrumentation.StatusError] != 1 {
		t.Errorf("tool invocation counts = %v, want one success and one error", counts)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 audit lines, got %d: %s", len(lines), buf.String())
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &record); err != nil {
		t.Fatalf("invalid audit line: %v", err)
	}
	if record["tool"] != "bookings_create" {
		t.Errorf("audit tool = %v, want bookings_create", record["tool"])
	}
}

func TestBookingErrorResult(t *testing.T) {
	result := BookingErrorResult(booking.ErrEventAlreadyDeleted)
	if !result.IsError {
		t.Fatal("expected error result")
	}

	text := result.Content[0].(mcp.TextContent).Text
	var payload ErrorPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		t.Fatalf("invalid payload %q: %v", text, err)
	}
	if payload.Kind != "event_already_deleted" || payload.Status != 410 {
		t.Errorf("payload = %+v", payload)
	}

	plain := BookingErrorResult(errors.New("boom"))
	if got := plain.Content[0].(mcp.TextContent).Text; got != "boom" {
		t.Errorf("plain error text = %q, want boom", got)
	}
}

func TestJSONResult(t *testing.T) {
	result, err := JSONResult(map[string]int{"rooms": 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.Content[0].(mcp.TextContent).Text; !strings.Contains(got, `"rooms": 2`) {
		t.Errorf("text = %q", got)
	}
}
