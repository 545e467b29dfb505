package instrumentation

import (
	"context"
	"testing"
	"time"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if provider.Enabled() {
		t.Error("expected provider to be disabled")
	}
	if provider.Metrics() == nil {
		t.Error("expected metrics to be non-nil even when disabled")
	}
	if provider.PrometheusEnabled() {
		t.Error("expected prometheus to be disabled")
	}
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("expected no error on shutdown, got %v", err)
	}
}

func TestNewProvider_PrometheusExporter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if !provider.Enabled() {
		t.Error("expected provider to be enabled")
	}
	if !provider.PrometheusEnabled() {
		t.Error("expected prometheus exporter to be configured")
	}
	if provider.tracerProvider == nil {
		t.Error("expected a tracer provider")
	}
}

func TestNewProvider_UnsupportedExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		ServiceName:     "test-service",
		Enabled:         true,
		MetricsExporter: "carrier-pigeon",
		TracingExporter: ExporterNone,
	})
	if err == nil {
		t.Fatal("expected error for unsupported metrics exporter")
	}
}

func TestNewProvider_InvalidSamplingRate(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		ServiceName:       "test-service",
		Enabled:           true,
		MetricsExporter:   ExporterStdout,
		TracingExporter:   ExporterNone,
		TraceSamplingRate: 1.5,
	})
	if err == nil {
		t.Fatal("expected error for a sampling rate above 1")
	}
}

func TestNewProvider_OTLPWithoutEndpoint(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		ServiceName:     "test-service",
		Enabled:         true,
		MetricsExporter: ExporterOTLP,
		TracingExporter: ExporterNone,
	})
	if err == nil {
		t.Fatal("expected error when OTLP endpoint is missing")
	}
}
