package instrumentation

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Exporter names accepted by METRICS_EXPORTER and TRACING_EXPORTER.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

var (
	metricsExporters = []string{ExporterPrometheus, ExporterOTLP, ExporterStdout}
	tracingExporters = []string{ExporterOTLP, ExporterStdout, ExporterNone}
)

// DefaultMetricInterval is the push interval of the OTLP and stdout metric
// exporters when OTEL_METRIC_EXPORT_INTERVAL is unset.
const DefaultMetricInterval = 10 * time.Second

// Metric label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	RevocationReasonExpired   = "expired"
	RevocationReasonForbidden = "forbidden"

	ServiceCalendar  = "calendar"
	ServiceDirectory = "directory"
	ServiceOAuth     = "oauth"
)

// Config selects the OpenTelemetry exporters of a bookify process.
type Config struct {
	ServiceName    string
	ServiceVersion string
	// ServiceInstanceID defaults to the hostname.
	ServiceInstanceID string

	Enabled bool

	MetricsExporter string
	// MetricInterval applies to push exporters only. Zero means
	// DefaultMetricInterval.
	MetricInterval time.Duration

	TracingExporter string
	// TraceSamplingRate is the parent based ratio in [0, 1].
	TraceSamplingRate float64

	// OTLPEndpoint is host:port without scheme, e.g. "localhost:4318".
	OTLPEndpoint string
	// OTLPInsecure sends OTLP over plain HTTP.
	OTLPInsecure bool

	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig controls the audit trail of tool calls and booking
// changes.
type AuditLoggingConfig struct {
	Enabled bool
	// IncludePII logs account addresses instead of their hashes.
	IncludePII bool
}

// DefaultConfig reads the instrumentation settings from the environment.
// Unparsable values fall back to the default.
func DefaultConfig() Config {
	return Config{
		ServiceName:       env("OTEL_SERVICE_NAME", "bookify", parseString),
		ServiceVersion:    "unknown",
		ServiceInstanceID: env("OTEL_SERVICE_INSTANCE_ID", "", parseString),
		Enabled:           env("INSTRUMENTATION_ENABLED", true, strconv.ParseBool),
		MetricsExporter:   env("METRICS_EXPORTER", ExporterPrometheus, parseString),
		MetricInterval:    env("OTEL_METRIC_EXPORT_INTERVAL", DefaultMetricInterval, parseMillis),
		TracingExporter:   env("TRACING_EXPORTER", ExporterNone, parseString),
		TraceSamplingRate: env("OTEL_TRACES_SAMPLER_ARG", 0.1, parseFloat),
		OTLPEndpoint:      env("OTEL_EXPORTER_OTLP_ENDPOINT", "", parseString),
		OTLPInsecure:      env("OTEL_EXPORTER_OTLP_INSECURE", false, strconv.ParseBool),
		AuditLogging: AuditLoggingConfig{
			Enabled:    env("AUDIT_LOGGING_ENABLED", true, strconv.ParseBool),
			IncludePII: env("AUDIT_LOGGING_INCLUDE_PII", false, strconv.ParseBool),
		},
	}
}

// Validate rejects unknown exporters, a sampling rate outside [0, 1] and an
// OTLP exporter without endpoint. Empty exporter names are allowed.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}
	if c.MetricsExporter != "" && !slices.Contains(metricsExporters, c.MetricsExporter) {
		return fmt.Errorf("invalid metrics exporter %q, must be one of: %s", c.MetricsExporter, strings.Join(metricsExporters, ", "))
	}
	if c.TracingExporter != "" && !slices.Contains(tracingExporters, c.TracingExporter) {
		return fmt.Errorf("invalid tracing exporter %q, must be one of: %s", c.TracingExporter, strings.Join(tracingExporters, ", "))
	}
	if c.MetricInterval < 0 {
		return fmt.Errorf("metric interval must not be negative, got %s", c.MetricInterval)
	}
	if (c.TracingExporter == ExporterOTLP || c.MetricsExporter == ExporterOTLP) && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using an OTLP exporter")
	}
	return nil
}

func (c *Config) metricInterval() time.Duration {
	if c.MetricInterval > 0 {
		return c.MetricInterval
	}
	return DefaultMetricInterval
}

func env[T any](key string, def T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func parseString(s string) (string, error) { return s, nil }

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

// parseMillis reads an integer number of milliseconds, the unit of the
// OTEL_METRIC_EXPORT_INTERVAL convention.
func parseMillis(s string) (time.Duration, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}
