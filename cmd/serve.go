package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/bookify/internal/instrumentation"
	"github.com/teemow/bookify/internal/logging"
	"github.com/teemow/bookify/internal/resources"
	"github.com/teemow/bookify/internal/server"
	"github.com/teemow/bookify/internal/tools/booking_tools"
	"github.com/teemow/bookify/internal/tools/google_tools"
)

// Transport types supported by serve.
const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// serveOptions holds the flags of the serve command.
type serveOptions struct {
	debug     bool
	transport string
	yolo      bool
	http      server.HTTPServerConfig
	metrics   MetricsConfig
}

func newServeCmd() *cobra.Command {
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP (Model Context Protocol) server to provide room and booking
tools for AI assistants.

Supports multiple transports:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP server

Write tools (create, move, delete bookings) are only registered with --yolo.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.loadEnv(cmd)
			return runServe(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.http.Addr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&opts.yolo, "yolo", false, "Enable write operations (create, move and delete bookings). Default is read-only mode.")
	cmd.Flags().BoolVar(&opts.http.DisableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().StringVar(&opts.http.AccountHeader, "account-header", "", "Request header carrying the caller's account, set by an authenticating proxy (HTTP transport only). Can also use MCP_ACCOUNT_HEADER env var.")
	cmd.Flags().StringVar(&opts.http.TLSCertFile, "tls-cert-file", "", "Path to TLS certificate file (PEM format). If provided with --tls-key-file, enables HTTPS. Can also use TLS_CERT_FILE env var.")
	cmd.Flags().StringVar(&opts.http.TLSKeyFile, "tls-key-file", "", "Path to TLS private key file (PEM format). If provided with --tls-cert-file, enables HTTPS. Can also use TLS_KEY_FILE env var.")
	cmd.Flags().BoolVar(&opts.metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// loadEnv applies environment fallbacks to flags that were not set.
func (o *serveOptions) loadEnv(cmd *cobra.Command) {
	flags := cmd.Flags()

	if !flags.Changed("account-header") {
		if header := os.Getenv("MCP_ACCOUNT_HEADER"); header != "" {
			o.http.AccountHeader = header
		}
	}
	if !flags.Changed("tls-cert-file") && o.http.TLSCertFile == "" {
		o.http.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if !flags.Changed("tls-key-file") && o.http.TLSKeyFile == "" {
		o.http.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
	if !flags.Changed("metrics-enabled") && os.Getenv("METRICS_ENABLED") == "false" {
		o.metrics.Enabled = false
	}
	if !flags.Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			o.metrics.Addr = addr
		}
	}
	if o.debug && !flags.Changed("log-level") {
		globals.logLevel = "debug"
	}
}

func runServe(opts serveOptions) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	appOpts := appOptions{}
	if provider.Enabled() {
		appOpts.metrics = provider.Metrics()
		appOpts.audit = &instrConfig.AuditLogging
	}

	a, err := newApp(shutdownCtx, appOpts)
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return err
	}
	defer func() { _ = a.Close() }()

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			a.logger.Warn("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if opts.transport != transportStdio && opts.metrics.Enabled && provider.Enabled() && provider.PrometheusEnabled() {
		metricsServer, err = startMetricsServer(opts.metrics, provider, a.logger)
		if err != nil {
			return err
		}
	}

	serverContext, err := server.NewServerContext(shutdownCtx, server.Options{
		Service:        a.service,
		TokenStore:     a.store,
		OAuthConfig:    a.oauth,
		Revoker:        a.revoker,
		Domain:         globals.domain,
		DefaultAccount: globals.account,
		Logger:         a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	serverContext.SetMetrics(appOpts.metrics)
	serverContext.SetAuditLogger(a.audit)

	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				a.logger.Warn("error during metrics server shutdown", logging.Err(err))
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			a.logger.Warn("error during server context shutdown", logging.Err(err))
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("bookify", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	// readOnly is the inverse of yolo
	readOnly := !opts.yolo

	if readOnly {
		a.logger.Info("starting server in read-only mode (use --yolo to enable write operations)")
	} else {
		a.logger.Info("starting server with write operations enabled (--yolo flag is set)")
	}

	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	switch opts.transport {
	case transportStdio:
		return runStdioServer(mcpSrv)
	case transportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, opts.http, a.logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.transport)
	}
}

func startMetricsServer(config MetricsConfig, provider *instrumentation.Provider, logger logging.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    config.Addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		logger.Info("metrics server started", "addr", metricsServer.Addr())
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tools and resources
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Booking",
			register: func() error {
				return booking_tools.RegisterBookingTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Google",
			register: func() error {
				return google_tools.RegisterGoogleTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Resources",
			register: func() error {
				return resources.RegisterResources(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, config server.HTTPServerConfig, logger logging.Logger) error {
	httpServer, err := server.NewHTTPServer(mcpSrv, sc, config)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	scheme := "http"
	if config.TLSCertFile != "" {
		scheme = "https"
	}
	logger.Info("MCP server listening",
		"transport", transportStreamableHTTP,
		"addr", config.Addr,
		"endpoint", scheme+"://"+config.Addr+server.DefaultMCPEndpoint)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
