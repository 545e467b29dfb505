package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultMCPEndpoint is the path the streamable-http transport is served on.
const DefaultMCPEndpoint = "/mcp"

type accountContextKey struct{}

// ContextWithAccount attaches the caller's account to ctx.
func ContextWithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, accountContextKey{}, account)
}

// AccountFromContext returns the account attached by ContextWithAccount.
func AccountFromContext(ctx context.Context) (string, bool) {
	account, ok := ctx.Value(accountContextKey{}).(string)
	return account, ok && account != ""
}

// HTTPServerConfig configures the streamable-http transport.
type HTTPServerConfig struct {
	Addr string

	// DisableStreaming turns off SSE responses for clients that cannot read them.
	DisableStreaming bool

	// AccountHeader names a request header carrying the caller's account,
	// set by an authenticating proxy in front of the server. When set, MCP
	// requests without it are rejected with 401 and the header account
	// overrides any account tool argument. Empty disables it.
	AccountHeader string

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string
}

// HTTPServer serves MCP over streamable-http plus the health endpoints.
type HTTPServer struct {
	mcpServer  *mcpserver.MCPServer
	health     *HealthChecker
	config     HTTPServerConfig
	httpServer *http.Server
}

// NewHTTPServer creates an HTTPServer for mcpServer.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, sc *ServerContext, config HTTPServerConfig) (*HTTPServer, error) {
	if mcpServer == nil {
		return nil, fmt.Errorf("MCP server cannot be nil")
	}
	if (config.TLSCertFile == "") != (config.TLSKeyFile == "") {
		return nil, fmt.Errorf("both TLS certificate and key files are required for HTTPS")
	}
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	return &HTTPServer{
		mcpServer: mcpServer,
		health:    NewHealthChecker(sc),
		config:    config,
	}, nil
}

// Handler returns the mux serving MCP and health endpoints.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.health.RegisterHealthEndpoints(mux)

	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath(DefaultMCPEndpoint),
	}
	if s.config.DisableStreaming {
		opts = append(opts, mcpserver.WithDisableStreaming(true))
	}
	header := s.config.AccountHeader
	if header != "" {
		opts = append(opts, mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return accountFromHeader(ctx, r, header)
		}))
	}

	var mcpHandler http.Handler = mcpserver.NewStreamableHTTPServer(s.mcpServer, opts...)
	if header != "" {
		mcpHandler = requireAccountHeader(header, mcpHandler)
	}
	mux.Handle(DefaultMCPEndpoint, otelhttp.NewHandler(mcpHandler, "mcp"))
	return mux
}

// requireAccountHeader refuses requests without the account header before
// any tool sees their arguments.
func requireAccountHeader(header string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(r.Header.Get(header)) == "" {
			http.Error(w, fmt.Sprintf("missing %s header", header), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func accountFromHeader(ctx context.Context, r *http.Request, header string) context.Context {
	account := strings.TrimSpace(r.Header.Get(header))
	if account == "" {
		return ctx
	}
	return ContextWithAccount(ctx, account)
}

// Start serves until Shutdown is called.
func (s *HTTPServer) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if s.config.TLSCertFile != "" {
		return s.httpServer.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown marks the server not ready and drains connections.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
