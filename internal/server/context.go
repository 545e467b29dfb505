package server

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/bookify/internal/booking"
	"github.com/teemow/bookify/internal/google"
	"github.com/teemow/bookify/internal/instrumentation"
	"github.com/teemow/bookify/internal/logging"
)

// Options are the collaborators of a ServerContext.
type Options struct {
	// Service runs the booking operations. Nil is allowed for tool
	// introspection (generate-docs); handlers then report it as unavailable.
	Service *booking.Service

	// TokenStore and OAuthConfig back the auth tools.
	TokenStore  google.TokenStore
	OAuthConfig *oauth2.Config

	// Revoker forgets an account's grant on logout.
	Revoker *google.Revoker

	// Domain is used when a request does not name one.
	Domain string

	// DefaultAccount is used when a request does not name an account.
	DefaultAccount string

	Logger logging.Logger
}

// ServerContext holds the state shared by all MCP handlers.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	service        *booking.Service
	tokenStore     google.TokenStore
	oauthConfig    *oauth2.Config
	revoker        *google.Revoker
	domain         string
	defaultAccount string
	logger         logging.Logger

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, opts Options) (*ServerContext, error) {
	if opts.TokenStore == nil {
		return nil, fmt.Errorf("token store cannot be nil")
	}
	if opts.DefaultAccount == "" {
		opts.DefaultAccount = "default"
	}
	if opts.Logger == nil {
		opts.Logger = logging.DefaultLogger()
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:            shutdownCtx,
		cancel:         cancel,
		service:        opts.Service,
		tokenStore:     opts.TokenStore,
		oauthConfig:    opts.OAuthConfig,
		revoker:        opts.Revoker,
		domain:         opts.Domain,
		defaultAccount: opts.DefaultAccount,
		logger:         opts.Logger,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Service returns the booking service, or an error if none is configured.
func (sc *ServerContext) Service() (*booking.Service, error) {
	if sc.service == nil {
		return nil, fmt.Errorf("booking service is not configured")
	}
	return sc.service, nil
}

// TokenStore returns the store holding Google OAuth tokens.
func (sc *ServerContext) TokenStore() google.TokenStore {
	return sc.tokenStore
}

// OAuthConfig returns the Google OAuth client configuration, or nil.
func (sc *ServerContext) OAuthConfig() *oauth2.Config {
	return sc.oauthConfig
}

// Revoker returns the credential revoker, or nil.
func (sc *ServerContext) Revoker() *google.Revoker {
	return sc.revoker
}

// Domain returns the default Workspace domain.
func (sc *ServerContext) Domain() string {
	return sc.domain
}

// DefaultAccount returns the account used when a request names none.
func (sc *ServerContext) DefaultAccount() string {
	return sc.defaultAccount
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() logging.Logger {
	return sc.logger
}

// SetMetrics sets the metrics recorder used by tool handlers.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder, or nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger used by tool handlers.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// AuditLogger returns the audit logger, or nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
