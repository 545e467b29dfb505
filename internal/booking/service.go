package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/bookify/internal/instrumentation"
	"github.com/teemow/bookify/internal/logging"
)

// Operation names used for metrics, spans and audit records.
const (
	OperationFindAvailable = "find_available"
	OperationCreate        = "create"
	OperationList          = "list"
	OperationUpdate        = "update"
	OperationDelete        = "delete"
	OperationListFloors    = "list_floors"
	OperationListRooms     = "list_rooms"
)

// Dependencies are the collaborators a Service needs.
type Dependencies struct {
	Directory   RoomDirectory
	FreeBusy    FreeBusyOracle
	Events      EventStore
	Credentials CredentialOwner
}

// Service implements the booking lifecycle.
type Service struct {
	directory RoomDirectory
	events    EventStore
	resolver  *Resolver
	guard     *AuthFailureGuard

	config   Config
	logger   logging.Logger
	metrics  *instrumentation.Metrics
	audit    *instrumentation.AuditLogger
	newNonce func() string
}

// Option configures a Service.
type Option func(*Service)

// WithConfig overrides the configuration from DefaultConfig.
func WithConfig(config Config) Option {
	return func(s *Service) { s.config = config }
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(s *Service) { s.metrics = metrics }
}

// WithAuditLogger sets the audit logger for booking changes.
func WithAuditLogger(audit *instrumentation.AuditLogger) Option {
	return func(s *Service) { s.audit = audit }
}

// WithNonceSource replaces the conference request id generator.
func WithNonceSource(fn func() string) Option {
	return func(s *Service) { s.newNonce = fn }
}

// NewService creates a Service.
func NewService(deps Dependencies, opts ...Option) (*Service, error) {
	if deps.Directory == nil {
		return nil, fmt.Errorf("room directory cannot be nil")
	}
	if deps.FreeBusy == nil {
		return nil, fmt.Errorf("free/busy oracle cannot be nil")
	}
	if deps.Events == nil {
		return nil, fmt.Errorf("event store cannot be nil")
	}
	if deps.Credentials == nil {
		return nil, fmt.Errorf("credential owner cannot be nil")
	}

	s := &Service{
		directory: deps.Directory,
		events:    deps.Events,
		config:    DefaultConfig(),
		newNonce:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.DefaultLogger()
	}
	if err := s.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid booking config: %w", err)
	}

	s.guard = NewAuthFailureGuard(deps.Credentials, s.logger, s.metrics)
	s.resolver = NewResolver(deps.Directory, deps.FreeBusy, s.guard, s.logger)
	return s, nil
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.config
}

// FindAvailable returns the free rooms for window; see Resolver.FindAvailable.
func (s *Service) FindAvailable(ctx context.Context, cred Credential, domain string, window TimeWindow, minSeats int, floor string) ([]Room, error) {
	var rooms []Room
	err := s.observe(ctx, OperationFindAvailable, cred, func(ctx context.Context) error {
		var err error
		rooms, err = s.resolver.FindAvailable(ctx, cred, domain, window, minSeats, floor)
		return err
	})
	return rooms, err
}

// ListFloors returns the sorted floor labels of domain. No credential is
// involved, so a directory failure is always DirectoryUnavailable.
func (s *Service) ListFloors(ctx context.Context, domain string) ([]string, error) {
	var floors []string
	err := s.observe(ctx, OperationListFloors, Credential{}, func(ctx context.Context) error {
		var err error
		floors, err = s.directory.Floors(ctx, domain)
		if err != nil {
			s.logger.Warn("failed to list floors", "domain", domain, logging.Err(err))
			return newError(KindDirectoryUnavailable, msgDirectoryFailed, err)
		}
		return nil
	})
	return floors, err
}

// ListRooms returns every room of domain in directory order.
func (s *Service) ListRooms(ctx context.Context, domain string) ([]Room, error) {
	var rooms []Room
	err := s.observe(ctx, OperationListRooms, Credential{}, func(ctx context.Context) error {
		var err error
		rooms, err = s.directory.Rooms(ctx, domain)
		if err != nil {
			s.logger.Warn("failed to list rooms", "domain", domain, logging.Err(err))
			return newError(KindDirectoryUnavailable, msgDirectoryFailed, err)
		}
		return nil
	})
	return rooms, err
}

// observe runs fn inside a span and records the outcome.
func (s *Service) observe(ctx context.Context, operation string, cred Credential, fn func(ctx context.Context) error) error {
	start := time.Now()
	attrs := instrumentation.NewSpanAttributeBuilder().
		WithOperation(operation).
		WithAccount(logging.AnonymizeEmail(cred.Account())).
		Build()
	ctx, span := instrumentation.StartBookingSpan(ctx, operation, attrs...)
	defer span.End()

	err := fn(ctx)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	s.metrics.RecordBookingOperation(ctx, operation, status, string(KindOf(err)), time.Since(start))
	return err
}

// recordChange writes an audit record for a mutating operation.
func (s *Service) recordChange(ctx context.Context, change *instrumentation.BookingChange, err error) {
	if err != nil {
		change.CompleteWithError(string(KindOf(err)), err)
	} else {
		change.CompleteSuccess()
	}
	s.audit.LogBookingChange(change.WithSpanContext(ctx))
}
