package calendar

import (
	"context"
	"os"

	"google.golang.org/api/option"

	"github.com/teemow/bookify/internal/booking"
	"github.com/teemow/bookify/internal/google"
	"github.com/teemow/bookify/internal/instrumentation"
	"github.com/teemow/bookify/internal/logging"
)

// Config configures the Gateway.
type Config struct {
	// CalendarID is the calendar bookings live in (default: "primary")
	CalendarID string

	// ClientOptions are appended to every Calendar service constructed.
	ClientOptions []option.ClientOption
}

// ConfigFromEnv reads BOOKIFY_CALENDAR_ID.
func ConfigFromEnv() Config {
	cfg := Config{CalendarID: DefaultCalendarID}
	if id := os.Getenv("BOOKIFY_CALENDAR_ID"); id != "" {
		cfg.CalendarID = id
	}
	return cfg
}

// Gateway implements booking.FreeBusyOracle and booking.EventStore on top of
// the Calendar API.
type Gateway struct {
	tokens  google.TokenProvider
	config  Config
	metrics *instrumentation.Metrics
	logger  logging.Logger
}

var (
	_ booking.FreeBusyOracle = (*Gateway)(nil)
	_ booking.EventStore     = (*Gateway)(nil)
)

// NewGateway creates a Gateway that authorizes calls with tokens.
func NewGateway(tokens google.TokenProvider, config Config, metrics *instrumentation.Metrics, logger logging.Logger) *Gateway {
	if config.CalendarID == "" {
		config.CalendarID = DefaultCalendarID
	}
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Gateway{tokens: tokens, config: config, metrics: metrics, logger: logger}
}

func (g *Gateway) client(ctx context.Context, cred booking.Credential) (*Client, error) {
	c, err := NewClientForAccount(ctx, cred.Account(), g.tokens, g.config.ClientOptions...)
	if err != nil {
		return nil, err
	}
	c.calendarID = g.config.CalendarID
	c.metrics = g.metrics
	c.logger = g.logger
	return c, nil
}

// QueryFreeBusy implements booking.FreeBusyOracle.
func (g *Gateway) QueryFreeBusy(ctx context.Context, cred booking.Credential, rooms []string, window booking.TimeWindow) (map[string][]booking.BusyInterval, error) {
	c, err := g.client(ctx, cred)
	if err != nil {
		return nil, err
	}
	return c.QueryFreeBusy(ctx, rooms, window)
}

// Insert implements booking.EventStore.
func (g *Gateway) Insert(ctx context.Context, cred booking.Credential, draft booking.Booking) (booking.Booking, error) {
	c, err := g.client(ctx, cred)
	if err != nil {
		return booking.Booking{}, err
	}
	return c.InsertEvent(ctx, draft)
}

// Get implements booking.EventStore.
func (g *Gateway) Get(ctx context.Context, cred booking.Credential, id string) (booking.Booking, error) {
	c, err := g.client(ctx, cred)
	if err != nil {
		return booking.Booking{}, err
	}
	return c.GetEvent(ctx, id)
}

// Update implements booking.EventStore.
func (g *Gateway) Update(ctx context.Context, cred booking.Credential, id string, b booking.Booking) (booking.Booking, error) {
	c, err := g.client(ctx, cred)
	if err != nil {
		return booking.Booking{}, err
	}
	return c.UpdateEvent(ctx, id, b)
}

// Delete implements booking.EventStore.
func (g *Gateway) Delete(ctx context.Context, cred booking.Credential, id string) error {
	c, err := g.client(ctx, cred)
	if err != nil {
		return err
	}
	return c.DeleteEvent(ctx, id)
}

// List implements booking.EventStore.
func (g *Gateway) List(ctx context.Context, cred booking.Credential, window booking.TimeWindow, limit int) ([]booking.Booking, error) {
	c, err := g.client(ctx, cred)
	if err != nil {
		return nil, err
	}
	return c.ListEvents(ctx, window, limit)
}
