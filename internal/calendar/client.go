package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/bookify/internal/booking"
	"github.com/teemow/bookify/internal/google"
	"github.com/teemow/bookify/internal/instrumentation"
	"github.com/teemow/bookify/internal/logging"
)

// DefaultCalendarID is the calendar bookings are written to.
const DefaultCalendarID = "primary"

// Client wraps the Google Calendar service for one account.
type Client struct {
	svc        *calendar.Service
	account    string
	calendarID string
	metrics    *instrumentation.Metrics
	logger     logging.Logger
}

// NewClientForAccount creates a Calendar client authorized with the
// account's token from tokenProvider. Extra options are applied after the
// authorized HTTP client, so tests can point the service at another endpoint.
func NewClientForAccount(ctx context.Context, account string, tokenProvider google.TokenProvider, opts ...option.ClientOption) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := tokenProvider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	svc, err := calendar.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return NewClient(svc, account), nil
}

// NewClient wraps an existing service.
func NewClient(svc *calendar.Service, account string) *Client {
	return &Client{
		svc:        svc,
		account:    account,
		calendarID: DefaultCalendarID,
		logger:     logging.DefaultLogger(),
	}
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// observe wraps a Calendar API call in a span and records its metrics.
func (c *Client) observe(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	attrs := instrumentation.NewSpanAttributeBuilder().
		WithAccount(logging.AnonymizeEmail(c.account)).
		Build()
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, operation, attrs...)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, operation, status, time.Since(start))
	return err
}

// InsertEvent creates an event from draft. A draft with a conference request
// is sent with conference data version 1 so the provider creates the link.
func (c *Client) InsertEvent(ctx context.Context, draft booking.Booking) (booking.Booking, error) {
	var created *calendar.Event
	err := c.observe(ctx, instrumentation.OperationInsert, func(ctx context.Context) error {
		call := c.svc.Events.Insert(c.calendarID, toEvent(draft)).Context(ctx)
		if draft.Conference != nil {
			call = call.ConferenceDataVersion(1)
		}

		var err error
		created, err = call.Do()
		if err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}
		return nil
	})
	if err != nil {
		return booking.Booking{}, err
	}
	return toBooking(created), nil
}

// GetEvent retrieves a specific event by ID
func (c *Client) GetEvent(ctx context.Context, eventID string) (booking.Booking, error) {
	var event *calendar.Event
	err := c.observe(ctx, instrumentation.OperationGet, func(ctx context.Context) error {
		var err error
		event, err = c.svc.Events.Get(c.calendarID, eventID).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to get event: %w", err)
		}
		return nil
	})
	if err != nil {
		return booking.Booking{}, err
	}
	return toBooking(event), nil
}

// UpdateEvent overlays the title, location and attendees of b on the stored
// event and writes it back. Everything else on the event is kept.
func (c *Client) UpdateEvent(ctx context.Context, eventID string, b booking.Booking) (booking.Booking, error) {
	var updated *calendar.Event
	err := c.observe(ctx, instrumentation.OperationUpdate, func(ctx context.Context) error {
		existing, err := c.svc.Events.Get(c.calendarID, eventID).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to get existing event: %w", err)
		}

		if b.Title != "" {
			existing.Summary = b.Title
		}
		if b.Location != "" {
			existing.Location = b.Location
		}
		if b.Attendees != nil {
			existing.Attendees = mergeAttendees(existing.Attendees, b.Attendees)
		}

		updated, err = c.svc.Events.Update(c.calendarID, eventID, existing).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to update event: %w", err)
		}
		return nil
	})
	if err != nil {
		return booking.Booking{}, err
	}
	return toBooking(updated), nil
}

// DeleteEvent deletes a calendar event
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	return c.observe(ctx, instrumentation.OperationDelete, func(ctx context.Context) error {
		if err := c.svc.Events.Delete(c.calendarID, eventID).Context(ctx).Do(); err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
		return nil
	})
}

// ListEvents lists up to limit single events overlapping window, ordered by
// start time.
func (c *Client) ListEvents(ctx context.Context, window booking.TimeWindow, limit int) ([]booking.Booking, error) {
	var bookings []booking.Booking
	err := c.observe(ctx, instrumentation.OperationList, func(ctx context.Context) error {
		call := c.svc.Events.List(c.calendarID).
			TimeMin(window.Start.Format(time.RFC3339)).
			TimeMax(window.End.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx)
		if window.TimeZone != "" {
			call = call.TimeZone(window.TimeZone)
		}
		if limit > 0 {
			call = call.MaxResults(int64(limit))
		}

		events, err := call.Do()
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}

		bookings = make([]booking.Booking, 0, len(events.Items))
		for _, event := range events.Items {
			bookings = append(bookings, toBooking(event))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// QueryFreeBusy returns busy intervals per room address. Calendars the
// provider reports errors for, or whose intervals cannot be parsed, are left
// out of the result and therefore count as unavailable.
func (c *Client) QueryFreeBusy(ctx context.Context, rooms []string, window booking.TimeWindow) (map[string][]booking.BusyInterval, error) {
	result := make(map[string][]booking.BusyInterval, len(rooms))
	err := c.observe(ctx, instrumentation.OperationFreeBusy, func(ctx context.Context) error {
		items := make([]*calendar.FreeBusyRequestItem, len(rooms))
		for i, id := range rooms {
			items[i] = &calendar.FreeBusyRequestItem{Id: id}
		}

		query := &calendar.FreeBusyRequest{
			TimeMin:  window.Start.Format(time.RFC3339),
			TimeMax:  window.End.Format(time.RFC3339),
			TimeZone: window.TimeZone,
			Items:    items,
		}

		resp, err := c.svc.Freebusy.Query(query).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to query freebusy: %w", err)
		}

		for calID, cal := range resp.Calendars {
			if len(cal.Errors) > 0 {
				c.logger.Debug("freebusy reported errors for room", logging.Room(calID), "reason", cal.Errors[0].Reason)
				continue
			}
			busy, ok := toBusyIntervals(cal.Busy)
			if !ok {
				c.logger.Warn("freebusy returned unparsable interval", logging.Room(calID))
				continue
			}
			result[calID] = busy
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
