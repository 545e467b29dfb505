package directory

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	admin "google.golang.org/api/admin/directory/v1"
	"google.golang.org/api/option"

	"github.com/teemow/bookify/internal/booking"
	"github.com/teemow/bookify/internal/google"
	"github.com/teemow/bookify/internal/instrumentation"
	"github.com/teemow/bookify/internal/logging"
)

// Directory implements booking.RoomDirectory.
type Directory struct {
	tokens  google.TokenProvider
	config  Config
	metrics *instrumentation.Metrics
	logger  logging.Logger
}

var (
	_ booking.RoomDirectory    = (*Directory)(nil)
	_ booking.DirectoryAccount = (*Directory)(nil)
)

// New creates a Directory reading resources with config.Account's token.
func New(tokens google.TokenProvider, config Config, metrics *instrumentation.Metrics, logger logging.Logger) (*Directory, error) {
	if tokens == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}
	if config.Account == "" {
		return nil, fmt.Errorf("directory account is required")
	}
	if config.PageSize <= 0 {
		config.PageSize = DefaultPageSize
	}
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Directory{tokens: tokens, config: config, metrics: metrics, logger: logger}, nil
}

// Account is the account whose grant reads the directory.
func (d *Directory) Account() string {
	return d.config.Account
}

func (d *Directory) service(ctx context.Context) (*admin.Service, error) {
	token, err := d.tokens.GetTokenForAccount(ctx, d.config.Account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for directory account: %w", err)
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, d.config.ClientOptions...)
	svc, err := admin.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Directory service: %w", err)
	}
	return svc, nil
}

// Rooms lists every resource calendar of domain in directory order.
func (d *Directory) Rooms(ctx context.Context, domain string) (rooms []booking.Room, err error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDirectory, instrumentation.OperationList,
		instrumentation.NewSpanAttributeBuilder().WithDomain(domain).Build()...)
	defer span.End()

	start := time.Now()
	defer func() {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		d.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceDirectory, instrumentation.OperationList, status, time.Since(start))
	}()

	svc, err := d.service(ctx)
	if err != nil {
		return nil, err
	}

	customer := d.config.customerFor(domain)
	call := svc.Resources.Calendars.List(customer).MaxResults(d.config.PageSize)
	err = call.Pages(ctx, func(page *admin.CalendarResources) error {
		for _, res := range page.Items {
			if res == nil || res.ResourceEmail == "" {
				continue
			}
			rooms = append(rooms, toRoom(res))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar resources for domain %s: %w", domain, err)
	}

	d.logger.Debug("listed rooms", "domain", domain, "customer", customer, "rooms", len(rooms))
	if rooms == nil {
		rooms = []booking.Room{}
	}
	return rooms, nil
}

// Floors returns the distinct, non-empty floor names of domain's rooms.
// Numeric floors sort numerically and before named ones.
func (d *Directory) Floors(ctx context.Context, domain string) ([]string, error) {
	rooms, err := d.Rooms(ctx, domain)
	if err != nil {
		return nil, err
	}
	return DistinctFloors(rooms), nil
}

// DistinctFloors returns the sorted distinct non-empty floors of rooms.
func DistinctFloors(rooms []booking.Room) []string {
	seen := make(map[string]bool)
	floors := []string{}
	for _, room := range rooms {
		if room.Floor == "" || seen[room.Floor] {
			continue
		}
		seen[room.Floor] = true
		floors = append(floors, room.Floor)
	}
	slices.SortFunc(floors, compareFloors)
	return floors
}

func compareFloors(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na - nb
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// toRoom prefers the generated name ("Building-Floor-Name (capacity)"),
// which is what the provider writes into event locations.
func toRoom(res *admin.CalendarResource) booking.Room {
	name := res.GeneratedResourceName
	if name == "" {
		name = res.ResourceName
	}
	return booking.Room{
		ID:       res.ResourceId,
		Email:    res.ResourceEmail,
		Name:     name,
		Seats:    int(res.Capacity),
		Floor:    res.FloorName,
		Building: res.BuildingId,
	}
}
