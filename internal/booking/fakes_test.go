package booking

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/teemow/bookify/internal/logging"
)

// apiError builds a provider error carrying code.
func apiError(code int) error {
	return &googleapi.Error{Code: code, Message: http.StatusText(code)}
}

type fakeDirectory struct {
	rooms     []Room
	err       error
	account   string
	roomCalls int
}

func (d *fakeDirectory) Account() string { return d.account }

func (d *fakeDirectory) Rooms(_ context.Context, _ string) ([]Room, error) {
	d.roomCalls++
	if d.err != nil {
		return nil, d.err
	}
	return append([]Room(nil), d.rooms...), nil
}

func (d *fakeDirectory) Floors(_ context.Context, _ string) ([]string, error) {
	if d.err != nil {
		return nil, d.err
	}
	seen := map[string]bool{}
	var floors []string
	for _, r := range d.rooms {
		if r.Floor != "" && !seen[r.Floor] {
			seen[r.Floor] = true
			floors = append(floors, r.Floor)
		}
	}
	return floors, nil
}

type fakeFreeBusy struct {
	busy       map[string][]BusyInterval
	unreported []string
	err        error
	queries [][]string
	windows []TimeWindow
}

func (f *fakeFreeBusy) QueryFreeBusy(_ context.Context, _ Credential, rooms []string, window TimeWindow) (map[string][]BusyInterval, error) {
	f.queries = append(f.queries, append([]string(nil), rooms...))
	f.windows = append(f.windows, window)
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string][]BusyInterval, len(rooms))
	for _, room := range rooms {
		if slices.Contains(f.unreported, room) {
			continue
		}
		out[room] = f.busy[room]
	}
	return out, nil
}

type fakeEvents struct {
	events map[string]Booking
	nextID int

	insertErr error
	getErr    error
	updateErr error
	deleteErr error
	listErr   error

	inserted  []Booking
	updated   []Booking
	deleted   []string
	listLimit int
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{events: map[string]Booking{}}
}

func (e *fakeEvents) Insert(_ context.Context, _ Credential, draft Booking) (Booking, error) {
	if e.insertErr != nil {
		return Booking{}, e.insertErr
	}
	e.nextID++
	committed := draft
	committed.ID = "evt-" + strconv.Itoa(e.nextID)
	if draft.Conference != nil {
		committed.ConferenceLink = "https://meet.google.com/abc-defg-hij"
	}
	e.inserted = append(e.inserted, draft)
	e.events[committed.ID] = committed
	return committed, nil
}

func (e *fakeEvents) Get(_ context.Context, _ Credential, id string) (Booking, error) {
	if e.getErr != nil {
		return Booking{}, e.getErr
	}
	b, ok := e.events[id]
	if !ok {
		return Booking{}, apiError(http.StatusNotFound)
	}
	return b, nil
}

func (e *fakeEvents) Update(_ context.Context, _ Credential, id string, b Booking) (Booking, error) {
	if e.updateErr != nil {
		return Booking{}, e.updateErr
	}
	b.ID = id
	e.updated = append(e.updated, b)
	e.events[id] = b
	return b, nil
}

func (e *fakeEvents) Delete(_ context.Context, _ Credential, id string) error {
	if e.deleteErr != nil {
		return e.deleteErr
	}
	e.deleted = append(e.deleted, id)
	delete(e.events, id)
	return nil
}

func (e *fakeEvents) List(_ context.Context, _ Credential, window TimeWindow, limit int) ([]Booking, error) {
	e.listLimit = limit
	if e.listErr != nil {
		return nil, e.listErr
	}
	var out []Booking
	for _, b := range e.events {
		if b.Window.Start.Before(window.End) && b.Window.End.After(window.Start) {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b Booking) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

type fakeOwner struct {
	revoked []string
	err     error
}

func (o *fakeOwner) Revoke(_ context.Context, cred Credential) error {
	o.revoked = append(o.revoked, cred.Account())
	return o.err
}

// at returns 2024-05-06 hh:mm UTC.
func at(hh, mm int) time.Time {
	return time.Date(2024, 5, 6, hh, mm, 0, 0, time.UTC)
}

func window(fromH, fromM, toH, toM int) TimeWindow {
	return TimeWindow{Start: at(fromH, fromM), End: at(toH, toM), TimeZone: "UTC"}
}

var (
	roomA = Room{ID: "a", Email: "a@resource.calendar.google.com", Name: "HQ-3-Alpha (6)", Seats: 6, Floor: "3"}
	roomB = Room{ID: "b", Email: "b@resource.calendar.google.com", Name: "HQ-3-Beta (8)", Seats: 8, Floor: "3"}
	roomC = Room{ID: "c", Email: "c@resource.calendar.google.com", Name: "HQ-2-Gamma (4)", Seats: 4, Floor: "2"}
)

type fixture struct {
	directory *fakeDirectory
	freeBusy  *fakeFreeBusy
	events    *fakeEvents
	owner     *fakeOwner
	service   *Service
}

func newFixture(t *testing.T, rooms ...Room) *fixture {
	t.Helper()
	f := &fixture{
		directory: &fakeDirectory{rooms: rooms},
		freeBusy:  &fakeFreeBusy{busy: map[string][]BusyInterval{}},
		events:    newFakeEvents(),
		owner:     &fakeOwner{},
	}
	var n int
	svc, err := NewService(Dependencies{
		Directory:   f.directory,
		FreeBusy:    f.freeBusy,
		Events:      f.events,
		Credentials: f.owner,
	},
		WithConfig(Config{
			DefaultTitle:       DefaultTitle,
			Description:        DefaultDescription,
			ColorID:            DefaultColorID,
			EventPageSize:      DefaultEventPageSize,
			ResourceSuffix:     DefaultResourceSuffix,
			ConferenceSolution: DefaultConferenceSolution,
		}),
		WithLogger(logging.Discard()),
		WithNonceSource(func() string {
			n++
			return "nonce-" + strconv.Itoa(n)
		}),
	)
	require.NoError(t, err)
	f.service = svc
	return f
}

var testCred = NewCredential("alice@example.com")
