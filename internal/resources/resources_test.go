package resources

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"

	"github.com/teemow/bookify/internal/booking"
	"github.com/teemow/bookify/internal/google"
	"github.com/teemow/bookify/internal/logging"
	"github.com/teemow/bookify/internal/server"
)

type staticDirectory struct{}

func (staticDirectory) Rooms(context.Context, string) ([]booking.Room, error) {
	return []booking.Room{
		{ID: "a", Email: "a@resource.calendar.google.com", Name: "HQ-3-Alpha (6)", Seats: 6, Floor: "3"},
	}, nil
}

func (staticDirectory) Floors(context.Context, string) ([]string, error) {
	return []string{"3"}, nil
}

type nopFreeBusy struct{}

func (nopFreeBusy) QueryFreeBusy(context.Context, booking.Credential, []string, booking.TimeWindow) (map[string][]booking.BusyInterval, error) {
	return nil, nil
}

type nopEvents struct{}

func (nopEvents) Insert(context.Context, booking.Credential, booking.Booking) (booking.Booking, error) {
	return booking.Booking{}, nil
}
func (nopEvents) Get(context.Context, booking.Credential, string) (booking.Booking, error) {
	return booking.Booking{}, nil
}
func (nopEvents) Update(context.Context, booking.Credential, string, booking.Booking) (booking.Booking, error) {
	return booking.Booking{}, nil
}
func (nopEvents) Delete(context.Context, booking.Credential, string) error { return nil }
func (nopEvents) List(context.Context, booking.Credential, booking.TimeWindow, int) ([]booking.Booking, error) {
	return nil, nil
}

type nopOwner struct{}

func (nopOwner) Revoke(context.Context, booking.Credential) error { return nil }

func newTestServerContext(t *testing.T, store google.TokenStore) *server.ServerContext {
	t.Helper()

	svc, err := booking.NewService(booking.Dependencies{
		Directory:   staticDirectory{},
		FreeBusy:    nopFreeBusy{},
		Events:      nopEvents{},
		Credentials: nopOwner{},
	}, booking.WithLogger(logging.Discard()))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	sc, err := server.NewServerContext(context.Background(), server.Options{
		Service:    svc,
		TokenStore: store,
		Domain:     "example.com",
		Logger:     logging.Discard(),
	})
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func readRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: uri},
	}
}

func decode(t *testing.T, contents []mcp.ResourceContents) map[string]interface{} {
	t.Helper()
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	text, ok := contents[0].(*mcp.TextResourceContents)
	if !ok {
		t.Fatalf("content is %T, want *mcp.TextResourceContents", contents[0])
	}
	if text.MIMEType != "application/json" {
		t.Errorf("MIMEType = %s, want application/json", text.MIMEType)
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(text.Text), &data); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	return data
}

func TestRegisterResources(t *testing.T) {
	sc := newTestServerContext(t, google.NewMemoryTokenStore())
	mcpSrv := mcpserver.NewMCPServer("test-server", "1.0.0",
		mcpserver.WithResourceCapabilities(true, true),
	)

	if err := RegisterResources(mcpSrv, sc); err != nil {
		t.Fatalf("RegisterResources() error = %v", err)
	}
}

func TestDomainFromURI(t *testing.T) {
	tests := []struct {
		uri     string
		leaf    string
		want    string
		wantErr bool
	}{
		{uri: "bookify://domains/example.com/rooms", leaf: "rooms", want: "example.com"},
		{uri: "bookify://domains/example.com/floors", leaf: "floors", want: "example.com"},
		{uri: "bookify://domains/example.com/floors", leaf: "rooms", wantErr: true},
		{uri: "bookify://domains//rooms", leaf: "rooms", wantErr: true},
		{uri: "bookify://domains/a/b/rooms", leaf: "rooms", wantErr: true},
		{uri: "user://profile", leaf: "rooms", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := domainFromURI(tt.uri, tt.leaf)
			if (err != nil) != tt.wantErr {
				t.Fatalf("domainFromURI() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("domainFromURI() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandleAccount(t *testing.T) {
	store := google.NewMemoryTokenStore()
	if err := store.Save(context.Background(), "work", &oauth2.Token{AccessToken: "at"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	sc := newTestServerContext(t, store)

	contents, err := handleAccount(context.Background(), readRequest(accountURI), sc)
	if err != nil {
		t.Fatalf("handleAccount() error = %v", err)
	}
	data := decode(t, contents)
	if data["account"] != "default" || data["authorized"] != false {
		t.Errorf("default account = %v", data)
	}

	ctx := server.ContextWithAccount(context.Background(), "work")
	contents, err = handleAccount(ctx, readRequest(accountURI), sc)
	if err != nil {
		t.Fatalf("handleAccount() error = %v", err)
	}
	data = decode(t, contents)
	if data["account"] != "work" || data["authorized"] != true {
		t.Errorf("header account = %v", data)
	}
}

func TestHandleConfig(t *testing.T) {
	sc := newTestServerContext(t, google.NewMemoryTokenStore())

	contents, err := handleConfig(context.Background(), readRequest(configURI), sc)
	if err != nil {
		t.Fatalf("handleConfig() error = %v", err)
	}
	data := decode(t, contents)
	if data["domain"] != "example.com" {
		t.Errorf("domain = %v, want example.com", data["domain"])
	}
	if data["eventPageSize"] != float64(booking.DefaultEventPageSize) {
		t.Errorf("eventPageSize = %v, want %d", data["eventPageSize"], booking.DefaultEventPageSize)
	}
}

func TestHandleRoomsAndFloors(t *testing.T) {
	sc := newTestServerContext(t, google.NewMemoryTokenStore())

	contents, err := handleRooms(context.Background(), readRequest("bookify://domains/example.com/rooms"), sc)
	if err != nil {
		t.Fatalf("handleRooms() error = %v", err)
	}
	data := decode(t, contents)
	if data["count"] != float64(1) {
		t.Errorf("count = %v, want 1", data["count"])
	}

	contents, err = handleFloors(context.Background(), readRequest("bookify://domains/example.com/floors"), sc)
	if err != nil {
		t.Fatalf("handleFloors() error = %v", err)
	}
	data = decode(t, contents)
	floors, ok := data["floors"].([]interface{})
	if !ok || len(floors) != 1 || floors[0] != "3" {
		t.Errorf("floors = %v, want [3]", data["floors"])
	}

	if _, err := handleRooms(context.Background(), readRequest("bookify://domains//rooms"), sc); err == nil {
		t.Error("expected error for URI without domain")
	}
}

func TestTraced_PropagatesErrors(t *testing.T) {
	sc := newTestServerContext(t, google.NewMemoryTokenStore())

	failing := func(context.Context, mcp.ReadResourceRequest, *server.ServerContext) ([]mcp.ResourceContents, error) {
		return nil, errors.New("directory unavailable")
	}

	contents, err := traced(sc, failing)(context.Background(), readRequest(roomsTemplate))
	if err == nil || contents != nil {
		t.Fatalf("traced() = %v, %v; want nil and the handler error", contents, err)
	}
}
