package booking

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Create(t *testing.T) {
	f := newFixture(t, roomA, roomB, roomC)
	f.freeBusy.busy[roomA.Email] = []BusyInterval{{Start: at(10, 0), End: at(10, 30)}}

	result, err := f.service.Create(context.Background(), testCred, "example.com", BookingRequest{
		Window:    window(10, 0, 11, 0),
		MinSeats:  6,
		Floor:     "3",
		Title:     "  Planning  ",
		Attendees: []string{"bob@example.com"},
	})
	require.NoError(t, err)

	require.Len(t, f.events.inserted, 1)
	draft := f.events.inserted[0]
	assert.Equal(t, "Planning", draft.Title)
	assert.Equal(t, DefaultDescription, draft.Description)
	assert.Equal(t, DefaultColorID, draft.ColorID)
	assert.Equal(t, roomB.Name, draft.Location)
	assert.Equal(t, []string{"bob@example.com", roomB.Email}, draft.Attendees)
	assert.Nil(t, draft.Conference)

	assert.Equal(t, roomB, result.Room)
	assert.Equal(t, "Beta", result.RoomLabel)
	assert.Equal(t, []Room{roomB}, result.AvailableRooms)
	assert.NotEmpty(t, result.Booking.ID)
	assert.Empty(t, f.owner.revoked)
}

func TestService_Create_PicksFirstInDirectoryOrder(t *testing.T) {
	f := newFixture(t, roomA, roomB)

	result, err := f.service.Create(context.Background(), testCred, "example.com", BookingRequest{
		Window:   window(10, 0, 11, 0),
		MinSeats: 1,
		Floor:    "3",
	})
	require.NoError(t, err)
	assert.Equal(t, roomA, result.Room)
	assert.Equal(t, []Room{roomA, roomB}, result.AvailableRooms)
	assert.Equal(t, DefaultTitle, f.events.inserted[0].Title)
	assert.Equal(t, []string{roomA.Email}, f.events.inserted[0].Attendees)
}

func TestService_Create_ConferenceNonceIsFreshPerCall(t *testing.T) {
	f := newFixture(t, roomA)
	req := BookingRequest{Window: window(10, 0, 11, 0), MinSeats: 1, Floor: "3", WantConference: true}

	first, err := f.service.Create(context.Background(), testCred, "example.com", req)
	require.NoError(t, err)
	_, err = f.service.Create(context.Background(), testCred, "example.com", req)
	require.NoError(t, err)

	require.Len(t, f.events.inserted, 2)
	assert.Equal(t, &ConferenceRequest{RequestID: "nonce-1", SolutionKey: DefaultConferenceSolution}, f.events.inserted[0].Conference)
	assert.Equal(t, "nonce-2", f.events.inserted[1].Conference.RequestID)
	assert.Equal(t, "abc-defg-hij", first.Booking.ConferenceCode())
}

func TestService_Create_InvalidAttendeeCallsNothing(t *testing.T) {
	f := newFixture(t, roomA)

	_, err := f.service.Create(context.Background(), testCred, "example.com", BookingRequest{
		Window:    window(10, 0, 11, 0),
		MinSeats:  1,
		Floor:     "3",
		Attendees: []string{"bob@example.com", "not-an-address"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidAttendee))
	assert.Contains(t, err.Error(), "not-an-address")

	assert.Zero(t, f.directory.roomCalls)
	assert.Empty(t, f.freeBusy.queries)
	assert.Empty(t, f.events.inserted)
	assert.Empty(t, f.owner.revoked)
}

func TestService_Create_NoRoomAvailable(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), testCred, "example.com", BookingRequest{
		Window:   window(10, 0, 11, 0),
		MinSeats: 1,
		Floor:    "3",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoRoomAvailable))
	assert.Equal(t, "No room available within specified time range", err.Error())
	assert.Empty(t, f.events.inserted)
}

func TestService_Create_InsertFailures(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantKind    Kind
		wantRevoked bool
	}{
		{name: "unauthorized", err: apiError(http.StatusUnauthorized), wantKind: KindUnauthorized, wantRevoked: true},
		{name: "forbidden", err: apiError(http.StatusForbidden), wantKind: KindForbidden},
		{name: "conflict", err: apiError(http.StatusConflict), wantKind: KindBookingFailed},
		{name: "transport", err: errors.New("connection reset"), wantKind: KindBookingFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, roomA)
			f.events.insertErr = tt.err

			result, err := f.service.Create(context.Background(), testCred, "example.com", BookingRequest{
				Window:   window(10, 0, 11, 0),
				MinSeats: 1,
				Floor:    "3",
			})
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Equal(t, tt.wantKind, KindOf(err))
			assert.ErrorIs(t, err, tt.err)

			if tt.wantRevoked {
				assert.Equal(t, []string{testCred.Account()}, f.owner.revoked)
			} else {
				assert.Empty(t, f.owner.revoked)
			}
		})
	}
}

func TestService_ListForWindow(t *testing.T) {
	f := newFixture(t, roomA, roomB)
	f.events.events["evt-1"] = Booking{
		ID:             "evt-1",
		Title:          "Standup",
		Location:       roomB.Name,
		Window:         window(9, 0, 9, 15),
		ConferenceLink: "https://meet.google.com/xyz-abcd-efg",
	}
	f.events.events["evt-2"] = Booking{
		ID:       "evt-2",
		Title:    "Offsite",
		Location: "Somewhere else",
		Window:   window(10, 0, 11, 0),
	}
	f.events.events["evt-3"] = Booking{
		ID:       "evt-3",
		Title:    "Review",
		Location: roomA.Name + ", " + roomB.Name,
		Window:   window(13, 0, 14, 0),
	}
	f.events.events["evt-4"] = Booking{
		ID:       "evt-4",
		Title:    "Tomorrow",
		Location: roomA.Name,
		Window:   TimeWindow{Start: at(9, 0).Add(24 * time.Hour), End: at(10, 0).Add(24 * time.Hour)},
	}

	listed, err := f.service.ListForWindow(context.Background(), testCred, "example.com", window(0, 0, 23, 59))
	require.NoError(t, err)
	assert.Equal(t, DefaultEventPageSize, f.events.listLimit)
	assert.Equal(t, []RoomBooking{
		{ID: "evt-1", Title: "Standup", Room: roomB.Name, Seats: 8, Floor: "3", Start: at(9, 0), End: at(9, 15), Conference: "xyz-abcd-efg"},
		{ID: "evt-3", Title: "Review", Room: roomA.Name, Seats: 6, Floor: "3", Start: at(13, 0), End: at(14, 0)},
	}, listed)
}

func TestService_ListForWindow_Failure(t *testing.T) {
	f := newFixture(t, roomA)
	f.events.listErr = apiError(http.StatusUnauthorized)

	_, err := f.service.ListForWindow(context.Background(), testCred, "example.com", window(0, 0, 23, 59))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "Please log in again", err.Error())
	assert.Equal(t, []string{testCred.Account()}, f.owner.revoked)
}

func TestService_Update(t *testing.T) {
	f := newFixture(t, roomA, roomB)
	f.events.events["evt-1"] = Booking{
		ID:          "evt-1",
		Title:       "Planning",
		Description: DefaultDescription,
		Location:    roomA.Name,
		Window:      window(10, 0, 11, 0),
		Attendees:   []string{"bob@example.com", roomA.Email},
	}

	result, err := f.service.Update(context.Background(), testCred, "example.com", "evt-1", roomB.Email, 30*time.Minute)
	require.NoError(t, err)
	require.True(t, result.Updated)
	assert.Equal(t, roomB, *result.Room)
	assert.Equal(t, "Beta", result.RoomLabel)

	require.Len(t, f.events.updated, 1)
	body := f.events.updated[0]
	assert.Equal(t, roomB.Name, body.Location)
	assert.Equal(t, []string{"bob@example.com", roomB.Email}, body.Attendees)
	assert.Equal(t, "Planning", body.Title)
	assert.Equal(t, window(10, 0, 11, 0), body.Window)
	assert.Nil(t, body.Conference)

	// The availability check uses the booking's own window and the target room's profile.
	require.Len(t, f.freeBusy.windows, 1)
	assert.Equal(t, window(10, 0, 11, 0), f.freeBusy.windows[0])
	assert.Equal(t, []string{roomB.Email}, f.freeBusy.queries[0])
}

func TestService_Update_RoomUnavailable(t *testing.T) {
	roomD := Room{ID: "d", Email: "d@resource.calendar.google.com", Name: "HQ-3-Delta (10)", Seats: 10, Floor: "3"}
	f := newFixture(t, roomA, roomB, roomD)
	f.events.events["evt-1"] = Booking{
		ID:        "evt-1",
		Location:  roomA.Name,
		Window:    window(10, 0, 11, 0),
		Attendees: []string{roomA.Email},
	}
	f.freeBusy.busy[roomB.Email] = []BusyInterval{{Start: at(10, 0), End: at(10, 30)}}

	result, err := f.service.Update(context.Background(), testCred, "example.com", "evt-1", roomB.Email, 0)
	require.NoError(t, err)
	assert.False(t, result.Updated)
	assert.Equal(t, "Selected room is not available at the moment", result.Message)
	assert.Equal(t, []Room{roomD}, result.AvailableRooms)
	assert.Nil(t, result.Booking)

	assert.Empty(t, f.events.updated)
	assert.Equal(t, roomA.Name, f.events.events["evt-1"].Location)
}

func TestService_Update_RoomNotFound(t *testing.T) {
	f := newFixture(t, roomA)
	f.events.events["evt-1"] = Booking{ID: "evt-1", Window: window(10, 0, 11, 0)}

	_, err := f.service.Update(context.Background(), testCred, "example.com", "evt-1", "nowhere@resource.calendar.google.com", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRoomNotFound))
	assert.Empty(t, f.freeBusy.queries)
	assert.Empty(t, f.events.updated)
	assert.Empty(t, f.owner.revoked)
}

func TestService_Update_GetFailureRevokes(t *testing.T) {
	f := newFixture(t, roomA)

	_, err := f.service.Update(context.Background(), testCred, "example.com", "missing", roomA.Email, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, []string{testCred.Account()}, f.owner.revoked)
	assert.Zero(t, f.directory.roomCalls)
}

func TestService_Delete(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantKind    Kind
		wantRevoked bool
	}{
		{name: "deleted"},
		{name: "forbidden", err: apiError(http.StatusForbidden), wantKind: KindForbidden, wantRevoked: true},
		{name: "gone", err: apiError(http.StatusGone), wantKind: KindEventAlreadyDeleted},
		{name: "not found", err: apiError(http.StatusNotFound), wantKind: KindUnauthorized, wantRevoked: true},
		{name: "transport", err: errors.New("timeout"), wantKind: KindUnauthorized, wantRevoked: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, roomA)
			f.events.events["evt-1"] = Booking{ID: "evt-1"}
			f.events.deleteErr = tt.err

			result, err := f.service.Delete(context.Background(), testCred, "evt-1")
			if tt.wantKind == "" {
				require.NoError(t, err)
				assert.True(t, result.Deleted)
				assert.Equal(t, []string{"evt-1"}, f.events.deleted)
			} else {
				require.Error(t, err)
				assert.Nil(t, result)
				assert.Equal(t, tt.wantKind, KindOf(err))
			}

			if tt.wantRevoked {
				assert.Equal(t, []string{testCred.Account()}, f.owner.revoked)
			} else {
				assert.Empty(t, f.owner.revoked)
			}
		})
	}
}

func TestService_Delete_RevocationFailureKeepsKind(t *testing.T) {
	f := newFixture(t)
	f.events.deleteErr = apiError(http.StatusForbidden)
	f.owner.err = errors.New("revocation endpoint down")

	_, err := f.service.Delete(context.Background(), testCred, "evt-1")
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Equal(t, "Insufficient permissions provided. Please allow access to the calendar api during login.", err.Error())
}

func TestService_ListFloors(t *testing.T) {
	f := newFixture(t, roomA, roomC)

	floors, err := f.service.ListFloors(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2"}, floors)
}

func TestService_ListRooms(t *testing.T) {
	f := newFixture(t, roomB, roomA)

	rooms, err := f.service.ListRooms(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, []Room{roomB, roomA}, rooms)

	f.directory.err = errors.New("directory down")
	_, err = f.service.ListRooms(context.Background(), "example.com")
	require.Error(t, err)
	assert.Equal(t, KindDirectoryUnavailable, KindOf(err))
	assert.Empty(t, f.owner.revoked)

	_, err = f.service.ListFloors(context.Background(), "example.com")
	assert.True(t, errors.Is(err, ErrDirectoryUnavailable))
	assert.Empty(t, f.owner.revoked)
}

func TestService_SharedDirectoryFailureKeepsCallerCredential(t *testing.T) {
	f := newFixture(t, roomA, roomB)
	f.events.events["evt-1"] = Booking{ID: "evt-1", Window: window(10, 0, 11, 0), Location: roomA.Name}
	f.directory.account = "rooms-admin@example.com"
	f.directory.err = apiError(http.StatusUnauthorized)
	ctx := context.Background()

	_, err := f.service.Create(ctx, testCred, "example.com", BookingRequest{Window: window(10, 0, 11, 0), MinSeats: 1})
	assert.Equal(t, KindDirectoryUnavailable, KindOf(err))

	_, err = f.service.ListForWindow(ctx, testCred, "example.com", window(0, 0, 23, 59))
	assert.Equal(t, KindDirectoryUnavailable, KindOf(err))

	_, err = f.service.Update(ctx, testCred, "example.com", "evt-1", roomB.Email, 0)
	assert.Equal(t, KindDirectoryUnavailable, KindOf(err))

	_, err = f.service.FindAvailable(ctx, testCred, "example.com", window(10, 0, 11, 0), 1, "")
	assert.Equal(t, KindDirectoryUnavailable, KindOf(err))

	assert.Empty(t, f.owner.revoked)
}

func TestNewService_RequiresCollaborators(t *testing.T) {
	deps := Dependencies{
		Directory:   &fakeDirectory{},
		FreeBusy:    &fakeFreeBusy{},
		Events:      newFakeEvents(),
		Credentials: &fakeOwner{},
	}

	_, err := NewService(deps)
	require.NoError(t, err)

	for name, mutate := range map[string]func(*Dependencies){
		"directory":   func(d *Dependencies) { d.Directory = nil },
		"free/busy":   func(d *Dependencies) { d.FreeBusy = nil },
		"events":      func(d *Dependencies) { d.Events = nil },
		"credentials": func(d *Dependencies) { d.Credentials = nil },
	} {
		t.Run(name, func(t *testing.T) {
			broken := deps
			mutate(&broken)
			_, err := NewService(broken)
			require.Error(t, err)
		})
	}

	_, err = NewService(deps, WithConfig(Config{}))
	require.Error(t, err)
}
