package booking

import (
	"context"
	"strings"
	"time"

	"github.com/teemow/bookify/internal/instrumentation"
	"github.com/teemow/bookify/internal/logging"
)

// Create books the first free room matching req.
//
// Attendees are validated before any collaborator is called. The picked room
// is appended to the attendee list last. When a conference link is wanted, a
// fresh request id is generated for every call.
func (s *Service) Create(ctx context.Context, cred Credential, domain string, req BookingRequest) (*CreateResult, error) {
	change := instrumentation.NewBookingChange(OperationCreate).
		WithAccount(cred.Account()).
		WithDomain(domain)

	var result *CreateResult
	err := s.observe(ctx, OperationCreate, cred, func(ctx context.Context) error {
		if err := ValidateAttendees(req.Attendees); err != nil {
			return err
		}

		rooms, err := s.resolver.FindAvailable(ctx, cred, domain, req.Window, req.MinSeats, req.Floor)
		if err != nil {
			return err
		}
		if len(rooms) == 0 {
			return newError(KindNoRoomAvailable, msgNoRoomAvailable, nil)
		}

		// First match wins; no ranking by how close the capacity is.
		picked := rooms[0]
		change.WithRoom(picked.Email)

		committed, err := s.events.Insert(ctx, cred, s.compose(req, picked))
		if err != nil {
			return s.insertFailure(ctx, cred, err)
		}
		change.WithBooking(committed.ID)

		s.logger.Info("room has been booked",
			logging.Operation(OperationCreate),
			"booking_id", committed.ID,
			"room", picked.Email,
			"available_rooms", len(rooms))

		result = &CreateResult{
			Booking:        committed,
			Room:           picked,
			RoomLabel:      ParseLocation(committed.Location),
			AvailableRooms: rooms,
		}
		return nil
	})
	s.recordChange(ctx, change, err)
	return result, err
}

// compose builds the event draft for req in room.
func (s *Service) compose(req BookingRequest, room Room) Booking {
	attendees := make([]string, 0, len(req.Attendees)+1)
	attendees = append(attendees, req.Attendees...)
	attendees = append(attendees, room.Email)

	draft := Booking{
		Title:       ComposeTitle(req.Title, s.config.DefaultTitle),
		Description: s.config.Description,
		Location:    room.Name,
		ColorID:     s.config.ColorID,
		Window:      req.Window,
		Attendees:   attendees,
	}
	if req.WantConference {
		draft.Conference = &ConferenceRequest{
			RequestID:   s.newNonce(),
			SolutionKey: s.config.ConferenceSolution,
		}
	}
	return draft
}

// insertFailure maps an insert error. A rejected credential goes through the
// guard, missing scope is Forbidden, everything else is a retryable conflict.
func (s *Service) insertFailure(ctx context.Context, cred Credential, err error) error {
	switch {
	case isUnauthorized(err):
		return s.guard.unauthorized(ctx, cred, err)
	case isForbidden(err):
		return newError(KindForbidden, msgForbidden, err)
	default:
		s.logger.Warn("failed to insert booking", logging.Err(err))
		return newError(KindBookingFailed, msgBookingFailed, err)
	}
}

// ListForWindow lists the first page of events in window and projects the
// room each event occupies. Events whose location matches no room of domain
// are skipped and logged.
func (s *Service) ListForWindow(ctx context.Context, cred Credential, domain string, window TimeWindow) ([]RoomBooking, error) {
	var listed []RoomBooking
	err := s.observe(ctx, OperationList, cred, func(ctx context.Context) error {
		events, err := s.events.List(ctx, cred, window, s.config.EventPageSize)
		if err != nil {
			return s.guard.unauthorized(ctx, cred, err)
		}

		rooms, err := s.directory.Rooms(ctx, domain)
		if err != nil {
			return s.resolver.directoryFailure(ctx, cred, err)
		}

		listed = make([]RoomBooking, 0, len(events))
		for _, event := range events {
			room, ok := matchLocation(rooms, event.Location)
			if !ok {
				s.logger.Warn("skipping event with unknown room",
					"booking_id", event.ID, "location", event.Location)
				continue
			}
			listed = append(listed, RoomBooking{
				ID:         event.ID,
				Title:      event.Title,
				Room:       room.Name,
				Seats:      room.Seats,
				Floor:      room.Floor,
				Start:      event.Window.Start,
				End:        event.Window.End,
				Conference: event.ConferenceCode(),
			})
		}
		return nil
	})
	return listed, err
}

// matchLocation returns the first room whose name occurs in location.
func matchLocation(rooms []Room, location string) (Room, bool) {
	if location == "" {
		return Room{}, false
	}
	for _, room := range rooms {
		if room.Name != "" && strings.Contains(location, room.Name) {
			return room, true
		}
	}
	return Room{}, false
}

// Update moves booking id to the room addressed by roomEmail.
//
// The new room is re-checked for the existing booking's window using its own
// seat count and floor. If it is not free, the booking is left untouched and
// a non-error result lists the rooms that are. Otherwise every resource
// attendee is replaced by the new room and the rest of the event is kept.
// duration is accepted for callers that send it; the window never changes.
func (s *Service) Update(ctx context.Context, cred Credential, domain, id, roomEmail string, duration time.Duration) (*UpdateResult, error) {
	change := instrumentation.NewBookingChange(OperationUpdate).
		WithAccount(cred.Account()).
		WithDomain(domain).
		WithBooking(id).
		WithRoom(roomEmail)

	var result *UpdateResult
	err := s.observe(ctx, OperationUpdate, cred, func(ctx context.Context) error {
		existing, err := s.events.Get(ctx, cred, id)
		if err != nil {
			return s.guard.unauthorized(ctx, cred, err)
		}

		rooms, err := s.directory.Rooms(ctx, domain)
		if err != nil {
			return s.resolver.directoryFailure(ctx, cred, err)
		}
		room, ok := findRoom(rooms, roomEmail)
		if !ok {
			return newError(KindRoomNotFound, msgRoomNotFound, nil)
		}

		available, err := s.resolver.FindAvailable(ctx, cred, domain, existing.Window, room.Seats, room.Floor)
		if err != nil {
			return err
		}
		if _, free := findRoom(available, room.Email); !free {
			s.logger.Info("requested room is not available",
				"booking_id", id, "room", room.Email, "available_rooms", len(available))
			result = &UpdateResult{
				Updated:        false,
				Message:        msgRoomUnavailable,
				AvailableRooms: available,
			}
			return nil
		}

		body := existing
		body.Conference = nil
		body.Location = room.Name
		body.Attendees = append(WithoutResources(existing.Attendees, s.config.ResourceSuffix), room.Email)

		committed, err := s.events.Update(ctx, cred, id, body)
		if err != nil {
			return s.guard.unauthorized(ctx, cred, err)
		}

		s.logger.Info("room has been updated",
			logging.Operation(OperationUpdate),
			"booking_id", committed.ID,
			"room", room.Email,
			"requested_duration", duration)

		result = &UpdateResult{
			Updated:   true,
			Booking:   &committed,
			Room:      &room,
			RoomLabel: ParseLocation(committed.Location),
		}
		return nil
	})
	s.recordChange(ctx, change, err)
	return result, err
}

// findRoom looks a room up by address, ignoring case.
func findRoom(rooms []Room, email string) (Room, bool) {
	for _, room := range rooms {
		if strings.EqualFold(room.Email, email) {
			return room, true
		}
	}
	return Room{}, false
}

// Delete removes booking id.
//
// A missing permission revokes the credential and fails with Forbidden. An
// event that is already gone fails with EventAlreadyDeleted and leaves the
// credential alone. Anything else revokes the credential and fails with
// Unauthorized.
func (s *Service) Delete(ctx context.Context, cred Credential, id string) (*DeleteResult, error) {
	change := instrumentation.NewBookingChange(OperationDelete).
		WithAccount(cred.Account()).
		WithBooking(id)

	var result *DeleteResult
	err := s.observe(ctx, OperationDelete, cred, func(ctx context.Context) error {
		err := s.events.Delete(ctx, cred, id)
		switch {
		case err == nil:
			result = &DeleteResult{Deleted: true}
			s.logger.Info("booking deleted", logging.Operation(OperationDelete), "booking_id", id)
			return nil
		case isForbidden(err):
			s.guard.OnAuthFailure(ctx, cred, instrumentation.RevocationReasonForbidden)
			return newError(KindForbidden, msgForbidden, err)
		case isGone(err):
			return newError(KindEventAlreadyDeleted, msgEventAlreadyDeleted, err)
		default:
			return s.guard.unauthorized(ctx, cred, err)
		}
	})
	s.recordChange(ctx, change, err)
	return result, err
}
