package booking

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Kind classifies a booking failure.
type Kind string

const (
	KindInvalidAttendee     Kind = "invalid_attendee"
	KindNoRoomAvailable     Kind = "no_room_available"
	KindBookingFailed       Kind = "booking_failed"
	KindRoomNotFound        Kind = "room_not_found"
	KindForbidden           Kind = "forbidden"
	KindUnauthorized        Kind = "unauthorized"
	KindEventAlreadyDeleted Kind = "event_already_deleted"

	// KindDirectoryUnavailable is a room directory failure that does not
	// implicate the caller's credential.
	KindDirectoryUnavailable Kind = "directory_unavailable"
)

// HTTPStatus maps the kind onto the status code a transport should use.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidAttendee:
		return http.StatusBadRequest
	case KindNoRoomAvailable, KindBookingFailed:
		return http.StatusConflict
	case KindRoomNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindEventAlreadyDeleted:
		return http.StatusGone
	case KindDirectoryUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// User-facing messages, one per kind.
const (
	msgNoRoomAvailable     = "No room available within specified time range"
	msgBookingFailed       = "Couldn't book room. Please try again later."
	msgRoomNotFound        = "Room not found."
	msgForbidden           = "Insufficient permissions provided. Please allow access to the calendar api during login."
	msgUnauthorized        = "Please log in again"
	msgEventAlreadyDeleted = "Event has already been deleted"
	msgRoomUnavailable     = "Selected room is not available at the moment"
	msgDirectoryFailed     = "Couldn't load the room directory. Please try again later."
)

// Error is the only error type returned by booking operations.
type Error struct {
	Kind    Kind
	Message string
	Err     error // collaborator error, if any
}

// Error implements the error interface. Only the stable message is included;
// the collaborator error is reachable through Unwrap.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

// Unwrap returns the underlying collaborator error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so callers can compare against the
// sentinel values below with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidAttendee     = &Error{Kind: KindInvalidAttendee}
	ErrNoRoomAvailable     = &Error{Kind: KindNoRoomAvailable}
	ErrBookingFailed       = &Error{Kind: KindBookingFailed}
	ErrRoomNotFound        = &Error{Kind: KindRoomNotFound}
	ErrForbidden           = &Error{Kind: KindForbidden}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized}
	ErrEventAlreadyDeleted = &Error{Kind: KindEventAlreadyDeleted}

	ErrDirectoryUnavailable = &Error{Kind: KindDirectoryUnavailable}
)

// KindOf returns the kind of a booking error, or "" for anything else.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func invalidAttendee(address string) *Error {
	return newError(KindInvalidAttendee, fmt.Sprintf("Invalid attendee email provided: %s", address), nil)
}

// statusCode extracts the provider status code from err, or 0.
func statusCode(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}

func isForbidden(err error) bool {
	return statusCode(err) == http.StatusForbidden
}

func isGone(err error) bool {
	return statusCode(err) == http.StatusGone
}

// isUnauthorized reports a hard authentication failure from the provider.
func isUnauthorized(err error) bool {
	return statusCode(err) == http.StatusUnauthorized
}
