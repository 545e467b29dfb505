package booking

import (
	"context"

	"github.com/teemow/bookify/internal/logging"
)

// Resolver finds free rooms for a window.
type Resolver struct {
	directory RoomDirectory
	freeBusy  FreeBusyOracle
	guard     *AuthFailureGuard
	logger    logging.Logger
}

// NewResolver creates a Resolver.
func NewResolver(directory RoomDirectory, freeBusy FreeBusyOracle, guard *AuthFailureGuard, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	if guard == nil {
		guard = NewAuthFailureGuard(nil, logger, nil)
	}
	return &Resolver{
		directory: directory,
		freeBusy:  freeBusy,
		guard:     guard,
		logger:    logger,
	}
}

// FindAvailable returns the rooms of domain with at least minSeats seats on
// exactly floor (any floor when empty) that have no busy interval
// overlapping window, in directory order. An empty result is not an error.
//
// Rooms failing the seat or floor filter are never sent to the FreeBusyOracle.
// The oracle's answer is authoritative: a room the directory lists but the
// oracle does not report on is not returned.
func (r *Resolver) FindAvailable(ctx context.Context, cred Credential, domain string, window TimeWindow, minSeats int, floor string) ([]Room, error) {
	rooms, err := r.directory.Rooms(ctx, domain)
	if err != nil {
		return nil, r.directoryFailure(ctx, cred, err)
	}

	candidates := FilterRooms(rooms, minSeats, floor)
	if len(candidates) == 0 {
		r.logger.Debug("no room matches seat and floor filter",
			"domain", domain, "min_seats", minSeats, "floor", floor)
		return []Room{}, nil
	}

	emails := make([]string, len(candidates))
	for i, room := range candidates {
		emails[i] = room.Email
	}

	busy, err := r.freeBusy.QueryFreeBusy(ctx, cred, emails, window)
	if err != nil {
		return nil, r.classify(ctx, cred, err)
	}

	available := make([]Room, 0, len(candidates))
	for _, room := range candidates {
		intervals, ok := busy[room.Email]
		if !ok {
			continue
		}
		if isFree(window, intervals) {
			available = append(available, room)
		}
	}

	r.logger.Debug("resolved available rooms",
		"domain", domain, "candidates", len(candidates), "available", len(available))
	return available, nil
}

// classify maps a collaborator failure: insufficient scope leaves the
// credential alone, anything else is treated as an expired credential.
func (r *Resolver) classify(ctx context.Context, cred Credential, err error) *Error {
	if isForbidden(err) {
		return newError(KindForbidden, msgForbidden, err)
	}
	return r.guard.unauthorized(ctx, cred, err)
}

// directoryFailure maps a RoomDirectory failure. A directory reading with an
// account other than cred's fails with DirectoryUnavailable and revokes
// nothing. Otherwise the failure is classified like any provider failure.
func (r *Resolver) directoryFailure(ctx context.Context, cred Credential, err error) *Error {
	if owned, ok := r.directory.(DirectoryAccount); ok && owned.Account() != "" && owned.Account() != cred.Account() {
		r.logger.Warn("room directory failed", logging.Err(err))
		return newError(KindDirectoryUnavailable, msgDirectoryFailed, err)
	}
	return r.classify(ctx, cred, err)
}

// FilterRooms keeps rooms with seats >= minSeats on exactly floor. An empty
// floor places no floor constraint.
func FilterRooms(rooms []Room, minSeats int, floor string) []Room {
	out := make([]Room, 0, len(rooms))
	for _, room := range rooms {
		if room.Seats >= minSeats && (floor == "" || room.Floor == floor) {
			out = append(out, room)
		}
	}
	return out
}

func isFree(window TimeWindow, intervals []BusyInterval) bool {
	for _, busy := range intervals {
		if window.Overlaps(busy) {
			return false
		}
	}
	return true
}
