package booking

import "context"

// RoomDirectory lists the bookable rooms of a domain.
type RoomDirectory interface {
	Rooms(ctx context.Context, domain string) ([]Room, error)
	Floors(ctx context.Context, domain string) ([]string, error)
}

// DirectoryAccount is implemented by a RoomDirectory that reads with a fixed
// account of its own. Its failures only implicate a caller whose account is
// that account. An empty account means the caller's credential is used.
type DirectoryAccount interface {
	Account() string
}

// FreeBusyOracle reports busy intervals per room address. Rooms missing from
// the result are treated as unavailable.
type FreeBusyOracle interface {
	QueryFreeBusy(ctx context.Context, cred Credential, rooms []string, window TimeWindow) (map[string][]BusyInterval, error)
}

// EventStore is the provider's event collection for the credential's calendar.
// Errors carrying provider status codes must keep them reachable via
// errors.As(*googleapi.Error).
type EventStore interface {
	Insert(ctx context.Context, cred Credential, draft Booking) (Booking, error)
	Get(ctx context.Context, cred Credential, id string) (Booking, error)
	Update(ctx context.Context, cred Credential, id string, b Booking) (Booking, error)
	Delete(ctx context.Context, cred Credential, id string) error
	List(ctx context.Context, cred Credential, window TimeWindow, limit int) ([]Booking, error)
}

// CredentialOwner owns credentials and can forget them.
type CredentialOwner interface {
	Revoke(ctx context.Context, cred Credential) error
}
