// Package booking resolves meeting-room availability and manages the lifecycle
// of room bookings against an external calendar provider.
//
// The package owns no storage. Rooms come from a RoomDirectory, busy windows
// from a FreeBusyOracle and bookings live in an EventStore; all three are
// collaborators supplied by the caller (see internal/calendar and
// internal/directory for the Google implementations).
//
// # Operations
//
//   - Resolver.FindAvailable filters rooms by seats and floor, queries busy
//     intervals for the survivors and returns the free ones in directory order.
//   - Service.Create validates attendees, picks the first free room and inserts
//     the event.
//   - Service.ListForWindow lists events and projects the room each one uses.
//   - Service.Update moves an existing booking to another room after
//     re-checking that room for the booking's window.
//   - Service.Delete removes a booking, telling an already-deleted event apart
//     from a permission or credential failure.
//
// # Failures
//
// Every failure surfaces as a *Error carrying one Kind. Collaborator errors are
// classified exactly once per operation. When the credential is treated as
// expired, the AuthFailureGuard asks the CredentialOwner to revoke it before
// the error is returned; the core never retries.
//
// A Service holds no mutable state, so operations may run concurrently. Two
// callers racing for the same room and window can both succeed; the provider
// decides what happens to the second event.
package booking
