// Package calendar adapts the Google Calendar v3 API to the booking core.
//
// Client wraps a calendar.Service authorized for one account and speaks in
// booking types. Gateway implements booking.FreeBusyOracle and
// booking.EventStore by building a Client for the credential's account on
// every call, so no API state outlives a single booking operation.
//
// Provider errors are wrapped with %w; the *googleapi.Error stays reachable
// for the core's status-code classification.
//
// Example usage:
//
//	gw := calendar.NewGateway(tokens, calendar.Config{CalendarID: "primary"}, metrics)
//	busy, err := gw.QueryFreeBusy(ctx, booking.NewCredential("jane@example.com"), rooms, window)
package calendar
