// Package logging provides structured logging utilities for bookify.
//
// Logging is built on the standard library's slog package. This package
// adds consistent attribute names, PII-safe helpers and a small Logger
// interface that the booking core depends on instead of *slog.Logger.
//
// # Usage Patterns
//
// Build the process logger once from configuration:
//
//	logger, err := logging.New(os.Stderr, "info", "json")
//
// Attach booking attributes:
//
//	logger.Info("room has been booked",
//	    logging.Operation("create"),
//	    logging.BookingID(id),
//	    logging.Room(room.Email))
//
// Never log a raw account address or token:
//
//	logger.Info("credential revoked", logging.UserHash(account))
package logging
