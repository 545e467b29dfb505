// Package booking_tools exposes meeting-room availability and the booking
// lifecycle as MCP tools.
//
// Read tools (always registered):
//   - rooms_find_available: free rooms for a window, seat minimum and floor
//   - rooms_list_floors: floor labels of a domain
//   - bookings_list: the caller's bookings in a window with their rooms
//
// Write tools (registered only with --yolo):
//   - bookings_create: book the first free matching room
//   - bookings_update: move a booking to another room
//   - bookings_delete: delete one or more bookings
//
// Booking failures are returned as tool errors whose text is a JSON object
// with the failure kind, an HTTP status and the user-facing message.
package booking_tools
