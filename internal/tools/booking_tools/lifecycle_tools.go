package booking_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/bookify/internal/booking"
	"github.com/teemow/bookify/internal/server"
	"github.com/teemow/bookify/internal/tools/batch"
	"github.com/teemow/bookify/internal/tools/common"
)

// RegisterLifecycleTools registers the booking tools. bookings_list is always
// available; the mutating tools only when readOnly is false.
func RegisterLifecycleTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listOpts := []mcp.ToolOption{
		mcp.WithDescription("List the caller's room bookings in a time window"),
		accountOption(),
		domainOption(),
	}
	listOpts = append(listOpts, windowOptions()...)
	listTool := mcp.NewTool("bookings_list", listOpts...)

	s.AddTool(listTool, common.InstrumentedToolHandler("bookings_list", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListBookings(ctx, request, sc)
	}))

	if readOnly {
		return nil
	}

	createOpts := []mcp.ToolOption{
		mcp.WithDescription("Book the first free meeting room that matches the seat and floor constraints"),
		accountOption(),
		domainOption(),
	}
	createOpts = append(createOpts, windowOptions()...)
	createOpts = append(createOpts,
		mcp.WithNumber("minSeats",
			mcp.Description("Minimum number of seats (default: 0, any room)"),
		),
		mcp.WithString("floor",
			mcp.Description("Only rooms on this floor"),
		),
		mcp.WithString("title",
			mcp.Description("Event title (default: the server's default title)"),
		),
		mcp.WithString("attendees",
			mcp.Description("Attendee email addresses: a comma-separated string or a JSON array"),
		),
		mcp.WithBoolean("conference",
			mcp.Description("Attach a Google Meet link to the booking (default: false)"),
		),
	)
	createTool := mcp.NewTool("bookings_create", createOpts...)

	s.AddTool(createTool, common.InstrumentedToolHandler("bookings_create", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCreateBooking(ctx, request, sc)
	}))

	updateTool := mcp.NewTool("bookings_update",
		mcp.WithDescription("Move an existing booking to another room. The booking keeps its time; if the room is busy the available rooms are returned instead."),
		accountOption(),
		domainOption(),
		mcp.WithString("bookingId",
			mcp.Required(),
			mcp.Description("ID of the booking to move"),
		),
		mcp.WithString("roomEmail",
			mcp.Required(),
			mcp.Description("Resource email of the target room"),
		),
		mcp.WithNumber("durationMinutes",
			mcp.Description("Accepted for compatibility; the booking's duration is not changed"),
		),
	)

	s.AddTool(updateTool, common.InstrumentedToolHandler("bookings_update", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleUpdateBooking(ctx, request, sc)
	}))

	deleteTool := mcp.NewTool("bookings_delete",
		mcp.WithDescription("Delete one or more bookings"),
		accountOption(),
		mcp.WithString("bookingIds",
			mcp.Required(),
			mcp.Description("Booking ID or JSON array of booking IDs"),
		),
	)

	s.AddTool(deleteTool, common.InstrumentedToolHandler("bookings_delete", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleDeleteBookings(ctx, request, sc)
	}))

	return nil
}

func handleListBookings(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	scope, err := resolveScope(ctx, request, sc, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	window, err := parseWindow(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	bookings, err := scope.service.ListForWindow(ctx, scope.cred, scope.domain, window)
	if err != nil {
		return common.BookingErrorResult(err), nil
	}

	return common.JSONResult(map[string]any{
		"window":   window,
		"count":    len(bookings),
		"bookings": bookings,
	})
}

func handleCreateBooking(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	scope, err := resolveScope(ctx, request, sc, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	window, err := parseWindow(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	minSeats := request.GetInt("minSeats", 0)
	if minSeats < 0 {
		return mcp.NewToolResultError("minSeats must not be negative"), nil
	}

	attendees, err := batch.ParseList(request.GetArguments()["attendees"], "attendees")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := booking.BookingRequest{
		Window:         window,
		MinSeats:       minSeats,
		Floor:          request.GetString("floor", ""),
		Title:          request.GetString("title", ""),
		Attendees:      attendees,
		WantConference: request.GetBool("conference", false),
	}

	result, err := scope.service.Create(ctx, scope.cred, scope.domain, req)
	if err != nil {
		return common.BookingErrorResult(err), nil
	}

	return common.JSONResult(result)
}

func handleUpdateBooking(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	scope, err := resolveScope(ctx, request, sc, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	bookingID, err := request.RequireString("bookingId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	roomEmail, err := request.RequireString("roomEmail")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	duration := time.Duration(request.GetInt("durationMinutes", 0)) * time.Minute

	result, err := scope.service.Update(ctx, scope.cred, scope.domain, bookingID, roomEmail, duration)
	if err != nil {
		return common.BookingErrorResult(err), nil
	}

	return common.JSONResult(result)
}

func handleDeleteBookings(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	scope, err := resolveScope(ctx, request, sc, false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ids, err := batch.ParseStringOrArray(request.GetArguments()["bookingIds"], "bookingIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(ids) == 1 {
		result, err := scope.service.Delete(ctx, scope.cred, ids[0])
		if err != nil {
			return common.BookingErrorResult(err), nil
		}
		return common.JSONResult(result)
	}

	results := batch.Process(ctx, ids, func(ctx context.Context, id string) (string, error) {
		if _, err := scope.service.Delete(ctx, scope.cred, id); err != nil {
			return "", err
		}
		return fmt.Sprintf("booking %s deleted", id), nil
	}, credentialRevoked)

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

// credentialRevoked reports whether err left the caller without a usable grant.
func credentialRevoked(err error) bool {
	switch booking.KindOf(err) {
	case booking.KindUnauthorized, booking.KindForbidden:
		return true
	}
	return false
}
