package booking_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/bookify/internal/server"
	"github.com/teemow/bookify/internal/tools/common"
)

// RegisterRoomTools registers the read-only room tools
func RegisterRoomTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	findOpts := []mcp.ToolOption{
		mcp.WithDescription("Find meeting rooms that are free for the whole time window"),
		accountOption(),
		domainOption(),
	}
	findOpts = append(findOpts, windowOptions()...)
	findOpts = append(findOpts,
		mcp.WithNumber("minSeats",
			mcp.Description("Minimum number of seats (default: 0, any room)"),
		),
		mcp.WithString("floor",
			mcp.Description("Only rooms on this floor (exact match on the directory's floor label)"),
		),
	)
	findTool := mcp.NewTool("rooms_find_available", findOpts...)

	s.AddTool(findTool, common.InstrumentedToolHandler("rooms_find_available", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleFindAvailable(ctx, request, sc)
	}))

	floorsTool := mcp.NewTool("rooms_list_floors",
		mcp.WithDescription("List the distinct floor labels of a domain's meeting rooms"),
		domainOption(),
	)

	s.AddTool(floorsTool, common.InstrumentedToolHandler("rooms_list_floors", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListFloors(ctx, request, sc)
	}))

	return nil
}

func handleFindAvailable(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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
	floor := request.GetString("floor", "")

	rooms, err := scope.service.FindAvailable(ctx, scope.cred, scope.domain, window, minSeats, floor)
	if err != nil {
		return common.BookingErrorResult(err), nil
	}

	return common.JSONResult(map[string]any{
		"domain": scope.domain,
		"window": window,
		"count":  len(rooms),
		"rooms":  rooms,
	})
}

func handleListFloors(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	scope, err := resolveScope(ctx, request, sc, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	floors, err := scope.service.ListFloors(ctx, scope.domain)
	if err != nil {
		return common.BookingErrorResult(err), nil
	}

	return common.JSONResult(map[string]any{
		"domain": scope.domain,
		"floors": floors,
	})
}
