package booking_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/bookify/internal/booking"
	"github.com/teemow/bookify/internal/server"
	"github.com/teemow/bookify/internal/tools/common"
)

// RegisterBookingTools registers all room and booking tools with the MCP server
func RegisterBookingTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterRoomTools(s, sc); err != nil {
		return fmt.Errorf("failed to register room tools: %w", err)
	}
	if err := RegisterLifecycleTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register booking lifecycle tools: %w", err)
	}
	return nil
}

func accountOption() mcp.ToolOption {
	return mcp.WithString("account",
		mcp.Description("Account name (default: the server's default account). The account's Google grant is used for the call."),
	)
}

func domainOption() mcp.ToolOption {
	return mcp.WithString("domain",
		mcp.Description("Google Workspace domain whose rooms are used (default: the server's domain)"),
	)
}

func windowOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Start time (RFC3339 format, e.g., '2025-01-15T14:00:00+01:00')"),
		),
		mcp.WithString("end",
			mcp.Description("End time (RFC3339 format). Either end or durationMinutes is required."),
		),
		mcp.WithNumber("durationMinutes",
			mcp.Description("Length of the window in minutes, used when end is not given"),
		),
		mcp.WithString("timeZone",
			mcp.Description("IANA time zone the window is expressed in (e.g., 'Europe/Berlin'). Defaults to UTC."),
		),
	}
}

// requestScope holds what every booking tool resolves before calling the service.
type requestScope struct {
	service *booking.Service
	cred    booking.Credential
	domain  string
}

func resolveScope(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, needDomain bool) (*requestScope, error) {
	service, err := sc.Service()
	if err != nil {
		return nil, err
	}

	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args, sc.DefaultAccount())
	scope := &requestScope{
		service: service,
		cred:    booking.NewCredential(account),
	}

	if needDomain {
		scope.domain, err = domainFromArgs(args, sc.Domain())
		if err != nil {
			return nil, err
		}
	}
	return scope, nil
}

func domainFromArgs(args map[string]interface{}, fallback string) (string, error) {
	if d, ok := args["domain"].(string); ok && strings.TrimSpace(d) != "" {
		return strings.TrimSpace(d), nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("domain is required (no default domain configured)")
}

// parseWindow reads start, end or durationMinutes, and timeZone.
func parseWindow(request mcp.CallToolRequest) (booking.TimeWindow, error) {
	startStr, err := request.RequireString("start")
	if err != nil {
		return booking.TimeWindow{}, err
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return booking.TimeWindow{}, fmt.Errorf("invalid start format: %w", err)
	}

	var end time.Time
	if endStr := request.GetString("end", ""); endStr != "" {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			return booking.TimeWindow{}, fmt.Errorf("invalid end format: %w", err)
		}
	} else if minutes := request.GetInt("durationMinutes", 0); minutes > 0 {
		end = start.Add(time.Duration(minutes) * time.Minute)
	} else {
		return booking.TimeWindow{}, fmt.Errorf("either end or durationMinutes is required")
	}

	if !end.After(start) {
		return booking.TimeWindow{}, fmt.Errorf("end must be after start")
	}

	tz := request.GetString("timeZone", "UTC")
	if _, err := time.LoadLocation(tz); err != nil {
		return booking.TimeWindow{}, fmt.Errorf("invalid timeZone %q: %w", tz, err)
	}

	return booking.TimeWindow{Start: start, End: end, TimeZone: tz}, nil
}
