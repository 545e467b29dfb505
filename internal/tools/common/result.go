package common

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/bookify/internal/booking"
)

// JSONResult renders v as an indented JSON text result.
func JSONResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ErrorPayload is the body of a failed booking tool call.
type ErrorPayload struct {
	Kind    string `json:"kind"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// BookingErrorResult turns a booking error into a tool error result carrying
// its kind, status and user-facing message. Other errors become a plain
// error result.
func BookingErrorResult(err error) *mcp.CallToolResult {
	var be *booking.Error
	if !errors.As(err, &be) {
		return mcp.NewToolResultError(err.Error())
	}
	data, _ := json.Marshal(ErrorPayload{
		Kind:    string(be.Kind),
		Status:  be.Kind.HTTPStatus(),
		Message: be.Error(),
	})
	return mcp.NewToolResultError(string(data))
}
