package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestGetCategoryFromToolName(t *testing.T) {
	tests := map[string]string{
		"rooms_find_available": "Room Tools",
		"bookings_create":      "Booking Tools",
		"google_get_auth_url":  "Google Account Tools",
		"something_else":       "Other",
	}

	for name, want := range tests {
		if got := getCategoryFromToolName(name); got != want {
			t.Errorf("getCategoryFromToolName(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestGenerateToolMarkdown(t *testing.T) {
	tool := mcp.NewTool("bookings_update",
		mcp.WithDescription("Move a booking to another room"),
		mcp.WithString("bookingId", mcp.Required(), mcp.Description("ID of the booking")),
		mcp.WithString("account", mcp.Description("Account name")),
	)

	md := generateToolMarkdown(tool)

	for _, want := range []string{
		"### bookings_update",
		"Move a booking to another room",
		"*Write operation: available with `--yolo` only.*",
		"- `bookingId` (string, required): ID of the booking",
		"- `account` (string, optional): Account name",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestToolsReference(t *testing.T) {
	md, err := toolsReference(context.Background())
	if err != nil {
		t.Fatalf("toolsReference() error = %v", err)
	}

	for _, want := range []string{
		"## Booking Tools",
		"## Room Tools",
		"### bookings_delete",
		"### rooms_find_available",
		"### google_revoke_access",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("reference missing %q", want)
		}
	}

	if strings.Index(md, "## Room Tools") > strings.Index(md, "## Booking Tools") {
		t.Error("room tools should be listed before booking tools")
	}
}
