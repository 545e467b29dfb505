package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/bookify/internal/google"
	"github.com/teemow/bookify/internal/logging"
	"github.com/teemow/bookify/internal/server"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate the markdown reference of every MCP tool bookify registers,
write operations included. The reference is rendered from the tool
definitions themselves.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(cmd, outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(cmd *cobra.Command, outputFile string) error {
	markdown, err := toolsReference(cmd.Context())
	if err != nil {
		return err
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
		return nil
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), markdown)
	return err
}

// toolsReference registers every tool, including write operations, on a
// throwaway server and renders them as markdown.
func toolsReference(ctx context.Context) (string, error) {
	// No service or credentials are needed to introspect tool definitions
	serverContext, err := server.NewServerContext(ctx, server.Options{
		TokenStore: google.NewMemoryTokenStore(),
		Logger:     logging.Discard(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("bookify", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(true, true),
	)

	if err := registerAllTools(mcpSrv, serverContext, false); err != nil {
		return "", err
	}

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}

	return generateToolsMarkdown(tools), nil
}

// toolCategories orders the sections of the reference. Tools are grouped by
// the prefix of their name.
var toolCategories = []struct {
	prefix string
	title  string
}{
	{"rooms", "Room Tools"},
	{"bookings", "Booking Tools"},
	{"google", "Google Account Tools"},
}

const otherCategory = "Other"

// writeTools are only registered when the server runs with --yolo.
var writeTools = map[string]bool{
	"bookings_create":      true,
	"bookings_update":      true,
	"bookings_delete":      true,
	"google_revoke_access": true,
}

func generateToolsMarkdown(tools []mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document lists every tool available when running bookify as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is generated from the tool definitions with `bookify generate-docs`.\n\n")

	byCategory := groupToolsByCategory(tools)
	categories := make([]string, 0, len(toolCategories)+1)
	for _, c := range toolCategories {
		if len(byCategory[c.title]) > 0 {
			categories = append(categories, c.title)
		}
	}
	if len(byCategory[otherCategory]) > 0 {
		categories = append(categories, otherCategory)
	}

	sb.WriteString("## Table of Contents\n\n")
	for _, category := range categories {
		anchor := strings.ToLower(strings.ReplaceAll(category, " ", "-"))
		fmt.Fprintf(&sb, "- [%s](#%s)\n", category, anchor)
	}
	sb.WriteString("\n")

	sb.WriteString("## Accounts\n\n")
	sb.WriteString("Every tool accepts an optional `account` argument naming whose Google grant is used:\n\n")
	sb.WriteString("- **Default:** without `account`, the server's default account is used; behind a proxy the account header wins\n")
	sb.WriteString("- **Authorization:** each account authorizes once with `google_get_auth_url` and `google_save_auth_code`\n")
	sb.WriteString("- **Revocation:** an account whose grant Google rejects is logged out and must authorize again\n\n")

	for _, category := range categories {
		categoryTools := byCategory[category]
		sort.Slice(categoryTools, func(i, j int) bool {
			return categoryTools[i].Name < categoryTools[j].Name
		})

		fmt.Fprintf(&sb, "## %s\n\n", category)
		for _, tool := range categoryTools {
			sb.WriteString(generateToolMarkdown(tool))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func groupToolsByCategory(tools []mcp.Tool) map[string][]mcp.Tool {
	categories := make(map[string][]mcp.Tool)
	for _, tool := range tools {
		category := getCategoryFromToolName(tool.Name)
		categories[category] = append(categories[category], tool)
	}
	return categories
}

func getCategoryFromToolName(name string) string {
	prefix, _, _ := strings.Cut(name, "_")
	for _, c := range toolCategories {
		if c.prefix == prefix {
			return c.title
		}
	}
	return otherCategory
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s\n\n", tool.Name)
	if tool.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", tool.Description)
	}
	if writeTools[tool.Name] {
		sb.WriteString("*Write operation: available with `--yolo` only.*\n\n")
	}

	if len(tool.InputSchema.Properties) == 0 {
		return sb.String()
	}

	sb.WriteString("**Arguments:**\n")
	names := make([]string, 0, len(tool.InputSchema.Properties))
	for name := range tool.InputSchema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop, ok := tool.InputSchema.Properties[name].(map[string]interface{})
		if !ok {
			continue
		}

		requirement := "optional"
		if slices.Contains(tool.InputSchema.Required, name) {
			requirement = "required"
		}
		propType := getPropertyType(prop)

		fmt.Fprintf(&sb, "- `%s` (%s, %s): ", name, propType, requirement)
		if desc, ok := prop["description"].(string); ok {
			sb.WriteString(desc)
		} else {
			fmt.Fprintf(&sb, "%s parameter", propType)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func getPropertyType(prop map[string]interface{}) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}
