// Package cmd implements the command-line interface for bookify.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide room and booking tools for AI assistants
//   - rooms: Search free rooms and list the floors of a domain
//   - bookings: Create, list, move and delete room bookings
//   - auth: Authorize, inspect and revoke Google accounts
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// Flags shared by all commands (domain, account, token store, logging) are
// persistent flags on the root command. Every flag falls back to an
// environment variable when it is not set explicitly.
package cmd
