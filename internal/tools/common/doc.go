// Package common provides shared helpers for the MCP tool packages: account
// resolution, instrumentation of handlers and result rendering.
package common
