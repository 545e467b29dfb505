// Package resources provides MCP resources for the room directory and the
// caller's account. Resources are read-only data sources that MCP clients
// can fetch for context before calling the booking tools.
//
// Static resources:
//   - bookify://account: the calling account and whether it is authorized
//   - bookify://config: the effective booking defaults
//
// Resource templates:
//   - bookify://domains/{domain}/rooms: every room of a domain
//   - bookify://domains/{domain}/floors: the floor labels of a domain
package resources
