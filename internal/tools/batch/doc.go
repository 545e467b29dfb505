// Package batch provides helpers for tools that act on several ids at once:
// parameter parsing for single values, arrays and comma-separated lists, and
// ordered processing that stops early once a failure makes the rest pointless.
package batch
