// Package google provides OAuth2 configuration and per-account token
// management for the Google APIs bookify talks to.
//
// Tokens live in a TokenStore keyed by account: on disk for a single user
// running the CLI or the stdio server, or in Valkey when several server
// replicas share one set of credentials. StoreTokenProvider hands tokens to
// the API adapters and persists refreshed tokens. Revoker forgets a token and
// revokes it with Google when the booking core gives up on a credential.
package google
