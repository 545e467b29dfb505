// Package google_tools provides MCP tools for Google OAuth authentication.
//
// The OAuth flow:
//  1. Call google_get_auth_url to get the authorization URL
//  2. The user visits the URL and authorizes calendar and directory access
//  3. Call google_save_auth_code with the code to store the token
//
// Stored tokens are refreshed as needed by the token provider. An account
// whose grant is rejected by Google is revoked automatically; it can also be
// revoked on demand with google_revoke_access.
package google_tools
