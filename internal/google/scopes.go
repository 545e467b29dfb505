package google

import (
	admin "google.golang.org/api/admin/directory/v1"
	calendar "google.golang.org/api/calendar/v3"
)

// DefaultOAuthScopes are the scopes requested when an account is authorized.
//
//   - Calendar: free/busy queries and managing the account's own events
//   - Directory: read-only access to the domain's room resources
var DefaultOAuthScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	calendar.CalendarScope,

	admin.AdminDirectoryResourceCalendarReadonlyScope,
}
