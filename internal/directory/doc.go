// Package directory lists a domain's bookable rooms from the Google Admin SDK
// Directory API (resources.calendars.list).
//
// The booking core asks for rooms by domain only, so the directory is read
// with one configured account's token. Domains map to Workspace customer ids;
// unmapped domains use the account's own customer ("my_customer").
package directory
