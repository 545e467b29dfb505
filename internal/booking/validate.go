package booking

import (
	"regexp"
	"strings"
)

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	decorationPattern = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
)

// ValidEmail reports whether address is a syntactically valid email address.
func ValidEmail(address string) bool {
	return emailPattern.MatchString(address)
}

// ValidateAttendees fails on the first invalid address.
func ValidateAttendees(attendees []string) error {
	for _, address := range attendees {
		if !ValidEmail(address) {
			return invalidAttendee(address)
		}
	}
	return nil
}

// IsResourceAddress reports whether address belongs to a resource calendar.
func IsResourceAddress(address, suffix string) bool {
	return strings.HasSuffix(strings.ToLower(address), strings.ToLower(suffix))
}

// WithoutResources returns attendees minus any resource calendar address.
func WithoutResources(attendees []string, suffix string) []string {
	out := make([]string, 0, len(attendees))
	for _, address := range attendees {
		if !IsResourceAddress(address, suffix) {
			out = append(out, address)
		}
	}
	return out
}

// ComposeTitle trims title and falls back to def when nothing is left.
func ComposeTitle(title, def string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return def
}

// ParseLocation extracts the room label from an event location. Provider
// generated locations look like "Building-Floor-Room (8) [TV], Other room";
// the first entry is taken, decorations are dropped and the last dash
// separated segment is kept.
func ParseLocation(location string) string {
	loc := location
	if i := strings.Index(loc, ","); i >= 0 {
		loc = loc[:i]
	}
	loc = decorationPattern.ReplaceAllString(loc, "")
	if i := strings.LastIndex(loc, "-"); i >= 0 {
		loc = loc[i+1:]
	}
	return strings.TrimSpace(loc)
}
