package booking

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Defaults for composed bookings.
const (
	DefaultTitle              = "Quick Meeting | Bookify"
	DefaultDescription        = "A quick meeting created by Bookify"
	DefaultColorID            = "3"
	DefaultEventPageSize      = 20
	DefaultResourceSuffix     = "@resource.calendar.google.com"
	DefaultConferenceSolution = "hangoutsMeet"
)

// Config holds the tunables of the booking core.
type Config struct {
	// DefaultTitle is used when a request carries no title.
	DefaultTitle string

	// Description is set on every created booking.
	Description string

	// ColorID is the provider color applied to created bookings.
	ColorID string

	// EventPageSize caps ListForWindow. Only the first page is read.
	EventPageSize int

	// ResourceSuffix identifies room addresses among attendees.
	ResourceSuffix string

	// ConferenceSolution is the provider's conference solution key.
	ConferenceSolution string
}

// DefaultConfig returns a Config populated from the environment.
func DefaultConfig() Config {
	return Config{
		DefaultTitle:       getEnvOrDefault("BOOKIFY_DEFAULT_TITLE", DefaultTitle),
		Description:        getEnvOrDefault("BOOKIFY_DESCRIPTION", DefaultDescription),
		ColorID:            getEnvOrDefault("BOOKIFY_COLOR_ID", DefaultColorID),
		EventPageSize:      getEnvIntOrDefault("BOOKIFY_EVENT_PAGE_SIZE", DefaultEventPageSize),
		ResourceSuffix:     getEnvOrDefault("BOOKIFY_RESOURCE_SUFFIX", DefaultResourceSuffix),
		ConferenceSolution: getEnvOrDefault("BOOKIFY_CONFERENCE_SOLUTION", DefaultConferenceSolution),
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DefaultTitle) == "" {
		return fmt.Errorf("default title must not be empty")
	}
	if c.EventPageSize <= 0 {
		return fmt.Errorf("event page size must be positive, got %d", c.EventPageSize)
	}
	if !strings.HasPrefix(c.ResourceSuffix, "@") {
		return fmt.Errorf("resource suffix %q must start with @", c.ResourceSuffix)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}
