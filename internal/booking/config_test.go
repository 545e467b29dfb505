package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("BOOKIFY_DEFAULT_TITLE", "")
	t.Setenv("BOOKIFY_EVENT_PAGE_SIZE", "")

	cfg := DefaultConfig()
	assert.Equal(t, DefaultTitle, cfg.DefaultTitle)
	assert.Equal(t, DefaultEventPageSize, cfg.EventPageSize)
	assert.Equal(t, DefaultResourceSuffix, cfg.ResourceSuffix)
	require.NoError(t, cfg.Validate())
}

func TestDefaultConfig_Env(t *testing.T) {
	t.Setenv("BOOKIFY_DEFAULT_TITLE", "Booked")
	t.Setenv("BOOKIFY_EVENT_PAGE_SIZE", "50")
	t.Setenv("BOOKIFY_COLOR_ID", "7")

	cfg := DefaultConfig()
	assert.Equal(t, "Booked", cfg.DefaultTitle)
	assert.Equal(t, 50, cfg.EventPageSize)
	assert.Equal(t, "7", cfg.ColorID)

	t.Setenv("BOOKIFY_EVENT_PAGE_SIZE", "many")
	assert.Equal(t, DefaultEventPageSize, DefaultConfig().EventPageSize)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{DefaultTitle: "t", EventPageSize: 1, ResourceSuffix: "@r"}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "blank title", mutate: func(c *Config) { c.DefaultTitle = " " }, wantErr: true},
		{name: "zero page size", mutate: func(c *Config) { c.EventPageSize = 0 }, wantErr: true},
		{name: "suffix without at", mutate: func(c *Config) { c.ResourceSuffix = "resource.calendar.google.com" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
