package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCustomers(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]string
		wantErr bool
	}{
		{name: "empty", input: "", want: map[string]string{}},
		{name: "single", input: "example.com=C01abc", want: map[string]string{"example.com": "C01abc"}},
		{
			name:  "several with spaces",
			input: " Example.com = C01abc , other.org=C02def,",
			want:  map[string]string{"example.com": "C01abc", "other.org": "C02def"},
		},
		{name: "missing separator", input: "example.com", wantErr: true},
		{name: "missing customer", input: "example.com=", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCustomers(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_CustomerFor(t *testing.T) {
	assert.Equal(t, DefaultCustomer, Config{}.customerFor("example.com"))
	assert.Equal(t, "C09", Config{Customer: "C09"}.customerFor("example.com"))
	assert.Equal(t, "C01", Config{Customer: "C09", Customers: map[string]string{"example.com": "C01"}}.customerFor("EXAMPLE.com"))
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("BOOKIFY_DIRECTORY_ACCOUNT", "admin@example.com")
	t.Setenv("BOOKIFY_DIRECTORY_CUSTOMER", "")
	t.Setenv("BOOKIFY_DIRECTORY_CUSTOMERS", "example.com=C01")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", cfg.Account)
	assert.Equal(t, "C01", cfg.Customers["example.com"])

	t.Setenv("BOOKIFY_DIRECTORY_CUSTOMERS", "broken")
	_, err = ConfigFromEnv()
	require.Error(t, err)
}
