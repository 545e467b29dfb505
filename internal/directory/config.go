package directory

import (
	"fmt"
	"os"
	"strings"

	"google.golang.org/api/option"
)

// DefaultCustomer addresses the customer of the authorized account.
const DefaultCustomer = "my_customer"

// DefaultPageSize is the resources.calendars.list page size (API maximum).
const DefaultPageSize = 500

// Config configures the Directory.
type Config struct {
	// Account is the account whose token reads the directory.
	Account string

	// Customer is used for domains without an entry in Customers.
	Customer string

	// Customers maps a domain to its Workspace customer id.
	Customers map[string]string

	// PageSize is the number of resources fetched per page.
	PageSize int64

	// ClientOptions are appended to every Admin SDK service constructed.
	ClientOptions []option.ClientOption
}

// ConfigFromEnv reads BOOKIFY_DIRECTORY_ACCOUNT, BOOKIFY_DIRECTORY_CUSTOMER
// and BOOKIFY_DIRECTORY_CUSTOMERS ("example.com=C01abc,other.org=C02def").
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Account:  os.Getenv("BOOKIFY_DIRECTORY_ACCOUNT"),
		Customer: os.Getenv("BOOKIFY_DIRECTORY_CUSTOMER"),
	}
	customers, err := ParseCustomers(os.Getenv("BOOKIFY_DIRECTORY_CUSTOMERS"))
	if err != nil {
		return Config{}, err
	}
	cfg.Customers = customers
	return cfg, nil
}

// ParseCustomers parses a comma-separated list of domain=customer pairs.
func ParseCustomers(s string) (map[string]string, error) {
	customers := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		domain, customer, ok := strings.Cut(pair, "=")
		domain, customer = strings.TrimSpace(domain), strings.TrimSpace(customer)
		if !ok || domain == "" || customer == "" {
			return nil, fmt.Errorf("invalid directory customer mapping %q, expected domain=customer", pair)
		}
		customers[strings.ToLower(domain)] = customer
	}
	return customers, nil
}

func (c Config) customerFor(domain string) string {
	if customer, ok := c.Customers[strings.ToLower(domain)]; ok {
		return customer
	}
	if c.Customer != "" {
		return c.Customer
	}
	return DefaultCustomer
}
