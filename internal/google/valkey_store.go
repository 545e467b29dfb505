package google

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/valkey-io/valkey-go"
	"golang.org/x/oauth2"
)

// DefaultValkeyKeyPrefix prefixes every token key.
const DefaultValkeyKeyPrefix = "bookify:"

// ValkeyConfig configures the Valkey token store.
type ValkeyConfig struct {
	// URL is the Valkey server address (e.g., "valkey.namespace.svc:6379")
	URL string

	// Password is the optional password for Valkey authentication
	Password string

	// TLSEnabled enables TLS for Valkey connections
	TLSEnabled bool

	// TLSCAFile is a PEM bundle used to verify the server certificate.
	TLSCAFile string

	// KeyPrefix is the prefix for all keys (default: "bookify:")
	KeyPrefix string

	// DB is the Valkey database number (default: 0)
	DB int
}

// ValkeyTokenStore keeps tokens in Valkey so several replicas share them.
type ValkeyTokenStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyTokenStore connects to Valkey.
func NewValkeyTokenStore(config ValkeyConfig) (*ValkeyTokenStore, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("valkey URL is required")
	}

	opt := valkey.ClientOption{
		InitAddress: []string{config.URL},
		Password:    config.Password,
		SelectDB:    config.DB,
	}
	if config.TLSEnabled {
		tlsConfig, err := valkeyTLSConfig(config.TLSCAFile)
		if err != nil {
			return nil, err
		}
		opt.TLSConfig = tlsConfig
	}

	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey at %s: %w", config.URL, err)
	}
	return NewValkeyTokenStoreWithClient(client, config.KeyPrefix), nil
}

// NewValkeyTokenStoreWithClient wraps an existing client.
func NewValkeyTokenStoreWithClient(client valkey.Client, prefix string) *ValkeyTokenStore {
	if prefix == "" {
		prefix = DefaultValkeyKeyPrefix
	}
	return &ValkeyTokenStore{client: client, prefix: prefix}
}

func valkeyTLSConfig(caFile string) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return tlsConfig, nil
	}

	pem, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read valkey CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in valkey CA file %s", caFile)
	}
	tlsConfig.RootCAs = pool
	return tlsConfig, nil
}

func (s *ValkeyTokenStore) key(account string) string {
	return s.prefix + "token:" + account
}

// Get returns the token stored for account.
func (s *ValkeyTokenStore) Get(ctx context.Context, account string) (*oauth2.Token, error) {
	raw, err := s.client.Do(ctx, s.client.B().Get().Key(s.key(account)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, fmt.Errorf("account %s: %w", account, ErrTokenNotFound)
		}
		return nil, fmt.Errorf("failed to read token from valkey: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return nil, fmt.Errorf("invalid token in valkey for account %s: %w", account, err)
	}
	return &token, nil
}

// Save stores token for account.
func (s *ValkeyTokenStore) Save(ctx context.Context, account string, token *oauth2.Token) error {
	if account == "" {
		return fmt.Errorf("account cannot be empty")
	}
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	cmd := s.client.B().Set().Key(s.key(account)).Value(string(data)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to write token to valkey: %w", err)
	}
	return nil
}

// Delete forgets the token for account.
func (s *ValkeyTokenStore) Delete(ctx context.Context, account string) error {
	if err := s.client.Do(ctx, s.client.B().Del().Key(s.key(account)).Build()).Error(); err != nil {
		return fmt.Errorf("failed to delete token from valkey: %w", err)
	}
	return nil
}

// Has reports whether a token is stored for account.
func (s *ValkeyTokenStore) Has(ctx context.Context, account string) bool {
	n, err := s.client.Do(ctx, s.client.B().Exists().Key(s.key(account)).Build()).AsInt64()
	return err == nil && n > 0
}

// Accounts lists the accounts with a stored token, sorted by name.
func (s *ValkeyTokenStore) Accounts(ctx context.Context) ([]string, error) {
	prefix := s.key("")
	accounts := []string{}

	var cursor uint64
	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(prefix + "*").Count(100).Build()
		entry, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("failed to scan valkey keys: %w", err)
		}
		for _, key := range entry.Elements {
			accounts = append(accounts, strings.TrimPrefix(key, prefix))
		}
		if entry.Cursor == 0 {
			break
		}
		cursor = entry.Cursor
	}

	sort.Strings(accounts)
	return accounts, nil
}

// Ping checks the connection to Valkey.
func (s *ValkeyTokenStore) Ping(ctx context.Context) error {
	return s.client.Do(ctx, s.client.B().Ping().Build()).Error()
}

// Close releases the underlying connection.
func (s *ValkeyTokenStore) Close() {
	s.client.Close()
}
