package google

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/oauth2"
)

// ErrTokenNotFound is returned when no token is stored for an account.
var ErrTokenNotFound = errors.New("token not found")

// Token store backends.
const (
	StoreTypeFile   = "file"
	StoreTypeMemory = "memory"
	StoreTypeValkey = "valkey"
	StoreTypeSQLite = "sqlite"
)

// TokenStore persists OAuth tokens per account.
type TokenStore interface {
	Get(ctx context.Context, account string) (*oauth2.Token, error)
	Save(ctx context.Context, account string, token *oauth2.Token) error
	Delete(ctx context.Context, account string) error
	Has(ctx context.Context, account string) bool
}

// MemoryTokenStore keeps tokens in process memory.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]*oauth2.Token
}

// NewMemoryTokenStore creates an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]*oauth2.Token)}
}

// Get returns the token stored for account.
func (s *MemoryTokenStore) Get(_ context.Context, account string) (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[account]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", account, ErrTokenNotFound)
	}
	return token, nil
}

// Save stores token for account, replacing any previous one.
func (s *MemoryTokenStore) Save(_ context.Context, account string, token *oauth2.Token) error {
	if account == "" {
		return fmt.Errorf("account cannot be empty")
	}
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[account] = token
	return nil
}

// Delete forgets the token for account. Deleting a missing token is not an error.
func (s *MemoryTokenStore) Delete(_ context.Context, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, account)
	return nil
}

// Has reports whether a token is stored for account.
func (s *MemoryTokenStore) Has(_ context.Context, account string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[account]
	return ok
}

// Accounts lists the accounts with a stored token, sorted by name.
func (s *MemoryTokenStore) Accounts(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]string, 0, len(s.tokens))
	for account := range s.tokens {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)
	return accounts, nil
}

// StoreConfig selects and configures a TokenStore backend.
type StoreConfig struct {
	// Type is one of "file", "memory", "sqlite" or "valkey" (default: "file")
	Type string

	// Dir is the token directory for the file backend.
	Dir string

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string

	// Valkey configures the valkey backend.
	Valkey ValkeyConfig

	// EncryptionKey, when set, encrypts tokens at rest (32 bytes).
	EncryptionKey []byte
}

// NewTokenStore builds the configured TokenStore.
func NewTokenStore(ctx context.Context, config StoreConfig) (TokenStore, error) {
	var (
		store TokenStore
		err   error
	)
	switch config.Type {
	case StoreTypeFile, "":
		store = NewFileTokenStore(config.Dir)
	case StoreTypeMemory:
		store = NewMemoryTokenStore()
	case StoreTypeSQLite:
		store, err = NewSQLiteTokenStore(ctx, config.SQLitePath)
	case StoreTypeValkey:
		store, err = NewValkeyTokenStore(config.Valkey)
	default:
		return nil, fmt.Errorf("unsupported token store type %q, must be one of: file, memory, sqlite, valkey", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if len(config.EncryptionKey) == 0 {
		return store, nil
	}
	encrypted, err := NewEncryptedTokenStore(store, config.EncryptionKey)
	if err != nil {
		_ = CloseTokenStore(store)
		return nil, err
	}
	return encrypted, nil
}
