package google

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/oauth2"
)

// sealedPrefix marks token fields encrypted by EncryptedTokenStore.
const sealedPrefix = "enc:v1:"

// EncryptedTokenStore encrypts the access and refresh tokens before handing
// them to the wrapped store. Expiry and token type stay readable so stored
// tokens can still be inspected. Fields without the sealed prefix are
// returned as they are, which lets a store switch to encryption in place.
type EncryptedTokenStore struct {
	inner TokenStore
	key   []byte
}

// ParseEncryptionKey decodes a base64 encoded 32-byte key
// (e.g. the output of "openssl rand -base64 32").
func ParseEncryptionKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid token encryption key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("token encryption key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return key, nil
}

// NewEncryptedTokenStore wraps inner with XChaCha20-Poly1305 encryption.
func NewEncryptedTokenStore(inner TokenStore, key []byte) (*EncryptedTokenStore, error) {
	if inner == nil {
		return nil, fmt.Errorf("token store cannot be nil")
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("token encryption key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return &EncryptedTokenStore{inner: inner, key: key}, nil
}

// Get decrypts the token stored for account.
func (s *EncryptedTokenStore) Get(ctx context.Context, account string) (*oauth2.Token, error) {
	token, err := s.inner.Get(ctx, account)
	if err != nil {
		return nil, err
	}

	opened := *token
	if opened.AccessToken, err = s.open(token.AccessToken, account); err != nil {
		return nil, err
	}
	if opened.RefreshToken, err = s.open(token.RefreshToken, account); err != nil {
		return nil, err
	}
	return &opened, nil
}

// Save encrypts token and stores it for account.
func (s *EncryptedTokenStore) Save(ctx context.Context, account string, token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	sealed := *token
	var err error
	if sealed.AccessToken, err = s.seal(token.AccessToken, account); err != nil {
		return err
	}
	if sealed.RefreshToken, err = s.seal(token.RefreshToken, account); err != nil {
		return err
	}
	return s.inner.Save(ctx, account, &sealed)
}

// Delete forgets the token for account.
func (s *EncryptedTokenStore) Delete(ctx context.Context, account string) error {
	return s.inner.Delete(ctx, account)
}

// Has reports whether a token is stored for account.
func (s *EncryptedTokenStore) Has(ctx context.Context, account string) bool {
	return s.inner.Has(ctx, account)
}

// Ping checks the wrapped store if it supports it.
func (s *EncryptedTokenStore) Ping(ctx context.Context) error {
	if p, ok := s.inner.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Accounts lists the accounts of the wrapped store.
func (s *EncryptedTokenStore) Accounts(ctx context.Context) ([]string, error) {
	return ListAccounts(ctx, s.inner)
}

// Close closes the wrapped store.
func (s *EncryptedTokenStore) Close() error {
	return CloseTokenStore(s.inner)
}

// seal encrypts value, binding it to account as additional data so a
// ciphertext cannot be replayed under another account.
func (s *EncryptedTokenStore) seal(value, account string) (string, error) {
	if value == "" {
		return "", nil
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(value)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(value), []byte(account))
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(sealed), nil
}

func (s *EncryptedTokenStore) open(value, account string) (string, error) {
	encoded, ok := strings.CutPrefix(value, sealedPrefix)
	if !ok {
		return value, nil
	}

	data, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("invalid encrypted token for account %s: %w", account, err)
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	if len(data) < aead.NonceSize() {
		return "", fmt.Errorf("invalid encrypted token for account %s: too short", account)
	}

	nonce, ciphertext := data[:aead.NonceSize()], data[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, []byte(account))
	if err != nil {
		return "", fmt.Errorf("failed to decrypt token for account %s: %w", account, err)
	}
	return string(plain), nil
}

// CloseTokenStore releases the resources held by store, if any.
func CloseTokenStore(store TokenStore) error {
	switch c := store.(type) {
	case interface{ Close() error }:
		return c.Close()
	case interface{ Close() }:
		c.Close()
	}
	return nil
}

// ErrAccountsUnsupported is returned by ListAccounts for stores that cannot
// enumerate their accounts.
var ErrAccountsUnsupported = errors.New("token store cannot list accounts")

// ListAccounts returns every account with a stored token.
func ListAccounts(ctx context.Context, store TokenStore) ([]string, error) {
	lister, ok := store.(interface {
		Accounts(ctx context.Context) ([]string, error)
	})
	if !ok {
		return nil, ErrAccountsUnsupported
	}
	return lister.Accounts(ctx)
}
