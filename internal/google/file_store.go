package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/oauth2"
)

// FileTokenStore keeps one JSON token file per account in a directory.
type FileTokenStore struct {
	dir string
}

// NewFileTokenStore creates a store rooted at dir. An empty dir selects
// DefaultTokenDir.
func NewFileTokenStore(dir string) *FileTokenStore {
	if dir == "" {
		dir = DefaultTokenDir()
	}
	return &FileTokenStore{dir: dir}
}

func (s *FileTokenStore) path(account string) string {
	return filepath.Join(s.dir, "google-"+account+".token")
}

// Get reads the token for account.
func (s *FileTokenStore) Get(_ context.Context, account string) (*oauth2.Token, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(account))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("account %s: %w", account, ErrTokenNotFound)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token file for account %s: %w", account, err)
	}
	return &token, nil
}

// Save writes the token for account with owner-only permissions.
func (s *FileTokenStore) Save(_ context.Context, account string, token *oauth2.Token) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(s.path(account), data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Delete removes the token file for account. A missing file is not an error.
func (s *FileTokenStore) Delete(_ context.Context, account string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if err := os.Remove(s.path(account)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

// Has reports whether a token file exists for account.
func (s *FileTokenStore) Has(_ context.Context, account string) bool {
	if validateAccountName(account) != nil {
		return false
	}
	_, err := os.Stat(s.path(account))
	return err == nil
}

// Accounts lists the accounts with a token file, sorted by name.
func (s *FileTokenStore) Accounts(_ context.Context) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "google-*.token"))
	if err != nil {
		return nil, fmt.Errorf("failed to list token files: %w", err)
	}

	accounts := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), "google-"), ".token")
		if validateAccountName(name) == nil {
			accounts = append(accounts, name)
		}
	}
	sort.Strings(accounts)
	return accounts, nil
}
