package google

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	_ "modernc.org/sqlite"
)

// DefaultSQLiteFile is the database file name inside the token directory.
const DefaultSQLiteFile = "tokens.db"

const sqliteSchema = `CREATE TABLE IF NOT EXISTS oauth_tokens (
	account    TEXT PRIMARY KEY,
	token      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteTokenStore keeps tokens in a local SQLite database.
type SQLiteTokenStore struct {
	db *sql.DB
}

// NewSQLiteTokenStore opens (and creates, if needed) the database at path.
// An empty path selects DefaultSQLiteFile in DefaultTokenDir.
func NewSQLiteTokenStore(ctx context.Context, path string) (*SQLiteTokenStore, error) {
	if path == "" {
		path = filepath.Join(DefaultTokenDir(), DefaultSQLiteFile)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create token directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token database: %w", err)
	}
	// A single connection serializes writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA busy_timeout = 5000", sqliteSchema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize token database: %w", err)
		}
	}
	if err := os.Chmod(path, 0600); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to restrict token database permissions: %w", err)
	}

	return &SQLiteTokenStore{db: db}, nil
}

// Get returns the token stored for account.
func (s *SQLiteTokenStore) Get(ctx context.Context, account string) (*oauth2.Token, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT token FROM oauth_tokens WHERE account = ?`, account).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", account, ErrTokenNotFound)
		}
		return nil, fmt.Errorf("failed to read token from database: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return nil, fmt.Errorf("invalid token in database for account %s: %w", account, err)
	}
	return &token, nil
}

// Save stores token for account, replacing any previous token.
func (s *SQLiteTokenStore) Save(ctx context.Context, account string, token *oauth2.Token) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO oauth_tokens (account, token, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(account) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`,
		account, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to write token to database: %w", err)
	}
	return nil
}

// Delete forgets the token for account. A missing row is not an error.
func (s *SQLiteTokenStore) Delete(ctx context.Context, account string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM oauth_tokens WHERE account = ?`, account); err != nil {
		return fmt.Errorf("failed to delete token from database: %w", err)
	}
	return nil
}

// Has reports whether a token is stored for account.
func (s *SQLiteTokenStore) Has(ctx context.Context, account string) bool {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM oauth_tokens WHERE account = ?`, account).Scan(&n)
	return err == nil && n > 0
}

// Accounts lists every account with a stored token.
func (s *SQLiteTokenStore) Accounts(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT account FROM oauth_tokens ORDER BY account`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	accounts := []string{}
	for rows.Next() {
		var account string
		if err := rows.Scan(&account); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// Ping checks the database connection.
func (s *SQLiteTokenStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteTokenStore) Close() error {
	return s.db.Close()
}
