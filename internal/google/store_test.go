package google

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "access-123",
		TokenType:    "Bearer",
		RefreshToken: "refresh-456",
		Expiry:       time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
}

func TestTokenStores(t *testing.T) {
	stores := map[string]func(t *testing.T) TokenStore{
		"memory": func(t *testing.T) TokenStore { return NewMemoryTokenStore() },
		"file":   func(t *testing.T) TokenStore { return NewFileTokenStore(t.TempDir()) },
		"sqlite": func(t *testing.T) TokenStore { return newTestSQLiteStore(t) },
		"encrypted": func(t *testing.T) TokenStore {
			store, err := NewEncryptedTokenStore(NewMemoryTokenStore(), testKey())
			require.NoError(t, err)
			return store
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			assert.False(t, store.Has(ctx, "jane@example.com"))
			_, err := store.Get(ctx, "jane@example.com")
			require.ErrorIs(t, err, ErrTokenNotFound)

			want := testToken()
			require.NoError(t, store.Save(ctx, "jane@example.com", want))
			assert.True(t, store.Has(ctx, "jane@example.com"))

			accounts, err := ListAccounts(ctx, store)
			require.NoError(t, err)
			assert.Equal(t, []string{"jane@example.com"}, accounts)

			got, err := store.Get(ctx, "jane@example.com")
			require.NoError(t, err)
			assert.Equal(t, want.AccessToken, got.AccessToken)
			assert.Equal(t, want.RefreshToken, got.RefreshToken)
			assert.True(t, want.Expiry.Equal(got.Expiry))

			require.NoError(t, store.Delete(ctx, "jane@example.com"))
			assert.False(t, store.Has(ctx, "jane@example.com"))
			require.NoError(t, store.Delete(ctx, "jane@example.com"), "deleting twice is not an error")

			require.Error(t, store.Save(ctx, "jane@example.com", nil))
		})
	}
}

func TestFileTokenStore_Permissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tokens")
	store := NewFileTokenStore(dir)

	require.NoError(t, store.Save(context.Background(), "work", testToken()))

	info, err := os.Stat(filepath.Join(dir, "google-work.token"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileTokenStore_RejectsInvalidAccounts(t *testing.T) {
	store := NewFileTokenStore(t.TempDir())
	ctx := context.Background()

	require.Error(t, store.Save(ctx, "../escape", testToken()))
	_, err := store.Get(ctx, "work/personal")
	require.Error(t, err)
	assert.False(t, store.Has(ctx, ""))
}

func TestFileTokenStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "google-work.token"), []byte("not json"), 0600))

	_, err := NewFileTokenStore(dir).Get(context.Background(), "work")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTokenNotFound)
}

func TestValidateAccountName(t *testing.T) {
	tests := []struct {
		name    string
		account string
		wantErr bool
	}{
		{"plain name", "default", false},
		{"with hyphen", "work-email", false},
		{"with underscore", "personal_email", false},
		{"email address", "jane.doe+rooms@example.com", false},
		{"empty", "", true},
		{"with spaces", "my account", true},
		{"with slash", "work/personal", true},
		{"leading dot", ".hidden", true},
		{"parent dir", "..", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAccountName(tt.account)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewTokenStore(t *testing.T) {
	ctx := context.Background()

	store, err := NewTokenStore(ctx, StoreConfig{Type: StoreTypeMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryTokenStore{}, store)

	store, err = NewTokenStore(ctx, StoreConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileTokenStore{}, store)

	store, err = NewTokenStore(ctx, StoreConfig{Type: StoreTypeSQLite, SQLitePath: filepath.Join(t.TempDir(), "tokens.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteTokenStore{}, store)
	require.NoError(t, CloseTokenStore(store))

	store, err = NewTokenStore(ctx, StoreConfig{Type: StoreTypeMemory, EncryptionKey: testKey()})
	require.NoError(t, err)
	assert.IsType(t, &EncryptedTokenStore{}, store)

	_, err = NewTokenStore(ctx, StoreConfig{Type: StoreTypeMemory, EncryptionKey: []byte("short")})
	require.Error(t, err)

	_, err = NewTokenStore(ctx, StoreConfig{Type: StoreTypeValkey})
	require.Error(t, err, "valkey requires a URL")

	_, err = NewTokenStore(ctx, StoreConfig{Type: "s3"})
	require.Error(t, err)
}

func TestValkeyKeyPrefix(t *testing.T) {
	store := NewValkeyTokenStoreWithClient(nil, "")
	assert.Equal(t, "bookify:token:jane@example.com", store.key("jane@example.com"))

	store = NewValkeyTokenStoreWithClient(nil, "staging:")
	assert.Equal(t, "staging:token:work", store.key("work"))
}

func TestValkeyTLSConfig(t *testing.T) {
	cfg, err := valkeyTLSConfig("")
	require.NoError(t, err)
	assert.Nil(t, cfg.RootCAs)

	_, err = valkeyTLSConfig(filepath.Join(t.TempDir(), "missing.pem"))
	require.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.pem")
	require.NoError(t, os.WriteFile(empty, []byte("no certs"), 0600))
	_, err = valkeyTLSConfig(empty)
	require.Error(t, err)
}

type bareStore struct{ TokenStore }

func TestListAccounts_Unsupported(t *testing.T) {
	_, err := ListAccounts(context.Background(), bareStore{NewMemoryTokenStore()})
	require.ErrorIs(t, err, ErrAccountsUnsupported)
}
