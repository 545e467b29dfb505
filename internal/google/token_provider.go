package google

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/teemow/bookify/internal/logging"
)

// TokenProvider supplies OAuth tokens for Google API calls made on behalf of
// an account.
type TokenProvider interface {
	// GetTokenForAccount returns a valid token for account.
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount reports whether the account has been authorized.
	HasTokenForAccount(ctx context.Context, account string) bool
}

// StoreTokenProvider serves tokens from a TokenStore, refreshing expired
// tokens through the OAuth config and writing the refreshed token back.
type StoreTokenProvider struct {
	store  TokenStore
	config *oauth2.Config
	logger logging.Logger
}

// NewStoreTokenProvider creates a provider over store. A nil config disables
// refreshing; stored tokens are then returned as they are.
func NewStoreTokenProvider(store TokenStore, config *oauth2.Config, logger logging.Logger) *StoreTokenProvider {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &StoreTokenProvider{store: store, config: config, logger: logger}
}

// GetTokenForAccount returns a valid token for account.
func (p *StoreTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	stored, err := p.store.Get(ctx, account)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, fmt.Errorf("no Google OAuth token found for account %s, run 'bookify auth login --account %s': %w", account, account, err)
		}
		return nil, err
	}
	if p.config == nil || stored.Valid() {
		return stored, nil
	}

	fresh, err := p.config.TokenSource(ctx, stored).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token for account %s: %w", account, err)
	}
	if fresh.AccessToken != stored.AccessToken {
		if err := p.store.Save(ctx, account, fresh); err != nil {
			// The refreshed token still works for this call.
			p.logger.Warn("failed to persist refreshed token", logging.UserHash(account), logging.Err(err))
		}
	}
	return fresh, nil
}

// HasTokenForAccount reports whether a token is stored for account.
func (p *StoreTokenProvider) HasTokenForAccount(ctx context.Context, account string) bool {
	return p.store.Has(ctx, account)
}
