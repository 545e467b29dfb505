package google

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// OutOfBandRedirectURL makes Google show the authorization code to the user
// instead of redirecting, so the CLI can ask for it on stdin.
const OutOfBandRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

// accountPattern admits plain names ("work") and email addresses.
var accountPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.+@-]*$`)

// NewOAuthConfig returns the OAuth2 configuration for the given client.
func NewOAuthConfig(clientID, clientSecret, redirectURL string) (*oauth2.Config, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("google OAuth client id and secret are required")
	}
	if redirectURL == "" {
		redirectURL = OutOfBandRedirectURL
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       DefaultOAuthScopes,
	}, nil
}

// AuthURL returns the URL the user visits to authorize an account.
// Offline access is requested so a refresh token is issued.
func AuthURL(conf *oauth2.Config, state string) string {
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token and stores it for account.
func Exchange(ctx context.Context, conf *oauth2.Config, store TokenStore, account, code string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	if err := store.Save(ctx, account, token); err != nil {
		return fmt.Errorf("failed to save token for account %s: %w", account, err)
	}
	return nil
}

func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountPattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits and _ . + @ - are allowed", account)
	}
	return nil
}

// DefaultTokenDir is where FileTokenStore keeps tokens unless told otherwise.
func DefaultTokenDir() string {
	return filepath.Join(userCacheDir(), "bookify")
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		return os.TempDir()
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
