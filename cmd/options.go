package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/teemow/bookify/internal/booking"
	"github.com/teemow/bookify/internal/calendar"
	"github.com/teemow/bookify/internal/directory"
	"github.com/teemow/bookify/internal/google"
	"github.com/teemow/bookify/internal/instrumentation"
	"github.com/teemow/bookify/internal/logging"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	logLevel  string
	logFormat string

	domain  string
	account string

	googleClientID     string
	googleClientSecret string
	googleRedirectURL  string

	tokenStore         google.StoreConfig
	tokenEncryptionKey string
}

var globals = globalOptions{}

func (o *globalOptions) addFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringVar(&o.logLevel, "log-level", "info", "Log level: debug, info, warn or error. Can also use LOG_LEVEL env var.")
	flags.StringVar(&o.logFormat, "log-format", logging.FormatText, "Log format: text or json. Can also use LOG_FORMAT env var.")

	flags.StringVar(&o.domain, "domain", "", "Google Workspace domain whose rooms are used. Can also use BOOKIFY_DOMAIN env var.")
	flags.StringVar(&o.account, "account", "default", "Account whose Google grant is used. Can also use BOOKIFY_ACCOUNT env var.")

	flags.StringVar(&o.googleClientID, "google-client-id", "", "Google OAuth Client ID. Can also use GOOGLE_CLIENT_ID env var.")
	flags.StringVar(&o.googleClientSecret, "google-client-secret", "", "Google OAuth Client Secret. Can also use GOOGLE_CLIENT_SECRET env var.")
	flags.StringVar(&o.googleRedirectURL, "google-redirect-url", "", "Google OAuth redirect URL (default: out-of-band). Can also use GOOGLE_REDIRECT_URL env var.")

	flags.StringVar(&o.tokenStore.Type, "token-store", google.StoreTypeFile, "Token storage type: file, memory, sqlite or valkey. Can also use TOKEN_STORE_TYPE env var.")
	flags.StringVar(&o.tokenStore.Dir, "token-dir", "", "Directory for the file token store (default: user cache dir). Can also use TOKEN_DIR env var.")
	flags.StringVar(&o.tokenStore.SQLitePath, "token-sqlite-path", "", "Database file for the sqlite token store. Can also use TOKEN_SQLITE_PATH env var.")
	flags.StringVar(&o.tokenEncryptionKey, "token-encryption-key", "", "Key for encrypting tokens at rest (32 bytes, base64 encoded). Can also use TOKEN_ENCRYPTION_KEY env var. Generate with: openssl rand -base64 32")
	flags.StringVar(&o.tokenStore.Valkey.URL, "valkey-url", "", "Valkey server address (e.g., valkey.namespace.svc:6379). Can also use VALKEY_URL env var.")
	flags.StringVar(&o.tokenStore.Valkey.Password, "valkey-password", "", "Valkey authentication password. Can also use VALKEY_PASSWORD env var.")
	flags.BoolVar(&o.tokenStore.Valkey.TLSEnabled, "valkey-tls", false, "Enable TLS for Valkey connections. Can also use VALKEY_TLS_ENABLED env var.")
	flags.StringVar(&o.tokenStore.Valkey.KeyPrefix, "valkey-key-prefix", google.DefaultValkeyKeyPrefix, "Prefix for all Valkey keys. Can also use VALKEY_KEY_PREFIX env var.")
	flags.IntVar(&o.tokenStore.Valkey.DB, "valkey-db", 0, "Valkey database number. Can also use VALKEY_DB env var.")
}

// loadEnv fills every flag that was not set explicitly from its environment
// variable.
func (o *globalOptions) loadEnv(cmd *cobra.Command) error {
	flags := cmd.Flags()

	stringVars := []struct {
		flag   string
		env    string
		target *string
	}{
		{"log-level", "LOG_LEVEL", &o.logLevel},
		{"log-format", "LOG_FORMAT", &o.logFormat},
		{"domain", "BOOKIFY_DOMAIN", &o.domain},
		{"account", "BOOKIFY_ACCOUNT", &o.account},
		{"google-client-id", "GOOGLE_CLIENT_ID", &o.googleClientID},
		{"google-client-secret", "GOOGLE_CLIENT_SECRET", &o.googleClientSecret},
		{"google-redirect-url", "GOOGLE_REDIRECT_URL", &o.googleRedirectURL},
		{"token-store", "TOKEN_STORE_TYPE", &o.tokenStore.Type},
		{"token-dir", "TOKEN_DIR", &o.tokenStore.Dir},
		{"token-sqlite-path", "TOKEN_SQLITE_PATH", &o.tokenStore.SQLitePath},
		{"token-encryption-key", "TOKEN_ENCRYPTION_KEY", &o.tokenEncryptionKey},
		{"valkey-url", "VALKEY_URL", &o.tokenStore.Valkey.URL},
		{"valkey-password", "VALKEY_PASSWORD", &o.tokenStore.Valkey.Password},
		{"valkey-key-prefix", "VALKEY_KEY_PREFIX", &o.tokenStore.Valkey.KeyPrefix},
	}
	for _, v := range stringVars {
		if flags.Changed(v.flag) {
			continue
		}
		if value := os.Getenv(v.env); value != "" {
			*v.target = value
		}
	}

	if !flags.Changed("valkey-tls") && os.Getenv("VALKEY_TLS_ENABLED") == "true" {
		o.tokenStore.Valkey.TLSEnabled = true
	}
	if o.tokenStore.Valkey.TLSCAFile == "" {
		o.tokenStore.Valkey.TLSCAFile = os.Getenv("VALKEY_TLS_CA_FILE")
	}
	if !flags.Changed("valkey-db") {
		if dbStr := os.Getenv("VALKEY_DB"); dbStr != "" {
			db, err := strconv.Atoi(dbStr)
			if err != nil {
				return fmt.Errorf("invalid VALKEY_DB %q: %w", dbStr, err)
			}
			o.tokenStore.Valkey.DB = db
		}
	}

	if o.tokenEncryptionKey != "" {
		key, err := google.ParseEncryptionKey(o.tokenEncryptionKey)
		if err != nil {
			return err
		}
		o.tokenStore.EncryptionKey = key
	}

	return nil
}

// requireDomain returns the configured domain or an error naming the flag.
func (o *globalOptions) requireDomain() (string, error) {
	if strings.TrimSpace(o.domain) == "" {
		return "", fmt.Errorf("a domain is required: use --domain or BOOKIFY_DOMAIN")
	}
	return strings.TrimSpace(o.domain), nil
}

// newLogger builds the process logger from the logging flags.
func (o *globalOptions) newLogger() (*slog.Logger, error) {
	return logging.New(os.Stderr, o.logLevel, o.logFormat)
}

// oauthConfig returns the OAuth client configuration, or nil when no client
// is configured.
func (o *globalOptions) oauthConfig() (*oauth2.Config, error) {
	if o.googleClientID == "" && o.googleClientSecret == "" {
		return nil, nil
	}
	return google.NewOAuthConfig(o.googleClientID, o.googleClientSecret, o.googleRedirectURL)
}

// app holds the collaborators one command invocation works with.
type app struct {
	logger  logging.Logger
	store   google.TokenStore
	oauth   *oauth2.Config
	revoker *google.Revoker
	service *booking.Service
	audit   *instrumentation.AuditLogger
}

// appOptions carries the optional instrumentation of an app.
type appOptions struct {
	metrics *instrumentation.Metrics

	// audit enables audit logging of booking changes when set.
	audit *instrumentation.AuditLoggingConfig
}

// newApp wires the token store, the Google adapters and the booking service.
func newApp(ctx context.Context, opts appOptions) (*app, error) {
	slogger, err := globals.newLogger()
	if err != nil {
		return nil, err
	}
	logger := logging.NewSlogAdapter(slogger)

	oauthConf, err := globals.oauthConfig()
	if err != nil {
		return nil, err
	}

	store, err := google.NewTokenStore(ctx, globals.tokenStore)
	if err != nil {
		return nil, fmt.Errorf("failed to create token store: %w", err)
	}

	googleLogger := logger.With("component", "google")
	tokens := google.NewStoreTokenProvider(store, oauthConf, googleLogger)
	revoker := google.NewRevoker(store,
		google.WithRevokeLogger(googleLogger),
		google.WithRevokeMetrics(opts.metrics),
	)

	dirConfig, err := directory.ConfigFromEnv()
	if err != nil {
		_ = google.CloseTokenStore(store)
		return nil, err
	}
	if dirConfig.Account == "" {
		dirConfig.Account = globals.account
	}
	rooms, err := directory.New(tokens, dirConfig, opts.metrics, logger.With("component", "directory"))
	if err != nil {
		_ = google.CloseTokenStore(store)
		return nil, fmt.Errorf("failed to create room directory: %w", err)
	}

	gateway := calendar.NewGateway(tokens, calendar.ConfigFromEnv(), opts.metrics, logger.With("component", "calendar"))

	serviceOpts := []booking.Option{
		booking.WithLogger(logger.With("component", "booking")),
		booking.WithMetrics(opts.metrics),
	}
	var audit *instrumentation.AuditLogger
	if opts.audit != nil {
		audit = instrumentation.NewAuditLoggerWithConfig(slogger, *opts.audit)
		serviceOpts = append(serviceOpts, booking.WithAuditLogger(audit))
	}
	service, err := booking.NewService(booking.Dependencies{
		Directory:   rooms,
		FreeBusy:    gateway,
		Events:      gateway,
		Credentials: revoker,
	}, serviceOpts...)
	if err != nil {
		_ = google.CloseTokenStore(store)
		return nil, err
	}

	return &app{
		logger:  logger,
		store:   store,
		oauth:   oauthConf,
		revoker: revoker,
		service: service,
		audit:   audit,
	}, nil
}

// credential is the credential of the configured account.
func (a *app) credential() booking.Credential {
	return booking.NewCredential(globals.account)
}

// Close releases the token store.
func (a *app) Close() error {
	return google.CloseTokenStore(a.store)
}

// parseCommaSeparatedList parses a comma-separated string into a slice,
// trimming whitespace from each element and filtering out empty strings.
// Returns nil if the input is empty or contains only whitespace/commas.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
