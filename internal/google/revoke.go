package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/teemow/bookify/internal/booking"
	"github.com/teemow/bookify/internal/instrumentation"
	"github.com/teemow/bookify/internal/logging"
)

// RevokeURL is Google's OAuth token revocation endpoint.
const RevokeURL = "https://oauth2.googleapis.com/revoke"

// Revoker forgets an account's token and revokes it with Google.
// It is the CredentialOwner of the booking core.
type Revoker struct {
	store      TokenStore
	httpClient *http.Client
	endpoint   string
	logger     logging.Logger
	metrics    *instrumentation.Metrics
}

// RevokerOption configures a Revoker.
type RevokerOption func(*Revoker)

// WithRevokeEndpoint overrides the revocation endpoint.
func WithRevokeEndpoint(endpoint string) RevokerOption {
	return func(r *Revoker) { r.endpoint = endpoint }
}

// WithRevokeHTTPClient sets the HTTP client used for revocation.
func WithRevokeHTTPClient(client *http.Client) RevokerOption {
	return func(r *Revoker) { r.httpClient = client }
}

// WithRevokeLogger sets the logger.
func WithRevokeLogger(logger logging.Logger) RevokerOption {
	return func(r *Revoker) { r.logger = logger }
}

// WithRevokeMetrics records revocation calls as Google API operations.
func WithRevokeMetrics(metrics *instrumentation.Metrics) RevokerOption {
	return func(r *Revoker) { r.metrics = metrics }
}

// NewRevoker creates a Revoker over store.
func NewRevoker(store TokenStore, opts ...RevokerOption) *Revoker {
	r := &Revoker{
		store:      store,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   RevokeURL,
		logger:     logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ booking.CredentialOwner = (*Revoker)(nil)

// Revoke forgets the credential's token. Remote revocation is best effort:
// a failure is logged and the local token is deleted anyway.
func (r *Revoker) Revoke(ctx context.Context, cred booking.Credential) error {
	account := cred.Account()

	token, err := r.store.Get(ctx, account)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load token for revocation: %w", err)
	}

	// Revoking the refresh token also invalidates its access tokens.
	value := token.RefreshToken
	if value == "" {
		value = token.AccessToken
	}
	if value != "" {
		if err := r.revokeRemote(ctx, value); err != nil {
			r.logger.Warn("remote token revocation failed", logging.UserHash(account), logging.Err(err))
		}
	}

	if err := r.store.Delete(ctx, account); err != nil {
		return fmt.Errorf("failed to delete token for account: %w", err)
	}
	return nil
}

func (r *Revoker) revokeRemote(ctx context.Context, token string) (err error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceOAuth, instrumentation.OperationRevoke)
	defer span.End()

	start := time.Now()
	defer func() {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		r.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceOAuth, instrumentation.OperationRevoke, status, time.Since(start))
	}()

	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoke request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// 400 means the token is already invalid, which is the goal.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("revoke endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
