package booking

import (
	"context"

	"github.com/teemow/bookify/internal/instrumentation"
	"github.com/teemow/bookify/internal/logging"
)

// AuthFailureGuard revokes a caller's credential after the provider rejected
// it. It is always the last step before the failing operation returns, and it
// never retries that operation; re-authenticating is the caller's job.
type AuthFailureGuard struct {
	owner   CredentialOwner
	logger  logging.Logger
	metrics *instrumentation.Metrics
}

// NewAuthFailureGuard creates a guard that revokes through owner.
func NewAuthFailureGuard(owner CredentialOwner, logger logging.Logger, metrics *instrumentation.Metrics) *AuthFailureGuard {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &AuthFailureGuard{
		owner:   owner,
		logger:  logger,
		metrics: metrics,
	}
}

// OnAuthFailure asks the credential owner to forget cred. A failed revocation
// is logged and otherwise ignored: the triggering operation fails either way.
func (g *AuthFailureGuard) OnAuthFailure(ctx context.Context, cred Credential, reason string) {
	g.metrics.RecordCredentialRevocation(ctx, reason)

	if g.owner == nil {
		g.logger.Warn("no credential owner configured, credential not revoked",
			logging.UserHash(cred.Account()), "reason", reason)
		return
	}

	if err := g.owner.Revoke(ctx, cred); err != nil {
		g.logger.Error("failed to revoke credential",
			logging.UserHash(cred.Account()), "reason", reason, logging.Err(err))
		return
	}

	g.logger.Info("credential revoked", logging.UserHash(cred.Account()), "reason", reason)
}

// unauthorized revokes cred and returns the Unauthorized error for cause.
func (g *AuthFailureGuard) unauthorized(ctx context.Context, cred Credential, cause error) *Error {
	g.OnAuthFailure(ctx, cred, instrumentation.RevocationReasonExpired)
	return newError(KindUnauthorized, msgUnauthorized, cause)
}
