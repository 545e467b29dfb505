package common

import (
	"context"

	"github.com/teemow/bookify/internal/server"
)

// GetAccountFromArgs picks the account whose Google grant a tool call uses:
// the proxy account on ctx, then the "account" argument, then fallback.
// Empty values are skipped.
func GetAccountFromArgs(ctx context.Context, args map[string]any, fallback string) string {
	if account, ok := server.AccountFromContext(ctx); ok {
		return account
	}
	if account, _ := args["account"].(string); account != "" {
		return account
	}
	return fallback
}
