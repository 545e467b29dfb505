package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/bookify/internal/booking"
	"github.com/teemow/bookify/internal/google"
	"github.com/teemow/bookify/internal/logging"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the Google grant of an account",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthAccountsCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize an account with Google",
		Long: `Prints the Google authorization URL for the account, waits for the
authorization code on stdin and stores the resulting token.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			conf, err := globals.oauthConfig()
			if err != nil {
				return err
			}
			if conf == nil {
				return fmt.Errorf("google OAuth client is not configured; set --google-client-id and --google-client-secret")
			}

			store, err := google.NewTokenStore(ctx, globals.tokenStore)
			if err != nil {
				return err
			}
			defer func() { _ = google.CloseTokenStore(store) }()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Open this URL to authorize account %q:\n\n%s\n\n", globals.account, google.AuthURL(conf, globals.account))
			fmt.Fprint(out, "Enter the authorization code: ")

			code, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			code = strings.TrimSpace(code)
			if code == "" {
				if err != nil {
					return fmt.Errorf("failed to read authorization code: %w", err)
				}
				return fmt.Errorf("authorization code is empty")
			}

			if err := google.Exchange(ctx, conf, store, globals.account, code); err != nil {
				return err
			}

			fmt.Fprintf(out, "Account %q is authorized.\n", globals.account)
			return nil
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether an account has a stored grant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := google.NewTokenStore(ctx, globals.tokenStore)
			if err != nil {
				return err
			}
			defer func() { _ = google.CloseTokenStore(store) }()

			if store.Has(ctx, globals.account) {
				fmt.Fprintf(cmd.OutOrStdout(), "Account %q is authorized.\n", globals.account)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %q is not authorized. Run 'bookify auth login'.\n", globals.account)
			return nil
		},
	}
}

func newAuthAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List every account with a stored grant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := google.NewTokenStore(ctx, globals.tokenStore)
			if err != nil {
				return err
			}
			defer func() { _ = google.CloseTokenStore(store) }()

			accounts, err := google.ListAccounts(ctx, store)
			if err != nil {
				return err
			}
			for _, account := range accounts {
				fmt.Fprintln(cmd.OutOrStdout(), account)
			}
			return nil
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke and forget the grant of an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			slogger, err := globals.newLogger()
			if err != nil {
				return err
			}

			store, err := google.NewTokenStore(ctx, globals.tokenStore)
			if err != nil {
				return err
			}
			defer func() { _ = google.CloseTokenStore(store) }()

			if !store.Has(ctx, globals.account) {
				return fmt.Errorf("no token stored for account %q", globals.account)
			}

			revoker := google.NewRevoker(store, google.WithRevokeLogger(logging.NewSlogAdapter(slogger)))
			if err := revoker.Revoke(ctx, booking.NewCredential(globals.account)); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Account %q is logged out.\n", globals.account)
			return nil
		},
	}
}
