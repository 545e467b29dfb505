package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// rootCmd is the bookify command; subcommands are added in init.
var rootCmd = &cobra.Command{
	Use:   "bookify",
	Short: "Finds free meeting rooms and books them in Google Calendar",
	Long: `bookify finds free meeting rooms in a Google Workspace domain and manages
room bookings in Google Calendar.

It can run as:
  - A CLI for availability searches and bookings
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return globals.loadEnv(cmd)
	},
}

var version = "dev"

// SetVersion sets the version reported by --version and the version command.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute runs the command line and returns the process exit code. ctx
// reaches every command through cmd.Context().
func Execute(ctx context.Context) int {
	rootCmd.SetVersionTemplate(`{{printf "bookify version %s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func init() {
	globals.addFlags(rootCmd)

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRoomsCmd())
	rootCmd.AddCommand(newBookingsCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
