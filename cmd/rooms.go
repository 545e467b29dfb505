package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newRoomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Search meeting rooms of a domain",
	}

	cmd.AddCommand(newRoomsAvailableCmd())
	cmd.AddCommand(newRoomsListCmd())
	cmd.AddCommand(newRoomsFloorsCmd())

	return cmd
}

func newRoomsAvailableCmd() *cobra.Command {
	var (
		window   windowFlags
		minSeats int
		floor    string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "available",
		Short: "List rooms that are free for a time window",
		Example: `  bookify rooms available --domain example.com --duration 30m --min-seats 4
  bookify rooms available --start 2025-01-15T14:00:00+01:00 --end 2025-01-15T15:00:00+01:00 --floor 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			domain, err := globals.requireDomain()
			if err != nil {
				return err
			}
			w, err := window.window(time.Now())
			if err != nil {
				return err
			}
			if minSeats < 0 {
				return fmt.Errorf("--min-seats must not be negative")
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			rooms, err := a.service.FindAvailable(ctx, a.credential(), domain, w, minSeats, floor)
			if err != nil {
				return err
			}

			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), rooms)
			}
			if len(rooms) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No room is available for this window.")
				return nil
			}
			return writeRooms(cmd.OutOrStdout(), rooms)
		},
	}

	window.add(cmd, 30*time.Minute)
	cmd.Flags().IntVar(&minSeats, "min-seats", 0, "Minimum number of seats")
	cmd.Flags().StringVar(&floor, "floor", "", "Only rooms on this floor")
	outputFlag(cmd, &output)

	return cmd
}

func newRoomsListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all rooms of a domain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			return withDomainApp(cmd.Context(), func(ctx context.Context, a *app, domain string) error {
				rooms, err := a.service.ListRooms(ctx, domain)
				if err != nil {
					return err
				}
				if output == outputJSON {
					return writeJSON(cmd.OutOrStdout(), rooms)
				}
				return writeRooms(cmd.OutOrStdout(), rooms)
			})
		},
	}

	outputFlag(cmd, &output)
	return cmd
}

func newRoomsFloorsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "floors",
		Short: "List the floor labels of a domain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			return withDomainApp(cmd.Context(), func(ctx context.Context, a *app, domain string) error {
				floors, err := a.service.ListFloors(ctx, domain)
				if err != nil {
					return err
				}
				if output == outputJSON {
					return writeJSON(cmd.OutOrStdout(), floors)
				}
				for _, f := range floors {
					fmt.Fprintln(cmd.OutOrStdout(), f)
				}
				return nil
			})
		},
	}

	outputFlag(cmd, &output)
	return cmd
}

// withDomainApp runs fn with a wired app and the configured domain.
func withDomainApp(ctx context.Context, fn func(ctx context.Context, a *app, domain string) error) error {
	domain, err := globals.requireDomain()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return fn(ctx, a, domain)
}
