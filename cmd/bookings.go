package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/bookify/internal/booking"
)

func newBookingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Create, list, move and cancel room bookings",
	}

	cmd.AddCommand(newBookingsCreateCmd())
	cmd.AddCommand(newBookingsListCmd())
	cmd.AddCommand(newBookingsUpdateCmd())
	cmd.AddCommand(newBookingsDeleteCmd())

	return cmd
}

func newBookingsCreateCmd() *cobra.Command {
	var (
		window     windowFlags
		minSeats   int
		floor      string
		title      string
		attendees  string
		conference bool
		output     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Book the first free room that fits",
		Example: `  bookify bookings create --domain example.com --duration 45m --min-seats 6 --title "Planning"
  bookify bookings create --start 2025-01-15T14:00:00+01:00 --attendees bob@example.com,carol@example.com --conference`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			w, err := window.window(time.Now())
			if err != nil {
				return err
			}

			req := booking.BookingRequest{
				Window:         w,
				MinSeats:       minSeats,
				Floor:          floor,
				Title:          title,
				Attendees:      parseCommaSeparatedList(attendees),
				WantConference: conference,
			}

			return withDomainApp(cmd.Context(), func(ctx context.Context, a *app, domain string) error {
				result, err := a.service.Create(ctx, a.credential(), domain, req)
				if err != nil {
					return err
				}
				if output == outputJSON {
					return writeJSON(cmd.OutOrStdout(), result)
				}
				writeBooking(cmd.OutOrStdout(), result.Booking, result.RoomLabel)
				return nil
			})
		},
	}

	window.add(cmd, 30*time.Minute)
	cmd.Flags().IntVar(&minSeats, "min-seats", 0, "Minimum number of seats")
	cmd.Flags().StringVar(&floor, "floor", "", "Only rooms on this floor")
	cmd.Flags().StringVar(&title, "title", "", "Event title (default: the configured title)")
	cmd.Flags().StringVar(&attendees, "attendees", "", "Comma-separated attendee email addresses")
	cmd.Flags().BoolVar(&conference, "conference", false, "Attach a Google Meet conference")
	outputFlag(cmd, &output)

	return cmd
}

func newBookingsListCmd() *cobra.Command {
	var (
		window windowFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the room bookings in a time window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			w, err := window.window(time.Now())
			if err != nil {
				return err
			}

			return withDomainApp(cmd.Context(), func(ctx context.Context, a *app, domain string) error {
				bookings, err := a.service.ListForWindow(ctx, a.credential(), domain, w)
				if err != nil {
					return err
				}
				if output == outputJSON {
					return writeJSON(cmd.OutOrStdout(), bookings)
				}
				if len(bookings) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No room bookings in this window.")
					return nil
				}
				return writeRoomBookings(cmd.OutOrStdout(), bookings)
			})
		},
	}

	window.add(cmd, 7*24*time.Hour)
	outputFlag(cmd, &output)

	return cmd
}

func newBookingsUpdateCmd() *cobra.Command {
	var (
		room   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "update BOOKING_ID",
		Short: "Move a booking to another room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			if room == "" {
				return fmt.Errorf("--room is required")
			}

			return withDomainApp(cmd.Context(), func(ctx context.Context, a *app, domain string) error {
				result, err := a.service.Update(ctx, a.credential(), domain, args[0], room, 0)
				if err != nil {
					return err
				}
				if output == outputJSON {
					return writeJSON(cmd.OutOrStdout(), result)
				}
				if !result.Updated {
					fmt.Fprintln(cmd.OutOrStdout(), result.Message)
					if len(result.AvailableRooms) > 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "\nRooms free for this booking:")
						return writeRooms(cmd.OutOrStdout(), result.AvailableRooms)
					}
					return nil
				}
				if result.Booking != nil {
					writeBooking(cmd.OutOrStdout(), *result.Booking, result.RoomLabel)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&room, "room", "", "Email of the room to move the booking to")
	outputFlag(cmd, &output)

	return cmd
}

func newBookingsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete BOOKING_ID...",
		Short: "Cancel one or more bookings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			var failed int
			for _, id := range args {
				_, err := a.service.Delete(ctx, a.credential(), id)
				switch {
				case err == nil:
					fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
				case booking.KindOf(err) == booking.KindEventAlreadyDeleted:
					fmt.Fprintf(cmd.OutOrStdout(), "already deleted %s\n", id)
				case credentialLost(err):
					return err
				default:
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "failed %s: %v\n", id, err)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d deletes failed", failed, len(args))
			}
			return nil
		},
	}

	return cmd
}

// credentialLost reports whether err revoked the caller's grant, after which
// no further calls can succeed.
func credentialLost(err error) bool {
	kind := booking.KindOf(err)
	return kind == booking.KindUnauthorized || kind == booking.KindForbidden
}
