package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/bookify/internal/booking"
)

// Output formats of the CLI commands.
const (
	outputText = "text"
	outputJSON = "json"
)

// outputFlag adds -o/--output to cmd.
func outputFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "output", "o", outputText, "Output format: text or json")
}

func validateOutput(format string) error {
	switch format {
	case outputText, outputJSON:
		return nil
	default:
		return fmt.Errorf("invalid output format %q, must be one of: text, json", format)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// windowFlags are the flags describing a time window.
type windowFlags struct {
	start    string
	end      string
	duration time.Duration
	timeZone string
}

func (f *windowFlags) add(cmd *cobra.Command, defaultDuration time.Duration) {
	cmd.Flags().StringVar(&f.start, "start", "", "Start time (RFC3339, e.g. 2025-01-15T14:00:00+01:00; default: now)")
	cmd.Flags().StringVar(&f.end, "end", "", "End time (RFC3339); overrides --duration")
	cmd.Flags().DurationVar(&f.duration, "duration", defaultDuration, "Length of the window when --end is not set")
	cmd.Flags().StringVar(&f.timeZone, "time-zone", "", "IANA time zone of the window (default: the local zone)")
}

// window resolves the flags into a TimeWindow. now is used when no start is given.
func (f *windowFlags) window(now time.Time) (booking.TimeWindow, error) {
	loc := time.Local
	if f.timeZone != "" {
		var err error
		if loc, err = time.LoadLocation(f.timeZone); err != nil {
			return booking.TimeWindow{}, fmt.Errorf("invalid time zone %q: %w", f.timeZone, err)
		}
	}

	start := now.In(loc).Truncate(time.Minute)
	if f.start != "" {
		var err error
		if start, err = time.Parse(time.RFC3339, f.start); err != nil {
			return booking.TimeWindow{}, fmt.Errorf("invalid start format: %w", err)
		}
	}

	end := start.Add(f.duration)
	if f.end != "" {
		var err error
		if end, err = time.Parse(time.RFC3339, f.end); err != nil {
			return booking.TimeWindow{}, fmt.Errorf("invalid end format: %w", err)
		}
	}

	if !end.After(start) {
		return booking.TimeWindow{}, fmt.Errorf("end must be after start")
	}

	return booking.TimeWindow{Start: start, End: end, TimeZone: f.timeZone}, nil
}

func writeRooms(w io.Writer, rooms []booking.Room) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSEATS\tFLOOR\tEMAIL")
	for _, r := range rooms {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", r.Name, r.Seats, r.Floor, r.Email)
	}
	return tw.Flush()
}

func writeRoomBookings(w io.Writer, bookings []booking.RoomBooking) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tROOM\tSEATS\tFLOOR\tSTART\tEND\tCONFERENCE")
	for _, b := range bookings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			b.ID, b.Title, b.Room, b.Seats, b.Floor,
			b.Start.Format(time.RFC3339), b.End.Format(time.RFC3339), b.Conference)
	}
	return tw.Flush()
}

func writeBooking(w io.Writer, b booking.Booking, roomLabel string) {
	fmt.Fprintf(w, "Booking:  %s\n", b.ID)
	fmt.Fprintf(w, "Title:    %s\n", b.Title)
	fmt.Fprintf(w, "Room:     %s\n", roomLabel)
	fmt.Fprintf(w, "When:     %s - %s\n", b.Window.Start.Format(time.RFC3339), b.Window.End.Format(time.RFC3339))
	if len(b.Attendees) > 0 {
		fmt.Fprintf(w, "Guests:   %s\n", strings.Join(b.Attendees, ", "))
	}
	if b.ConferenceLink != "" {
		fmt.Fprintf(w, "Meet:     %s\n", b.ConferenceLink)
	}
}
