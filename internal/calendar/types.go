package calendar

import (
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/teemow/bookify/internal/booking"
)

// toEvent builds the provider event for a new booking.
func toEvent(b booking.Booking) *calendar.Event {
	event := &calendar.Event{
		Summary:     b.Title,
		Description: b.Description,
		Location:    b.Location,
		ColorId:     b.ColorID,
		Start:       toEventDateTime(b.Window.Start, b.Window.TimeZone),
		End:         toEventDateTime(b.Window.End, b.Window.TimeZone),
	}

	for _, email := range b.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}

	if b.Conference != nil {
		event.ConferenceData = &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: b.Conference.RequestID,
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: b.Conference.SolutionKey,
				},
			},
		}
	}

	return event
}

func toEventDateTime(t time.Time, timeZone string) *calendar.EventDateTime {
	return &calendar.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: timeZone,
	}
}

// toBooking converts a provider event to the core's view of it.
func toBooking(event *calendar.Event) booking.Booking {
	if event == nil {
		return booking.Booking{}
	}

	b := booking.Booking{
		ID:             event.Id,
		Title:          event.Summary,
		Description:    event.Description,
		Location:       event.Location,
		ColorID:        event.ColorId,
		ConferenceLink: conferenceLink(event),
	}

	if event.Start != nil {
		b.Window.Start = parseEventTime(event.Start)
		b.Window.TimeZone = event.Start.TimeZone
	}
	if event.End != nil {
		b.Window.End = parseEventTime(event.End)
	}

	for _, att := range event.Attendees {
		if att != nil && att.Email != "" {
			b.Attendees = append(b.Attendees, att.Email)
		}
	}

	return b
}

func parseEventTime(dt *calendar.EventDateTime) time.Time {
	if dt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, dt.DateTime); err == nil {
			return t
		}
	} else if dt.Date != "" {
		if t, err := time.Parse("2006-01-02", dt.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// conferenceLink prefers the hangout link and falls back to the first video
// entry point.
func conferenceLink(event *calendar.Event) string {
	if event.HangoutLink != "" {
		return event.HangoutLink
	}
	if event.ConferenceData != nil {
		for _, ep := range event.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				return ep.Uri
			}
		}
	}
	return ""
}

// mergeAttendees returns the attendee list for emails, reusing the existing
// attendee entries (response status, display name) where the address matches.
func mergeAttendees(existing []*calendar.EventAttendee, emails []string) []*calendar.EventAttendee {
	byEmail := make(map[string]*calendar.EventAttendee, len(existing))
	for _, att := range existing {
		if att != nil {
			byEmail[strings.ToLower(att.Email)] = att
		}
	}

	merged := make([]*calendar.EventAttendee, 0, len(emails))
	for _, email := range emails {
		if att, ok := byEmail[strings.ToLower(email)]; ok {
			merged = append(merged, att)
			continue
		}
		merged = append(merged, &calendar.EventAttendee{Email: email})
	}
	return merged
}

func toBusyIntervals(periods []*calendar.TimePeriod) ([]booking.BusyInterval, bool) {
	busy := make([]booking.BusyInterval, 0, len(periods))
	for _, p := range periods {
		start, err := time.Parse(time.RFC3339, p.Start)
		if err != nil {
			return nil, false
		}
		end, err := time.Parse(time.RFC3339, p.End)
		if err != nil {
			return nil, false
		}
		busy = append(busy, booking.BusyInterval{Start: start, End: end})
	}
	return busy, true
}
