package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	calendar "google.golang.org/api/calendar/v3"
)

func TestToBooking_Nil(t *testing.T) {
	assert.Empty(t, toBooking(nil).ID)
}

func TestToBooking_AllDayEvent(t *testing.T) {
	b := toBooking(&calendar.Event{
		Id:    "evt-1",
		Start: &calendar.EventDateTime{Date: "2026-03-02"},
		End:   &calendar.EventDateTime{Date: "2026-03-03"},
	})
	assert.Equal(t, 2, b.Window.Start.Day())
	assert.Equal(t, 3, b.Window.End.Day())
}

func TestMergeAttendees(t *testing.T) {
	existing := []*calendar.EventAttendee{
		{Email: "John@Example.com", ResponseStatus: "accepted", DisplayName: "John"},
		{Email: "old@resource.calendar.google.com", ResponseStatus: "accepted"},
		nil,
	}

	merged := mergeAttendees(existing, []string{"john@example.com", "new@resource.calendar.google.com"})

	assert.Len(t, merged, 2)
	assert.Equal(t, "John", merged[0].DisplayName)
	assert.Equal(t, "new@resource.calendar.google.com", merged[1].Email)
	assert.Empty(t, merged[1].ResponseStatus)
}

func TestToBusyIntervals(t *testing.T) {
	busy, ok := toBusyIntervals([]*calendar.TimePeriod{{Start: "2026-03-02T10:00:00Z", End: "2026-03-02T10:30:00Z"}})
	assert.True(t, ok)
	assert.Len(t, busy, 1)

	_, ok = toBusyIntervals([]*calendar.TimePeriod{{Start: "yesterday", End: "2026-03-02T10:30:00Z"}})
	assert.False(t, ok)
}
