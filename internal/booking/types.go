package booking

import (
	"strings"
	"time"
)

// Room is a bookable resource calendar as reported by the RoomDirectory.
type Room struct {
	ID       string `json:"id"`
	Email    string `json:"email"` // resource calendar address, unique per room
	Name     string `json:"name"`
	Seats    int    `json:"seats"`
	Floor    string `json:"floor"`
	Building string `json:"building,omitempty"`
}

// TimeWindow is a half-open interval [Start, End) in a caller-supplied zone.
// Start < End is not checked here; the provider rejects malformed windows.
type TimeWindow struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	TimeZone string    `json:"timeZone,omitempty"`
}

// Overlaps reports whether busy intersects the window. Touching endpoints do
// not count.
func (w TimeWindow) Overlaps(busy BusyInterval) bool {
	return busy.Start.Before(w.End) && busy.End.After(w.Start)
}

// BusyInterval is an occupied range reported for one room.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// BookingRequest describes a new booking.
type BookingRequest struct {
	Window         TimeWindow
	MinSeats       int
	Floor          string
	Title          string
	Attendees      []string
	WantConference bool
}

// ConferenceRequest asks the provider to generate a video-conference link.
// RequestID is the provider's idempotency key for that side effect.
type ConferenceRequest struct {
	RequestID   string
	SolutionKey string
}

// Booking is a provider event as seen by this package.
type Booking struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	ColorID     string     `json:"colorId,omitempty"`
	Window      TimeWindow `json:"window"`
	Attendees   []string   `json:"attendees,omitempty"`

	// Conference is only set on drafts that request a new conference link.
	Conference *ConferenceRequest `json:"-"`

	// ConferenceLink is the link the provider attached, if any.
	ConferenceLink string `json:"conferenceLink,omitempty"`
}

// ConferenceCode returns the last path segment of the conference link.
func (b Booking) ConferenceCode() string {
	if b.ConferenceLink == "" {
		return ""
	}
	link := strings.TrimRight(b.ConferenceLink, "/")
	return link[strings.LastIndex(link, "/")+1:]
}

// CreateResult is the committed booking plus what the decision was based on.
type CreateResult struct {
	Booking Booking `json:"booking"`
	Room    Room    `json:"room"`
	// RoomLabel is the room name parsed from the committed location.
	RoomLabel string `json:"roomLabel"`
	// AvailableRooms are all rooms that were free when the pick was made.
	AvailableRooms []Room `json:"availableRooms"`
}

// RoomBooking is one listed event projected onto the room it occupies.
type RoomBooking struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Room       string    `json:"room"`
	Seats      int       `json:"seats"`
	Floor      string    `json:"floor"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Conference string    `json:"conference,omitempty"`
}

// UpdateResult reports the outcome of moving a booking to another room.
// When Updated is false the booking was left untouched and AvailableRooms
// lists the rooms the caller may pick instead.
type UpdateResult struct {
	Updated        bool   `json:"updated"`
	Message        string `json:"message,omitempty"`
	AvailableRooms []Room `json:"availableRooms,omitempty"`

	Booking   *Booking `json:"booking,omitempty"`
	Room      *Room    `json:"room,omitempty"`
	RoomLabel string   `json:"roomLabel,omitempty"`
}

// DeleteResult reports a successful delete.
type DeleteResult struct {
	Deleted bool `json:"deleted"`
}

// Credential is the caller's handle on an OAuth grant. The core never
// inspects it; it only hands it to collaborators and, on an authorization
// failure, to the CredentialOwner for revocation.
type Credential struct {
	account string
}

// NewCredential returns the credential for the named account.
func NewCredential(account string) Credential {
	return Credential{account: account}
}

// Account returns the account the credential belongs to.
func (c Credential) Account() string {
	return c.account
}
