package syncstatus

import "time"

// Event is the cleaned, flat shape of a calendar event. Start and End keep
// the provider's timestamp strings; ParseStamp turns them into instants.
type Event struct {
	Summary        string
	Start          string
	End            string
	Status         EventStatus
	Transparency   Transparency
	Visibility     Visibility
	ResponseStatus ResponseStatus
}

func (e Event) StartsAt() (time.Time, error) {
	return ParseStamp(e.Start)
}

func (e Event) EndsAt() (time.Time, error) {
	return ParseStamp(e.End)
}

type EventStatus string

func (s EventStatus) String() string {
	return string(s)
}

var (
	StatusConfirmed EventStatus = "confirmed"
	StatusTentative EventStatus = "tentative"
	StatusCancelled EventStatus = "cancelled"
)

type Transparency string

func (s Transparency) String() string {
	return string(s)
}

var (
	// Opaque events block time on the calendar, the owner shows as busy.
	Opaque Transparency = "opaque"
	// Transparent events do not block time, the owner shows as available.
	Transparent Transparency = "transparent"
)

type Visibility string

func (s Visibility) String() string {
	return string(s)
}

var (
	VisibilityDefault      Visibility = "default"
	VisibilityPublic       Visibility = "public"
	VisibilityPrivate      Visibility = "private"
	VisibilityConfidential Visibility = "confidential"
)

type ResponseStatus string

func (s ResponseStatus) String() string {
	return string(s)
}

var (
	NeedsAction ResponseStatus = "needsAction"
	Declined    ResponseStatus = "declined"
	Tentative   ResponseStatus = "tentative"
	Accepted    ResponseStatus = "accepted"
)
