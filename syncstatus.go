package syncstatus

import (
	"context"
	"time"

	"google.golang.org/api/calendar/v3"
)

type Account struct {
	Platform string
	Name     string
	Auth     string
}

func (a Account) ID() string {
	return a.Platform + "/" + a.Name
}

// Calendar identifies one calendar within an account, e.g. "primary" on
// google or the feed URL on ics.
type Calendar struct {
	ID      string
	Account Account
}

func (c Calendar) String() string {
	return c.Account.ID() + "/" + c.ID
}

type Mux interface {
	Get(platform string) (Provider, error)
}

// Provider lists events from a calendar platform. Events come back in the
// google calendar API shape regardless of platform, ordered by start time
// ascending, with recurring events already expanded into single instances.
// The from bound applies to the event end, so in-progress events are
// included.
type Provider interface {
	ListUpcoming(_ context.Context, _ *Calendar, from time.Time, max int64) ([]*calendar.Event, error)
}
