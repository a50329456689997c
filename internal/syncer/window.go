package syncer

import (
	"fmt"
	"time"

	"github.com/guilherme-santos/syncstatus"
)

// WithinWindow reports whether now falls inside the activation window of
// the event, which opens lead before the start and closes at the end, both
// boundaries included. A nil event has no window.
func WithinWindow(now time.Time, event *syncstatus.Event, lead time.Duration) (bool, error) {
	if lead < 0 {
		return false, fmt.Errorf("lead must not be negative, got %s", lead)
	}
	if event == nil {
		return false, nil
	}

	startsAt, err := event.StartsAt()
	if err != nil {
		return false, fmt.Errorf("event start: %w", err)
	}
	endsAt, err := event.EndsAt()
	if err != nil {
		return false, fmt.Errorf("event end: %w", err)
	}

	return startsAt.Sub(now) <= lead && !now.After(endsAt), nil
}
