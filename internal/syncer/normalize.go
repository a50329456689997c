package syncer

import (
	"google.golang.org/api/calendar/v3"

	"github.com/guilherme-santos/syncstatus"
)

// Normalize filters raw calendar events down to the ones that should drive
// the status and flattens them into the cleaned shape, preserving order.
//
// An event survives when it blocks time on the calendar (transparency is
// not transparent), is confirmed, and the owner accepted it. Events with no
// attendee list, or none marked self, are the owner's own and count as
// accepted. Private events get the default status as summary.
func Normalize(events []*calendar.Event, defaultStatus string) []syncstatus.Event {
	cleaned := make([]syncstatus.Event, 0, len(events))
	for _, ev := range events {
		transparency := syncstatus.Transparency(ev.Transparency)
		if transparency == syncstatus.Transparent {
			continue
		}
		status := syncstatus.EventStatus(ev.Status)
		if status != syncstatus.StatusConfirmed {
			continue
		}

		response, found := selfResponse(ev)
		if found && response != syncstatus.Accepted {
			continue
		}

		visibility := syncstatus.Visibility(ev.Visibility)
		summary := ev.Summary
		if visibility == syncstatus.VisibilityPrivate {
			summary = defaultStatus
		}

		cleaned = append(cleaned, syncstatus.Event{
			Summary:        summary,
			Start:          eventTime(ev.Start),
			End:            eventTime(ev.End),
			Status:         status,
			Transparency:   transparency,
			Visibility:     visibility,
			ResponseStatus: response,
		})
	}
	return cleaned
}

func selfResponse(ev *calendar.Event) (syncstatus.ResponseStatus, bool) {
	for _, att := range ev.Attendees {
		if att.Self {
			return syncstatus.ResponseStatus(att.ResponseStatus), true
		}
	}
	return "", false
}

func eventTime(dt *calendar.EventDateTime) string {
	if dt == nil {
		return ""
	}
	return dt.DateTime
}
