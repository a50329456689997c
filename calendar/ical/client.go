package ical

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"google.golang.org/api/calendar/v3"

	"github.com/guilherme-santos/syncstatus"
)

// Client reads events from an ICS feed. The calendar ID is the feed URL.
type Client struct {
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

func NewClient(httpClient *http.Client, logger *zap.SugaredLogger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c Client) ListUpcoming(ctx context.Context, cal *syncstatus.Calendar, from time.Time, max int64) ([]*calendar.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL(cal.ID), nil)
	if err != nil {
		return nil, fmt.Errorf("ical: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ical: fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ical: fetching feed: unexpected status %s", resp.Status)
	}

	feed, err := ics.ParseCalendar(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ical: parsing feed: %w", err)
	}

	var events []*calendar.Event
	for _, ev := range feed.Events() {
		startsAt, err := ev.GetStartAt()
		if err != nil {
			c.logger.Debugf("ical: %s: skipping event %s: %v", cal, ev.Id(), err)
			continue
		}
		endsAt, err := ev.GetEndAt()
		if err != nil {
			c.logger.Debugf("ical: %s: skipping event %s: %v", cal, ev.Id(), err)
			continue
		}
		// Match the google semantics of TimeMin: the lower bound applies to
		// the event end, so in-progress events are included.
		if !endsAt.After(from) {
			continue
		}

		events = append(events, convertEvent(ev, startsAt, endsAt, cal.Account.Name))
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.DateTime < events[j].Start.DateTime
	})
	if max > 0 && int64(len(events)) > max {
		events = events[:max]
	}

	if len(events) == 0 {
		c.logger.Debugf("ical: %s: no upcoming events found", cal)
	}
	return events, nil
}

func convertEvent(ev *ics.VEvent, startsAt, endsAt time.Time, email string) *calendar.Event {
	return &calendar.Event{
		Id:           ev.Id(),
		Summary:      propValue(ev, ics.ComponentPropertySummary),
		Status:       strings.ToLower(propValue(ev, ics.ComponentProperty(ics.PropertyStatus))),
		Transparency: strings.ToLower(propValue(ev, ics.ComponentProperty(ics.PropertyTransp))),
		Visibility:   strings.ToLower(propValue(ev, ics.ComponentProperty(ics.PropertyClass))),
		Start:        eventDateTime(propValue(ev, ics.ComponentPropertyDtStart), startsAt),
		End:          eventDateTime(propValue(ev, ics.ComponentPropertyDtEnd), endsAt),
		Attendees:    attendees(ev, email),
	}
}

// eventDateTime mirrors how google represents times: date-only values go on
// Date, timed values on DateTime.
func eventDateTime(raw string, t time.Time) *calendar.EventDateTime {
	if !strings.Contains(raw, "T") {
		return &calendar.EventDateTime{Date: t.Format("2006-01-02")}
	}
	return &calendar.EventDateTime{DateTime: t.UTC().Format(time.RFC3339)}
}

func attendees(ev *ics.VEvent, email string) []*calendar.EventAttendee {
	email = strings.ToLower(strings.TrimSpace(email))

	var out []*calendar.EventAttendee
	for _, p := range ev.GetProperties(ics.ComponentPropertyAttendee) {
		addr := strings.ToLower(strings.TrimSpace(p.Value))
		addr = strings.TrimPrefix(addr, "mailto:")

		out = append(out, &calendar.EventAttendee{
			Email:          addr,
			Self:           email != "" && addr == email,
			ResponseStatus: responseStatus(p.ICalParameters["PARTSTAT"]),
		})
	}
	return out
}

func responseStatus(partstat []string) string {
	if len(partstat) == 0 {
		return "needsAction"
	}
	switch status := strings.ToLower(partstat[0]); status {
	case "needs-action":
		return "needsAction"
	default:
		return status
	}
}

func propValue(ev *ics.VEvent, prop ics.ComponentProperty) string {
	if p := ev.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}

func feedURL(id string) string {
	if rest, ok := strings.CutPrefix(id, "webcal://"); ok {
		return "https://" + rest
	}
	return id
}
