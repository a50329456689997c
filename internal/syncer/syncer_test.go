package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/guilherme-santos/syncstatus"
	"github.com/guilherme-santos/syncstatus/chat/slack"
)

type fakeStorage struct {
	acc   *syncstatus.Account
	err   error
	gotID string
}

func (s *fakeStorage) Account(_ context.Context, id string) (*syncstatus.Account, error) {
	s.gotID = id
	if s.err != nil {
		return nil, s.err
	}
	return s.acc, nil
}

type fakeProvider struct {
	events  []*calendar.Event
	err     error
	gotCal  *syncstatus.Calendar
	gotFrom time.Time
	gotMax  int64
}

func (p *fakeProvider) ListUpcoming(_ context.Context, cal *syncstatus.Calendar, from time.Time, max int64) ([]*calendar.Event, error) {
	p.gotCal = cal
	p.gotFrom = from
	p.gotMax = max
	return p.events, p.err
}

type fakeMux struct {
	provider syncstatus.Provider
}

func (m fakeMux) Get(platform string) (syncstatus.Provider, error) {
	if m.provider == nil {
		return nil, fmt.Errorf("calendar %q is not implemented", platform)
	}
	return m.provider, nil
}

type sinkCall struct {
	text       string
	emoji      string
	expiration int64
}

type fakeSink struct {
	err   error
	calls []sinkCall
}

func (s *fakeSink) SetStatus(_ context.Context, text, emoji string, expiration int64) error {
	s.calls = append(s.calls, sinkCall{text, emoji, expiration})
	return s.err
}

func newTestSyncer(provider syncstatus.Provider, storage Storage, sink StatusSink) *Syncer {
	s := New(nil, fakeMux{provider}, storage, sink)
	s.Platform = "google"
	s.Account = "me@example.com"
	s.CalendarID = "primary"
	s.DefaultStatus = "busy"
	s.Emoji = ":spiral_calendar_pad:"
	s.Lead = 5 * time.Minute
	return s
}

func testAccount() *syncstatus.Account {
	return &syncstatus.Account{
		Platform: "google",
		Name:     "me@example.com",
		Auth:     `{"access_token":"abc"}`,
	}
}

func upcomingEvent(summary string, start, end time.Time) *calendar.Event {
	return &calendar.Event{
		Summary: summary,
		Status:  "confirmed",
		Start:   &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:     &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
		Attendees: []*calendar.EventAttendee{
			{Email: "me@example.com", Self: true, ResponseStatus: "accepted"},
		},
	}
}

func TestSyncSetsStatus(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	end := now.Add(33 * time.Minute)

	provider := &fakeProvider{events: []*calendar.Event{
		upcomingEvent("Team Sync", now.Add(3*time.Minute), end),
	}}
	storage := &fakeStorage{acc: testAccount()}
	sink := &fakeSink{}

	s := newTestSyncer(provider, storage, sink)
	if err := s.Sync(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if storage.gotID != "google/me@example.com" {
		t.Errorf("expected account google/me@example.com to be loaded, got %q", storage.gotID)
	}
	if provider.gotCal.ID != "primary" {
		t.Errorf("expected calendar primary, got %q", provider.gotCal.ID)
	}
	if provider.gotCal.Account.Name != "me@example.com" {
		t.Errorf("expected account me@example.com, got %q", provider.gotCal.Account.Name)
	}
	if provider.gotFrom.IsZero() {
		t.Error("expected the provider to receive a lower bound")
	}
	if provider.gotMax != 10 {
		t.Errorf("expected default of 10 events, got %d", provider.gotMax)
	}

	if len(sink.calls) != 1 {
		t.Fatalf("expected one status update, got %d", len(sink.calls))
	}
	call := sink.calls[0]
	if call.text != "Meeting: Team Sync" {
		t.Errorf("expected status Meeting: Team Sync, got %q", call.text)
	}
	if call.emoji != ":spiral_calendar_pad:" {
		t.Errorf("expected emoji :spiral_calendar_pad:, got %q", call.emoji)
	}
	if call.expiration != end.Unix() {
		t.Errorf("expected expiration %d, got %d", end.Unix(), call.expiration)
	}
}

func TestSyncPrivateEvent(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	ev := upcomingEvent("Job interview", now.Add(time.Minute), now.Add(time.Hour))
	ev.Visibility = "private"

	provider := &fakeProvider{events: []*calendar.Event{ev}}
	sink := &fakeSink{}

	s := newTestSyncer(provider, &fakeStorage{acc: testAccount()}, sink)
	if err := s.Sync(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sink.calls) != 1 {
		t.Fatalf("expected one status update, got %d", len(sink.calls))
	}
	if sink.calls[0].text != "Meeting: busy" {
		t.Errorf("expected status Meeting: busy, got %q", sink.calls[0].text)
	}
}

func TestSyncEmptySummary(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	provider := &fakeProvider{events: []*calendar.Event{
		upcomingEvent("", now.Add(time.Minute), now.Add(time.Hour)),
	}}
	sink := &fakeSink{}

	s := newTestSyncer(provider, &fakeStorage{acc: testAccount()}, sink)
	if err := s.Sync(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sink.calls) != 1 {
		t.Fatalf("expected one status update, got %d", len(sink.calls))
	}
	if sink.calls[0].text != "Meeting: busy" {
		t.Errorf("expected status Meeting: busy, got %q", sink.calls[0].text)
	}
}

func TestSyncSkipsTransparentFirst(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	focus := upcomingEvent("Focus time", now.Add(time.Minute), now.Add(2*time.Hour))
	focus.Transparency = "transparent"
	oneOnOne := upcomingEvent("1:1", now.Add(4*time.Minute), now.Add(30*time.Minute))

	provider := &fakeProvider{events: []*calendar.Event{focus, oneOnOne}}
	sink := &fakeSink{}

	s := newTestSyncer(provider, &fakeStorage{acc: testAccount()}, sink)
	if err := s.Sync(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sink.calls) != 1 {
		t.Fatalf("expected one status update, got %d", len(sink.calls))
	}
	if sink.calls[0].text != "Meeting: 1:1" {
		t.Errorf("expected status Meeting: 1:1, got %q", sink.calls[0].text)
	}
}

func TestSyncNotClose(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	provider := &fakeProvider{events: []*calendar.Event{
		upcomingEvent("Team Sync", now.Add(2*time.Hour), now.Add(3*time.Hour)),
	}}
	sink := &fakeSink{}

	s := newTestSyncer(provider, &fakeStorage{acc: testAccount()}, sink)
	if err := s.Sync(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sink.calls) != 0 {
		t.Errorf("expected the status to be left alone, got %+v", sink.calls)
	}
}

func TestSyncNoEvents(t *testing.T) {
	provider := &fakeProvider{}
	sink := &fakeSink{}

	s := newTestSyncer(provider, &fakeStorage{acc: testAccount()}, sink)
	if err := s.Sync(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sink.calls) != 0 {
		t.Errorf("expected the status to be left alone, got %+v", sink.calls)
	}
}

func TestSyncMaxEvents(t *testing.T) {
	provider := &fakeProvider{}

	s := newTestSyncer(provider, &fakeStorage{acc: testAccount()}, &fakeSink{})
	s.MaxEvents = 3
	if err := s.Sync(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.gotMax != 3 {
		t.Errorf("expected 3 events to be requested, got %d", provider.gotMax)
	}
}

func TestSyncRejectedStatus(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	provider := &fakeProvider{events: []*calendar.Event{
		upcomingEvent("Team Sync", now.Add(time.Minute), now.Add(time.Hour)),
	}}
	sink := &fakeSink{err: &slack.APIError{Code: "profile_status_set_failed"}}

	s := newTestSyncer(provider, &fakeStorage{acc: testAccount()}, sink)
	if err := s.Sync(context.Background()); err != nil {
		t.Fatalf("expected rejections to be swallowed, got %v", err)
	}
	if len(sink.calls) != 1 {
		t.Errorf("expected one attempt, got %d", len(sink.calls))
	}
}

func TestSyncSinkUnreachable(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	provider := &fakeProvider{events: []*calendar.Event{
		upcomingEvent("Team Sync", now.Add(time.Minute), now.Add(time.Hour)),
	}}
	sink := &fakeSink{err: errors.New("connection reset by peer")}

	s := newTestSyncer(provider, &fakeStorage{acc: testAccount()}, sink)
	err := s.Sync(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "unable to set status") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSyncStorageError(t *testing.T) {
	storage := &fakeStorage{err: errors.New("database is locked")}

	s := newTestSyncer(&fakeProvider{}, storage, &fakeSink{})
	err := s.Sync(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "unable to get account google/me@example.com") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSyncProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("backend error")}

	s := newTestSyncer(provider, &fakeStorage{acc: testAccount()}, &fakeSink{})
	err := s.Sync(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "unable to get events") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSyncUnknownPlatform(t *testing.T) {
	s := newTestSyncer(nil, &fakeStorage{acc: testAccount()}, &fakeSink{})
	err := s.Sync(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), `calendar "google" is not implemented`) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSyncAllDayEvent(t *testing.T) {
	ev := &calendar.Event{
		Summary: "Conference",
		Status:  "confirmed",
		Start:   &calendar.EventDateTime{Date: "2021-06-01"},
		End:     &calendar.EventDateTime{Date: "2021-06-02"},
	}
	provider := &fakeProvider{events: []*calendar.Event{ev}}
	sink := &fakeSink{}

	s := newTestSyncer(provider, &fakeStorage{acc: testAccount()}, sink)
	if err := s.Sync(context.Background()); err == nil {
		t.Fatal("expected an error for an event without times")
	}
	if len(sink.calls) != 0 {
		t.Errorf("expected the status to be left alone, got %+v", sink.calls)
	}
}
