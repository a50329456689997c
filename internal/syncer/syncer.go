package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/guilherme-santos/syncstatus"
	"github.com/guilherme-santos/syncstatus/chat/slack"
)

type (
	Mux      = syncstatus.Mux
	Calendar = syncstatus.Calendar
	Event    = syncstatus.Event
)

type Storage interface {
	Account(_ context.Context, id string) (*syncstatus.Account, error)
}

// StatusSink publishes the status on the chat platform. Rejections
// reported by the platform itself come back as *slack.APIError, anything
// else is a transport failure.
type StatusSink interface {
	SetStatus(_ context.Context, text, emoji string, expiration int64) error
}

const statusPrefix = "Meeting: "

type Syncer struct {
	logger  *zap.SugaredLogger
	mux     Mux
	storage Storage
	sink    StatusSink

	Platform   string
	Account    string
	CalendarID string

	DefaultStatus string
	Emoji         string
	Lead          time.Duration
	MaxEvents     int64
}

func New(logger *zap.SugaredLogger, providers Mux, storage Storage, sink StatusSink) *Syncer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Syncer{
		logger:  logger,
		mux:     providers,
		storage: storage,
		sink:    sink,
	}
}

// Sync runs a single pass: it fetches the upcoming events, keeps the ones
// that matter and, when the first of them is close enough or already
// running, mirrors it to the chat status with an expiration at the event
// end. Outside the window the status is left alone.
func (s Syncer) Sync(ctx context.Context) error {
	now := time.Now().UTC()

	accID := s.Platform + "/" + s.Account
	acc, err := s.storage.Account(ctx, accID)
	if err != nil {
		return fmt.Errorf("unable to get account %s: %w", accID, err)
	}

	provider, err := s.mux.Get(acc.Platform)
	if err != nil {
		return err
	}

	cal := &Calendar{ID: s.CalendarID, Account: *acc}
	events, err := provider.ListUpcoming(ctx, cal, now, s.maxEvents())
	if err != nil {
		return fmt.Errorf("unable to get events from %s: %w", cal, err)
	}

	cleaned := Normalize(events, s.DefaultStatus)
	var next *Event
	if len(cleaned) > 0 {
		next = &cleaned[0]
	}

	within, err := WithinWindow(now, next, s.Lead)
	if err != nil {
		return err
	}
	if !within {
		s.logger.Infof("still not close to the next event")
		return nil
	}

	endsAt, err := next.EndsAt()
	if err != nil {
		return fmt.Errorf("event end: %w", err)
	}

	text := statusPrefix + next.Summary
	if next.Summary == "" {
		text = statusPrefix + s.DefaultStatus
	}

	err = s.sink.SetStatus(ctx, text, s.Emoji, endsAt.Unix())
	if err != nil {
		var apiErr *slack.APIError
		if errors.As(err, &apiErr) {
			s.logger.Warnf("something went wrong: %v", apiErr)
			return nil
		}
		return fmt.Errorf("unable to set status: %w", err)
	}

	s.logger.Infof("status was set to %q until %s", text, formatDateTime(endsAt))
	return nil
}

func (s Syncer) maxEvents() int64 {
	if s.MaxEvents > 0 {
		return s.MaxEvents
	}
	return 10
}
