package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/guilherme-santos/syncstatus"
	"github.com/guilherme-santos/syncstatus/calendar"
	"github.com/guilherme-santos/syncstatus/calendar/google"
	"github.com/guilherme-santos/syncstatus/calendar/ical"
	"github.com/guilherme-santos/syncstatus/chat/slack"
	"github.com/guilherme-santos/syncstatus/file"
	"github.com/guilherme-santos/syncstatus/internal/sqlite"
	"github.com/guilherme-santos/syncstatus/internal/syncer"
)

var RunCommand = _runCommand{
	Name:        "run",
	Description: "Mirror the next calendar event to the chat status",
}

type _runCommand struct {
	Name        string
	Description string
}

func (c _runCommand) Run(ctx context.Context, logger *zap.SugaredLogger, cfg *file.Config, args []string) error {
	fs := flag.NewFlagSet(c.Name, flag.ExitOnError)
	fs.Usage = usageFunc(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if cfg.Account.Name == "" {
		return fmt.Errorf("no account configured, run %q first", os.Args[0]+" "+ConfigureCommand.Name)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := sql.Open(sqlite.DriverName, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	storage := sqlite.NewStorage(db)

	mux, err := newMux(logger, cfg, storage)
	if err != nil {
		return err
	}

	chat, err := slack.NewClient(os.Getenv("SLACK_TOKEN"))
	if err != nil {
		return err
	}

	s := syncer.New(logger, mux, storage, chat)
	s.Platform = cfg.Account.Platform
	s.Account = cfg.Account.Name
	s.CalendarID = cfg.Account.CalendarID
	s.DefaultStatus = cfg.Status.Default
	s.Emoji = cfg.Status.Emoji
	s.Lead = cfg.Status.Lead()
	s.MaxEvents = cfg.Status.MaxEvents

	return s.Sync(ctx)
}

func newMux(logger *zap.SugaredLogger, cfg *file.Config, storage *sqlite.Storage) (syncstatus.Mux, error) {
	mux := calendar.NewMux()
	mux.Register(icsProvider, ical.NewClient(nil, logger))

	if cfg.Account.Platform != googleProvider {
		return mux, nil
	}

	credJSON, err := os.ReadFile(cfg.Account.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}
	googleCal, err := google.NewClient(credJSON, logger)
	if err != nil {
		return nil, fmt.Errorf("unable to create google client: %w", err)
	}
	googleCal.TokenRefreshed = func(ctx context.Context, acc syncstatus.Account, auth string) {
		acc.Auth = auth
		if err := storage.SaveAuth(ctx, &acc); err != nil {
			logger.Warnf("unable to save refreshed token for %s: %v", acc.ID(), err)
		}
	}
	mux.Register(googleProvider, googleCal)
	return mux, nil
}
