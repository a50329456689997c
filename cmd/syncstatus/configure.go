package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/guilherme-santos/syncstatus"
	"github.com/guilherme-santos/syncstatus/calendar/google"
	"github.com/guilherme-santos/syncstatus/file"
	"github.com/guilherme-santos/syncstatus/internal/sqlite"
)

const (
	googleProvider = "google"
	icsProvider    = "ics"
)

var ConfigureCommand = _configureCommand{
	Name:        "configure",
	Description: "Give access to the calendar and save the account",
}

type _configureCommand struct {
	Name        string
	Description string
}

func (c _configureCommand) Run(ctx context.Context, logger *zap.SugaredLogger, cfg *file.Config, args []string) error {
	var (
		platform string
		name     string
		feedURL  string
	)

	fs := flag.NewFlagSet(c.Name, flag.ExitOnError)
	fs.Usage = usageFunc(fs)
	fs.StringVar(&platform, "platform", cfg.Account.Platform, "calendar platform, google or ics")
	fs.StringVar(&name, "name", cfg.Account.Name, "account name, defaults to the google e-mail")
	fs.StringVar(&feedURL, "feed-url", "", "ics feed to subscribe to")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := sql.Open(sqlite.DriverName, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	storage := sqlite.NewStorage(db)

	w := flag.CommandLine.Output()
	acc := syncstatus.Account{Platform: platform, Name: name}

	switch platform {
	case googleProvider:
		credJSON, err := os.ReadFile(cfg.Account.CredentialsFile)
		if err != nil {
			return fmt.Errorf("unable to read credentials file: %w", err)
		}
		googleCal, err := google.NewClient(credJSON, logger)
		if err != nil {
			return fmt.Errorf("creating client: %v", err)
		}

		authToken, err := googleCal.Login(ctx, func(authURL string) {
			fmt.Fprintf(w, "Go to the following link in your browser\n%s\n", authURL)
		})
		if err != nil {
			return fmt.Errorf("google: logging in: %v", err)
		}
		if acc.Name == "" {
			acc.Name, err = googleCal.Email(ctx, authToken)
			if err != nil {
				return fmt.Errorf("google: getting email: %v", err)
			}
		}
		v, _ := json.Marshal(authToken)
		acc.Auth = string(v)
		cfg.Account.CalendarID = "primary"
	case icsProvider:
		if acc.Name == "" {
			return fmt.Errorf("name is required for %q", icsProvider)
		}
		if feedURL == "" {
			return fmt.Errorf("feed-url is required for %q", icsProvider)
		}
		cfg.Account.CalendarID = feedURL
	default:
		return fmt.Errorf("calendar %q is not implemented", platform)
	}

	fmt.Fprintf(w, "Saving account %q for %q provider...\n", acc.Name, acc.Platform)
	err = storage.AddAccount(ctx, &acc)
	if err != nil {
		return fmt.Errorf("saving account: %v", err)
	}

	cfg.Account.Platform = acc.Platform
	cfg.Account.Name = acc.Name
	err = file.Save(cfgFlags.Config, cfg)
	if err != nil {
		return fmt.Errorf("saving config: %v", err)
	}

	accounts, err := storage.Accounts(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Configured accounts:")
	for _, acc := range accounts {
		fmt.Fprintf(w, "\t%s\n", acc.ID())
	}
	return nil
}
