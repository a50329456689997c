package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/guilherme-santos/syncstatus"
)

type Client struct {
	oauthCfg *oauth2.Config
	logger   *zap.SugaredLogger

	// TokenRefreshed, when set, is called with the new auth blob whenever
	// the oauth library refreshes an account token, so the caller can
	// persist it for the next run.
	TokenRefreshed func(_ context.Context, _ syncstatus.Account, auth string)
}

func NewClient(credJSON []byte, logger *zap.SugaredLogger) (*Client, error) {
	oauthCfg, err := google.ConfigFromJSON(credJSON, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("google: parsing credentials file: %v", err)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Client{
		oauthCfg: oauthCfg,
		logger:   logger,
	}, nil
}

const defaultSleep = 5 * time.Second

func (c Client) ListUpcoming(ctx context.Context, cal *syncstatus.Calendar, from time.Time, max int64) ([]*calendar.Event, error) {
	svc, err := c.calendarSvc(ctx, cal.Account)
	if err != nil {
		return nil, err
	}

	c.logger.Debugf("google: %s: getting the upcoming %d event(s)", cal, max)

	for {
		events, err := svc.Events.
			List(cal.ID).
			Context(ctx).
			TimeMin(from.Format(time.RFC3339)).
			MaxResults(max).
			SingleEvents(true).
			OrderBy("startTime").
			Do()
		if err != nil {
			if shouldRetry(err) {
				time.Sleep(defaultSleep)
				continue
			}
			return nil, fmt.Errorf("google: listing events: %w", err)
		}

		if len(events.Items) == 0 {
			c.logger.Debugf("google: %s: no upcoming events found", cal)
		}
		for _, ev := range events.Items {
			c.logger.Debugf("google: %s: next event %s %q", cal, eventStart(ev), ev.Summary)
		}
		return events.Items, nil
	}
}

func (c Client) Login(ctx context.Context, prompt func(authURL string)) (*oauth2.Token, error) {
	state := "syncstatus-" + uuid.NewString()
	authURL := c.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	prompt(authURL)

	mux := http.NewServeMux()
	server := &http.Server{
		Addr:    ":8080",
		Handler: mux,
	}

	var (
		token   *oauth2.Token
		authErr error
	)

	mux.HandleFunc("/syncstatus", func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			go server.Shutdown(ctx)
		}()

		query := req.URL.Query()
		if query.Get("state") != state {
			authErr = errors.New("oauth link is not valid")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		token, authErr = c.oauthCfg.Exchange(ctx, query.Get("code"))
		if authErr != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintln(w, "Unable to retrieve token:", authErr)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "All good, you can close this window!")
	})

	serverCh := make(chan struct{})
	var svrErr error
	go func() {
		svrErr = server.ListenAndServe()
		close(serverCh)
	}()

	<-serverCh

	if svrErr != nil && svrErr != http.ErrServerClosed {
		return nil, svrErr
	}

	if authErr != nil {
		return nil, authErr
	}

	return token, nil
}

// Email returns the address of the account the token belongs to. The id of
// the primary calendar is the account's e-mail.
func (c Client) Email(ctx context.Context, tok *oauth2.Token) (string, error) {
	httpClient := oauth2.NewClient(ctx, c.oauthCfg.TokenSource(ctx, tok))
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return "", err
	}

	cal, err := svc.CalendarList.Get("primary").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("google: getting primary calendar: %w", err)
	}
	return cal.Id, nil
}

func (c Client) calendarSvc(ctx context.Context, acc syncstatus.Account) (*calendar.Service, error) {
	var tok oauth2.Token
	err := json.Unmarshal([]byte(acc.Auth), &tok)
	if err != nil {
		return nil, fmt.Errorf("google: parsing account auth: %w", err)
	}

	ts := c.oauthCfg.TokenSource(ctx, &tok)
	fresh, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("google: refreshing token: %w", err)
	}
	if fresh.AccessToken != tok.AccessToken && c.TokenRefreshed != nil {
		auth, err := json.Marshal(fresh)
		if err == nil {
			c.TokenRefreshed(ctx, acc, string(auth))
		}
	}

	return calendar.NewService(ctx, option.WithTokenSource(oauth2.ReuseTokenSource(fresh, ts)))
}

func eventStart(ev *calendar.Event) string {
	if ev.Start == nil {
		return ""
	}
	if ev.Start.DateTime != "" {
		return ev.Start.DateTime
	}
	return ev.Start.Date
}

func shouldRetry(err error) bool {
	return errIsReason(err, "rateLimitExceeded")
}

func errIsReason(err error, reason string) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}

	for _, err := range gErr.Errors {
		switch err.Reason {
		case reason:
			return true
		}
	}
	return false
}
