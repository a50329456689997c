package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultAPIURL = "https://slack.com/api"

var ErrMissingToken = errors.New("slack: missing token")

// APIError is a call the Slack API itself rejected (ok false in the
// response), e.g. invalid_auth. Transport problems are plain errors.
type APIError struct {
	Code string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack: api error: %s", e.Code)
}

// Client is the Slack Web API client.
type Client struct {
	token      string
	apiURL     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Slack client with the given token.
func NewClient(token string) (*Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	return &Client{
		token:      token,
		apiURL:     defaultAPIURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}, nil
}

// SetAPIURL overrides the default Slack API URL for testing purposes.
func (c *Client) SetAPIURL(url string) {
	c.apiURL = url
}

// SetStatus sets the user's status. expiration is a Unix timestamp in
// seconds after which Slack clears the status again, 0 keeps it until
// changed.
func (c *Client) SetStatus(ctx context.Context, text, emoji string, expiration int64) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("slack: %w", err)
	}

	payload := SetProfileRequest{
		Profile: Profile{
			StatusText:       text,
			StatusEmoji:      emoji,
			StatusExpiration: expiration,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("slack: marshaling profile: %w", err)
	}

	url := fmt.Sprintf("%s/users.profile.set", c.apiURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack: users.profile.set: %w", err)
	}
	defer resp.Body.Close()

	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("slack: decoding users.profile.set response: %w", err)
	}
	if !apiResp.OK {
		return &APIError{Code: apiResp.Error}
	}
	return nil
}
