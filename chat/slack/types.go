package slack

// Profile is the subset of the Slack user profile the client sets.
type Profile struct {
	StatusText       string `json:"status_text"`
	StatusEmoji      string `json:"status_emoji"`
	StatusExpiration int64  `json:"status_expiration"`
}

// SetProfileRequest is the payload for the users.profile.set API.
type SetProfileRequest struct {
	Profile Profile `json:"profile"`
}

// APIResponse is the generic Slack Web API response envelope.
type APIResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
