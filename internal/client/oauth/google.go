// Package oauth builds the Google consent URL and pulls the authorization
// code back out of what the user pastes. The code itself is exchanged by the
// backend at /v1/auth/google.
package oauth

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	ErrNotConfigured = errors.New("google login is not configured")
	ErrMissingCode   = errors.New("no authorization code found")
	ErrStateMismatch = errors.New("state does not match")
)

// DeniedError is returned when the redirect carries an OAuth error instead of
// a code, e.g. access_denied.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return "google login denied: " + e.Reason
}

// Flow is one consent round trip. It remembers the state it put in the URL.
type Flow struct {
	cfg   *oauth2.Config
	state string
}

// NewFlow prepares a flow for the given OAuth client. The redirect URL must
// be one the backend accepts when it redeems the code.
func NewFlow(clientID, redirectURL string) (*Flow, error) {
	if clientID == "" || redirectURL == "" {
		return nil, ErrNotConfigured
	}
	return &Flow{
		cfg: &oauth2.Config{
			ClientID:    clientID,
			RedirectURL: redirectURL,
			Endpoint:    google.Endpoint,
			Scopes:      []string{"openid", "email", "profile"},
		},
		state: uuid.NewString(),
	}, nil
}

func (f *Flow) State() string { return f.state }

// AuthCodeURL is the page the user opens in a browser.
func (f *Flow) AuthCodeURL() string {
	return f.cfg.AuthCodeURL(f.state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// ExtractCode accepts either the bare code or the full redirect URL. When the
// URL carries a state it must match the flow's.
func (f *Flow) ExtractCode(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrMissingCode
	}
	if !strings.Contains(input, "://") && !strings.Contains(input, "?") {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("parse redirect url: %w", err)
	}
	q := u.Query()

	if reason := q.Get("error"); reason != "" {
		return "", &DeniedError{Reason: reason}
	}
	if state := q.Get("state"); state != "" && state != f.state {
		return "", ErrStateMismatch
	}

	code := q.Get("code")
	if code == "" {
		return "", ErrMissingCode
	}
	return code, nil
}
