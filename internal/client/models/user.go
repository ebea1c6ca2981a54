// Package models defines the client-side data models of the CareerCompass
// terminal client: the session, tokens, and the payloads exchanged with the
// REST backend.
package models

import "strings"

// User is the profile returned by the backend on login. It is persisted as
// JSON in the token store.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// DisplayName prefers the full name and falls back to the username.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Username
}

// TokenPair holds two opaque bearer credentials. Only the server decides
// whether they are still valid.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
