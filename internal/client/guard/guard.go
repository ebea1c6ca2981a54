// Package guard decides whether a protected command may run.
//
// The decision only looks at whether an access token is present. Whether the
// token is still accepted is the server's call; an expired one surfaces as a
// 401 on the first request and is handled by the HTTP client.
package guard

import (
	"context"

	"github.com/dmitrijs2005/careercompass/internal/client/tokenstore"
)

// LoginEntry is where denied callers are sent.
const LoginEntry = "login"

// MsgLoginRequired is shown when a protected command is denied.
const MsgLoginRequired = "Please log in"

// Redirect tells the caller to log in first and then continue to Next.
type Redirect struct {
	To      string
	Next    string
	Message string
}

type Decision struct {
	Allowed  bool
	Redirect *Redirect
}

// Check allows destination when tokens holds a non-empty access token and
// otherwise redirects to the login entry, remembering destination.
func Check(ctx context.Context, tokens tokenstore.TokenSource, destination string) Decision {
	if token, ok := tokens.AccessToken(ctx); ok && token != "" {
		return Decision{Allowed: true}
	}
	return Decision{Redirect: &Redirect{To: LoginEntry, Next: destination, Message: MsgLoginRequired}}
}
