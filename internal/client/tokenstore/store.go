// Package tokenstore persists the access token, the refresh token and the
// cached user profile of the current session.
//
// The three entries live under fixed keys and are written and cleared
// together. Loads never fail: a storage error or an undecodable value is
// logged and reported as "not present", so callers treat it exactly like a
// logged-out client.
package tokenstore

import (
	"context"

	"github.com/dmitrijs2005/careercompass/internal/client/models"
)

// TokenSource is the read side used by the HTTP client and the route guard.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, bool)
	RefreshToken(ctx context.Context) (string, bool)
}

// Store is the full token store contract.
type Store interface {
	TokenSource

	// Save replaces tokens and user in one step.
	Save(ctx context.Context, tokens models.TokenPair, user models.User) error

	// UpdateTokens stores a refreshed access token. An empty RefreshToken
	// leaves the stored refresh token untouched.
	UpdateTokens(ctx context.Context, tokens models.TokenPair) error

	User(ctx context.Context) (*models.User, bool)

	// Clear removes all entries.
	Clear(ctx context.Context) error
}
