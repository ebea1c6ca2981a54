// Package common contains shared constants, sentinel errors and small helpers
// used across CareerCompass client components.
package common

// Header names attached to every outbound API request.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerPrefix            = "Bearer "
)

// Fixed token store keys. They are written and cleared together.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
	UserDataKey     = "user_data"
)
