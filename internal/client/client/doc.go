// Package client is the HTTP transport of the terminal client.
//
// HTTPClient sends JSON requests to the CareerCompass REST API with the
// stored bearer token attached. When a request comes back 401 it exchanges
// the refresh token once, persists the new access token and replays the
// request once. If the refresh fails the token store is cleared and the
// session-expired hook runs, so the caller ends up logged out.
//
// Failures are typed: *NetworkError (no response), *HTTPError (non-2xx),
// *AuthError (rejected credentials or expired session) and *ValidationError
// (rejected registration).
package client
