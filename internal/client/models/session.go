package models

// SessionState is the authentication state of the running client.
type SessionState int

const (
	// StateUnknown is the startup state, before the token store was read.
	StateUnknown SessionState = iota
	StateAnonymous
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is a point-in-time copy of the session manager state.
type Session struct {
	User            *User
	State           SessionState
	IsAuthenticated bool
	IsLoading       bool
}
