package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrUnavailable       = errors.New("server unavailable")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrSessionExpired    = errors.New("session expired")
	ErrMalformedResponse = errors.New("malformed server response")
)

// NetworkError means the request never produced an HTTP response.
// It matches ErrUnavailable with errors.Is.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrUnavailable, e.Err}
}

// HTTPError is any non-2xx response. 401 and 403 match ErrUnauthorized.
type HTTPError struct {
	Status int
	Body   ErrorResponse
}

func (e *HTTPError) Error() string {
	if msg := e.Body.Summary(); msg != "" {
		return fmt.Sprintf("http %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("http %d: %s", e.Status, http.StatusText(e.Status))
}

func (e *HTTPError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// AuthError is a rejected login, Google exchange or token refresh.
// Message is meant for the user.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ValidationError is a rejected registration or an invalid local input.
// Fields holds per-field messages when the server sent them.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ErrorResponse is the error body of the backend. Known message keys are
// lifted into their own fields; every other key holding a string or a list
// of strings is kept as a per-field error.
type ErrorResponse struct {
	Error   string
	Detail  string
	Message string
	Fields  map[string][]string
}

// ParseErrorResponse decodes body. ok is false when body is not a JSON
// object, in which case callers fall back to a generic message.
func ParseErrorResponse(body []byte) (resp ErrorResponse, ok bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return ErrorResponse{}, false
	}

	for key, value := range raw {
		var s string
		isString := json.Unmarshal(value, &s) == nil

		switch key {
		case "error":
			if isString {
				resp.Error = s
			}
			continue
		case "detail":
			if isString {
				resp.Detail = s
			}
			continue
		case "message":
			if isString {
				resp.Message = s
			}
			continue
		}

		var list []string
		switch {
		case isString:
			list = []string{s}
		case json.Unmarshal(value, &list) == nil:
		default:
			continue
		}
		if resp.Fields == nil {
			resp.Fields = make(map[string][]string)
		}
		resp.Fields[key] = list
	}
	return resp, true
}

// Summary returns the first of error, detail and message that is set.
func (r ErrorResponse) Summary() string {
	for _, s := range []string{r.Error, r.Detail, r.Message} {
		if s != "" {
			return s
		}
	}
	return ""
}

// Field returns the first message reported for name.
func (r ErrorResponse) Field(name string) string {
	if msgs := r.Fields[name]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// FieldSummary joins all field messages in key order, e.g.
// "email: Enter a valid email address.; username: This field is required."
func (r ErrorResponse) FieldSummary() string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(r.Fields[k], " "))
	}
	return strings.Join(parts, "; ")
}
