package logging

import "strings"

// Redacted replaces the value of any secret key.
const Redacted = "[REDACTED]"

var secretKeys = map[string]struct{}{
	"access_token":  {},
	"refresh_token": {},
	"token":         {},
	"password":      {},
	"authorization": {},
	"code":          {},
}

// redact returns a copy of the key/value args with secret values masked.
// Keys are matched case-insensitively; args itself is left untouched.
func redact(args []any) []any {
	var out []any
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		if _, secret := secretKeys[strings.ToLower(key)]; !secret {
			continue
		}
		if out == nil {
			out = append([]any(nil), args...)
		}
		out[i+1] = Redacted
	}
	if out == nil {
		return args
	}
	return out
}
