// Package common defines shared constants and sentinel errors used across
// client layers. Callers should use errors.Is to match these values.
package common

import "errors"

// ErrInvalidKey is returned when a sealing key has the wrong length.
var ErrInvalidKey = errors.New("invalid key")
