// Package common defines shared constants and sentinel errors used across
// the client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Session errors.
	ErrNotLoggedIn       = errors.New("not logged in")
	ErrNoTokenInResponse = errors.New("no access token in response")
)
