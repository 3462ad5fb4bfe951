// Package common contains shared constants and sentinel errors used across
// the pharmsim client packages.
package common

const (
	// AuthorizationHeaderName carries the bearer access token on outbound
	// API requests.
	AuthorizationHeaderName = "Authorization"

	// RequestIDHeaderName correlates a request with client log lines.
	RequestIDHeaderName = "X-Request-ID"

	// PersistMetadataKey is the fixed key of the "trust this device" flag in
	// the local metadata store.
	PersistMetadataKey = "persist"
)
