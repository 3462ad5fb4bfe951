// Package logging is the structured, context-aware logger of the client.
// Log output goes to stderr and never carries token or password values.
package logging

import "context"

// Logger takes a message followed by key/value pairs:
//
//	log.Debug(ctx, "session renewed", "email", s.Email, "roles", s.Roles)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record.
	With(args ...any) Logger
}
