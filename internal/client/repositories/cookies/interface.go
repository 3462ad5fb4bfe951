// Package cookies persists HTTP cookies received from the API so that the
// refresh-token cookie survives a client restart, the way a browser keeps it.
package cookies

import (
	"context"
	"time"
)

// Cookie is one stored cookie, keyed by (Host, Name).
type Cookie struct {
	Host     string
	Name     string
	Value    string
	Path     string
	Domain   string
	Expires  time.Time // zero for session cookies
	Secure   bool
	HTTPOnly bool
}

type Repository interface {
	Upsert(ctx context.Context, c Cookie) error
	Delete(ctx context.Context, host, name string) error
	List(ctx context.Context) ([]Cookie, error)
	Clear(ctx context.Context) error
}
