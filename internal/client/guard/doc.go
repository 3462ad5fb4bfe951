// Package guard gates rendering of client views on the session state.
//
// Bootstrap runs once per process start and decides whether to attempt a
// silent session restore from the refresh cookie. RouteGuard runs on every
// view entry: it verifies the in-memory access token, renews it at most once
// when it has expired, and compares the decoded roles with the view's
// allow-list.
//
// The role check is a convenience for the user interface. The API server
// enforces authorization on every request.
package guard
