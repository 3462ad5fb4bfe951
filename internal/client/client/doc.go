// Package client talks to the simulation platform REST API.
//
// # Overview
//
// The package provides:
//  1. AuthAPI, the raw authentication endpoints (login, refresh, logout,
//     logout-everywhere). These requests carry no bearer token; the refresh
//     credential travels in an HTTP-only cookie held by the client's jar.
//  2. An authenticated http.Client (see NewAuthenticatedHTTPClient) whose
//     transport attaches the in-memory access token at send time and, on a
//     403, renews the session once and replays the request once.
//  3. PersistentJar, a cookie jar backed by the local database so the refresh
//     cookie survives restarts the way a browser keeps it.
//  4. ResourceClient, typed access to the platform resources (scenarios,
//     users, models, voices, issues, transcripts) through the authenticated
//     client.
//
// # Error Handling
//
// Non-2xx responses become *StatusError values that unwrap to the sentinel of
// their class, so callers can match with errors.Is: ErrUnauthorized (401),
// ErrForbidden (403), common.ErrorNotFound (404) and ErrUnavailable (5xx).
// Transport failures (no response at all) wrap ErrUnavailable but are not
// StatusErrors; use StatusCode to tell the two apart.
//
// Concurrency & Contexts
//
// All types are safe for concurrent use. Every operation accepts a
// context.Context and honours cancellation.
package client
