// Package services contains application services for the pharmsim client.
// This file defines the authentication service: login, silent session
// renewal, logout and the "trust this device" flag.
package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/pharmsim/internal/client/client"
	"github.com/dmitrijs2005/pharmsim/internal/client/session"
	"github.com/dmitrijs2005/pharmsim/internal/client/token"
	"github.com/dmitrijs2005/pharmsim/internal/common"
	"github.com/dmitrijs2005/pharmsim/internal/logging"
)

// AuthService defines authentication operations for the CLI and guards.
//
// Contract:
//   - Login: exchange credentials for a session and record the persist choice.
//   - Refresh: renew the access token from the refresh cookie. Concurrent
//     calls share one request.
//   - Logout / LogoutEverywhere: best-effort server call, then always clear
//     the local session and cookies.
//   - Persist / SetPersist: read and write the "trust this device" flag.
type AuthService interface {
	Login(ctx context.Context, identifier, password string, persist bool) (session.Session, error)
	Refresh(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	LogoutEverywhere(ctx context.Context) error
	Persist(ctx context.Context) (bool, error)
	SetPersist(ctx context.Context, persist bool) error
}

// CookieClearer forgets the refresh cookie.
type CookieClearer interface {
	Clear(ctx context.Context) error
}

// DefaultRefreshTimeout bounds a refresh when none is configured.
const DefaultRefreshTimeout = 10 * time.Second

type authService struct {
	api            client.AuthEndpoints
	store          *session.Store
	persist        *session.PersistStore
	cookies        CookieClearer
	logger         logging.Logger
	refreshTimeout time.Duration

	group singleflight.Group
}

var _ client.Refresher = (AuthService)(nil)

// NewAuthService wires the service. cookies may be nil when the HTTP client
// has no persistent jar.
func NewAuthService(api client.AuthEndpoints, store *session.Store, persist *session.PersistStore,
	cookies CookieClearer, logger logging.Logger, refreshTimeout time.Duration) AuthService {
	if refreshTimeout <= 0 {
		refreshTimeout = DefaultRefreshTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &authService{
		api:            api,
		store:          store,
		persist:        persist,
		cookies:        cookies,
		logger:         logger,
		refreshTimeout: refreshTimeout,
	}
}

// Login authenticates against the server and stores the resulting session.
// The persist choice is saved only after a successful login.
func (a *authService) Login(ctx context.Context, identifier, password string, persist bool) (session.Session, error) {
	tok, err := a.api.Login(ctx, identifier, password)
	if err != nil {
		return session.LoggedOut(), fmt.Errorf("login error: %w", err)
	}
	if tok == "" {
		return session.LoggedOut(), common.ErrNoTokenInResponse
	}
	claims, ok := token.Decode(tok)
	if !ok {
		return session.LoggedOut(), fmt.Errorf("login error: %w", common.ErrInvalidToken)
	}

	s := a.store.Set(func(session.Session) session.Session {
		return session.FromClaims(tok, claims)
	})

	if err := a.SetPersist(ctx, persist); err != nil {
		a.logger.Warn(ctx, "could not store persist flag", "error", err)
	}
	a.logger.Info(ctx, "logged in", "email", s.Email, "roles", s.Roles)
	return s, nil
}

// Refresh renews the access token. Callers arriving while a renewal is in
// flight wait for that renewal instead of starting another. The shared
// request is not cancelled when a waiting caller gives up.
func (a *authService) Refresh(ctx context.Context) (string, error) {
	ch := a.group.DoChan("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.refreshTimeout)
		defer cancel()
		return a.refresh(rctx)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		tok, _ := res.Val.(string)
		return tok, res.Err
	}
}

func (a *authService) refresh(ctx context.Context) (string, error) {
	tok, err := a.api.Refresh(ctx)
	if err != nil {
		code, answered := client.StatusCode(err)
		switch {
		case answered && code > 400:
			a.store.Reset()
			a.logger.Info(ctx, "session renewal rejected", "status", code)
		default:
			// no verdict from the server; keep whatever identity we hold
			a.store.SetAuthenticating(false)
			a.logger.Warn(ctx, "session renewal failed", "error", err)
		}
		return "", fmt.Errorf("refresh error: %w", err)
	}

	claims, _ := token.Decode(tok)
	a.store.Set(func(session.Session) session.Session {
		return session.FromClaims(tok, claims)
	})
	if tok == "" {
		return "", common.ErrNoTokenInResponse
	}
	a.logger.Debug(ctx, "session renewed")
	return tok, nil
}

// Logout ends the server-side session and clears local state even if the
// server cannot be reached.
func (a *authService) Logout(ctx context.Context) error {
	return a.logout(ctx, a.api.Logout)
}

// LogoutEverywhere ends every server-side session of the user and clears
// local state even if the server cannot be reached.
func (a *authService) LogoutEverywhere(ctx context.Context) error {
	return a.logout(ctx, a.api.LogoutEverywhere)
}

func (a *authService) logout(ctx context.Context, call func(context.Context) error) error {
	cctx, cancel := context.WithTimeout(ctx, a.refreshTimeout)
	err := call(cctx)
	cancel()
	if err != nil {
		a.logger.Warn(ctx, "server logout failed", "error", err)
	}

	a.store.Reset()

	if a.cookies != nil {
		if err := a.cookies.Clear(context.WithoutCancel(ctx)); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
	}
	return nil
}

// Persist reports whether this device is trusted for silent restore.
func (a *authService) Persist(ctx context.Context) (bool, error) {
	return a.persist.Load(ctx)
}

// SetPersist records whether this device is trusted for silent restore.
func (a *authService) SetPersist(ctx context.Context, persist bool) error {
	return a.persist.Save(ctx, persist)
}
