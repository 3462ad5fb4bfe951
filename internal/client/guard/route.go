package guard

import (
	"context"
	"net/url"
	"time"

	"github.com/dmitrijs2005/pharmsim/internal/client/client"
	"github.com/dmitrijs2005/pharmsim/internal/client/session"
	"github.com/dmitrijs2005/pharmsim/internal/client/token"
	"github.com/dmitrijs2005/pharmsim/internal/logging"
)

const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

// maxRefreshCycles bounds the refresh-and-recheck loop of one verification.
const maxRefreshCycles = 1

// Route is a guarded view and the roles allowed to open it.
type Route struct {
	Name         string
	AllowedRoles []string
}

// Path is the location of the route, used as the login return target.
func (r Route) Path() string {
	return "/" + r.Name
}

// Decision is the outcome of a route check. Redirect is empty when the
// route may render; From is the location to return to after login.
type Decision struct {
	State    State
	Redirect string
	From     string
}

// RouteGuard decides whether the current session may open a route.
type RouteGuard struct {
	store     *session.Store
	refresher client.Refresher
	indicator Indicator
	logger    logging.Logger
	now       func() time.Time
}

// NewRouteGuard binds a guard to the session store. indicator and logger
// may be nil.
func NewRouteGuard(store *session.Store, refresher client.Refresher, indicator Indicator, logger logging.Logger) *RouteGuard {
	if indicator == nil {
		indicator = nopIndicator{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &RouteGuard{
		store:     store,
		refresher: refresher,
		indicator: indicator,
		logger:    logger,
		now:       time.Now,
	}
}

// Check verifies the session for route and returns a terminal decision.
// A valid token on an authenticated session is decided without network
// calls.
func (g *RouteGuard) Check(ctx context.Context, route Route) Decision {
	s := g.store.Get()
	if c, ok := token.Decode(s.AccessToken); !ok || c.Expired(g.now()) || !s.IsAuthenticated {
		g.logger.Debug(ctx, "route guard", "route", route.Name, "state", StateVerifying)
		g.verify(ctx)
	}
	d := g.decide(route)
	g.logger.Debug(ctx, "route guard", "route", route.Name, "state", d.State)
	return d
}

// verify brings the session in line with its access token, renewing an
// expired or unreadable token at most maxRefreshCycles times.
func (g *RouteGuard) verify(ctx context.Context) {
	g.indicator.Start("Verifying session")
	g.store.SetAuthenticating(true)
	defer func() {
		g.store.SetAuthenticating(false)
		g.indicator.Stop()
	}()

	for cycles := 0; ; cycles++ {
		tok := g.store.AccessToken()
		if tok == "" {
			g.store.Set(func(cur session.Session) session.Session {
				return session.LoggedOut().Authenticating(cur.IsAuthenticating)
			})
			return
		}

		c, ok := token.Decode(tok)
		if ok && !c.Expired(g.now()) {
			g.store.Set(func(cur session.Session) session.Session {
				if cur.AccessToken != tok {
					return cur
				}
				return cur.WithIdentityOf(session.FromClaims(tok, c))
			})
			return
		}

		if cycles >= maxRefreshCycles {
			g.logger.Info(ctx, "session still invalid after renewal", "decodable", ok)
			g.store.Set(func(cur session.Session) session.Session {
				cur.IsAuthenticated = false
				return cur
			})
			return
		}
		if _, err := g.refresher.Refresh(ctx); err != nil {
			g.logger.Debug(ctx, "renewal during verification failed", "error", err)
		}
	}
}

func (g *RouteGuard) decide(route Route) Decision {
	s := g.store.Get()
	if !s.IsAuthenticated {
		q := url.Values{"from": {route.Path()}}
		return Decision{
			State:    StateUnauthenticated,
			Redirect: LoginPath + "?" + q.Encode(),
			From:     route.Path(),
		}
	}

	roles := s.Roles
	if c, ok := token.Decode(s.AccessToken); ok {
		roles = c.Roles
	}
	if (&token.Claims{Roles: roles}).HasAnyRole(route.AllowedRoles) {
		return Decision{State: StateAuthorized}
	}
	return Decision{State: StateUnauthorized, Redirect: UnauthorizedPath, From: route.Path()}
}

// Watch emits a decision for route now and again whenever the access token
// changes, until ctx is done. Repeated identical decisions are not emitted.
func (g *RouteGuard) Watch(ctx context.Context, route Route) <-chan Decision {
	out := make(chan Decision, 1)
	changed := make(chan struct{}, 1)

	unsubscribe := g.store.Subscribe(func(session.Session) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	go func() {
		defer close(out)
		defer unsubscribe()

		var last *Decision
		seen := ""
		evaluate := func() bool {
			d := g.Check(ctx, route)
			seen = g.store.AccessToken()
			if last != nil && *last == d {
				return true
			}
			last = &d
			select {
			case out <- d:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !evaluate() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
				if g.store.AccessToken() == seen {
					continue
				}
				if !evaluate() {
					return
				}
			}
		}
	}()
	return out
}
