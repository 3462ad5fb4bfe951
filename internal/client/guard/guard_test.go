package guard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/pharmsim/internal/client/apitest"
	"github.com/dmitrijs2005/pharmsim/internal/client/session"
	"github.com/dmitrijs2005/pharmsim/internal/client/token"
)

// ---- fakes ----

// fakeRefresher applies fn to the store the way the auth service would.
type fakeRefresher struct {
	calls atomic.Int32
	store *session.Store
	fn    func(*session.Store) (string, error)
}

func (f *fakeRefresher) Refresh(context.Context) (string, error) {
	f.calls.Add(1)
	if f.fn == nil {
		return "", errors.New("no refresh configured")
	}
	return f.fn(f.store)
}

// issues sets tok as the refreshed session.
func issues(tok string) func(*session.Store) (string, error) {
	return func(s *session.Store) (string, error) {
		c, _ := token.Decode(tok)
		s.Set(func(session.Session) session.Session { return session.FromClaims(tok, c) })
		return tok, nil
	}
}

// rejects mimics a refresh answered with 401.
func rejects(s *session.Store) (string, error) {
	s.Reset()
	return "", errors.New("api error 401")
}

// unreachable mimics a refresh that got no response.
func unreachable(s *session.Store) (string, error) {
	s.SetAuthenticating(false)
	return "", errors.New("server unavailable")
}

type fakePersist struct {
	v   bool
	err error
}

func (f fakePersist) Persist(context.Context) (bool, error) { return f.v, f.err }

type recIndicator struct {
	mu     sync.Mutex
	events []string
}

func (r *recIndicator) Start(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "start:"+msg)
}

func (r *recIndicator) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "stop")
}

// ---- helpers ----

func user(roles ...string) apitest.User {
	return apitest.User{Email: "u@example.com", StudentNo: "S9", Roles: roles}
}

func valid(roles ...string) string {
	return apitest.Mint(user(roles...), time.Now().Add(time.Hour))
}

func expired(roles ...string) string {
	return apitest.Mint(user(roles...), time.Now().Add(-time.Hour))
}

func withToken(store *session.Store, tok string) {
	c, _ := token.Decode(tok)
	store.Set(func(session.Session) session.Session { return session.FromClaims(tok, c) })
}

var staffRoute = Route{Name: "models", AllowedRoles: []string{"staff", "admin"}}
