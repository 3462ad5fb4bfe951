package guard

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/pharmsim/internal/client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuard(store *session.Store, ref *fakeRefresher) *RouteGuard {
	ref.store = store
	return NewRouteGuard(store, ref, nil, nil)
}

func TestRoute_ValidStaffTokenAuthorizedWithoutNetwork(t *testing.T) {
	store := session.NewStore()
	withToken(store, valid("staff"))
	ref := &fakeRefresher{}
	ind := &recIndicator{}
	g := NewRouteGuard(store, ref, ind, nil)
	ref.store = store

	d := g.Check(context.Background(), staffRoute)
	assert.Equal(t, Decision{State: StateAuthorized}, d)
	assert.Equal(t, int32(0), ref.calls.Load())
	assert.Empty(t, ind.events, "no verification was needed")
}

func TestRoute_StudentOnStaffRouteUnauthorized(t *testing.T) {
	store := session.NewStore()
	withToken(store, valid("student"))
	g := newGuard(store, &fakeRefresher{})

	d := g.Check(context.Background(), staffRoute)
	assert.Equal(t, StateUnauthorized, d.State)
	assert.Equal(t, "/unauthorized", d.Redirect)
	assert.Equal(t, "/models", d.From)
}

func TestRoute_NoTokenUnauthenticated(t *testing.T) {
	store := session.NewStore()
	ref := &fakeRefresher{}
	g := newGuard(store, ref)

	d := g.Check(context.Background(), staffRoute)
	assert.Equal(t, Decision{
		State:    StateUnauthenticated,
		Redirect: "/login?from=%2Fmodels",
		From:     "/models",
	}, d)
	assert.Equal(t, int32(0), ref.calls.Load())
	assert.Equal(t, session.LoggedOut(), store.Get())
}

func TestRoute_ExpiredTokenRefreshesExactlyOnce(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*session.Store) (string, error)
		want State
	}{
		{"renewed", issues(valid("admin")), StateAuthorized},
		{"renewed to wrong role", issues(valid("student")), StateUnauthorized},
		{"rejected", rejects, StateUnauthenticated},
		{"unreachable", unreachable, StateUnauthenticated},
		{"still expired", issues(expired("admin")), StateUnauthenticated},
		{"garbage", issues("garbage"), StateUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewStore()
			withToken(store, expired("staff"))
			ref := &fakeRefresher{fn: tt.fn}
			g := newGuard(store, ref)

			d := g.Check(context.Background(), staffRoute)
			assert.Equal(t, tt.want, d.State)
			assert.Equal(t, int32(1), ref.calls.Load())
			assert.False(t, store.Get().IsAuthenticating)
		})
	}
}

func TestRoute_StillExpiredKeepsOtherFields(t *testing.T) {
	store := session.NewStore()
	tok := expired("staff")
	withToken(store, tok)
	g := newGuard(store, &fakeRefresher{fn: unreachable})

	g.Check(context.Background(), staffRoute)
	s := store.Get()
	assert.False(t, s.IsAuthenticated)
	assert.Equal(t, tok, s.AccessToken)
	assert.Equal(t, []string{"staff"}, s.Roles)
}

func TestRoute_UndecodableTokenFallsBackToRefresh(t *testing.T) {
	store := session.NewStore()
	store.Set(func(session.Session) session.Session {
		return session.Session{AccessToken: "not.a.token", IsAuthenticated: true}
	})
	ref := &fakeRefresher{fn: issues(valid("staff"))}
	g := newGuard(store, ref)

	d := g.Check(context.Background(), staffRoute)
	assert.Equal(t, StateAuthorized, d.State)
	assert.Equal(t, int32(1), ref.calls.Load())
	assert.Equal(t, "u@example.com", store.Get().Email)
}

func TestRoute_ValidTokenOnUnauthenticatedSessionSetsIdentity(t *testing.T) {
	store := session.NewStore()
	tok := valid("staff")
	store.Set(func(session.Session) session.Session { return session.Session{AccessToken: tok} })
	ref := &fakeRefresher{}
	g := newGuard(store, ref)

	d := g.Check(context.Background(), staffRoute)
	assert.Equal(t, StateAuthorized, d.State)
	assert.Equal(t, int32(0), ref.calls.Load())
	s := store.Get()
	assert.True(t, s.IsAuthenticated)
	assert.Equal(t, "S9", s.StudentNo)
}

func TestRoute_IndicatorShownWhileVerifying(t *testing.T) {
	store := session.NewStore()
	withToken(store, expired("staff"))
	ref := &fakeRefresher{store: store, fn: issues(valid("staff"))}
	ind := &recIndicator{}
	g := NewRouteGuard(store, ref, ind, nil)

	var authenticating []bool
	store.Subscribe(func(s session.Session) { authenticating = append(authenticating, s.IsAuthenticating) })

	g.Check(context.Background(), staffRoute)
	assert.Equal(t, []string{"start:Verifying session", "stop"}, ind.events)
	require.NotEmpty(t, authenticating)
	assert.True(t, authenticating[0])
	assert.False(t, authenticating[len(authenticating)-1])
}

func TestRoute_ExpiryUsesInjectedClock(t *testing.T) {
	store := session.NewStore()
	withToken(store, valid("staff"))
	ref := &fakeRefresher{fn: rejects}
	g := newGuard(store, ref)
	g.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	d := g.Check(context.Background(), staffRoute)
	assert.Equal(t, StateUnauthenticated, d.State)
	assert.Equal(t, int32(1), ref.calls.Load())
}

func TestWatch_EmitsOnTokenChange(t *testing.T) {
	store := session.NewStore()
	withToken(store, valid("staff"))
	g := newGuard(store, &fakeRefresher{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := g.Watch(ctx, staffRoute)

	select {
	case d := <-ch:
		assert.Equal(t, StateAuthorized, d.State)
	case <-time.After(time.Second):
		t.Fatal("no initial decision")
	}

	store.Reset()

	select {
	case d := <-ch:
		assert.Equal(t, StateUnauthenticated, d.State)
		assert.Equal(t, "/models", d.From)
	case <-time.After(time.Second):
		t.Fatal("no decision after logout")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestWatch_IgnoresChangesThatKeepToken(t *testing.T) {
	store := session.NewStore()
	withToken(store, valid("staff"))
	g := newGuard(store, &fakeRefresher{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := g.Watch(ctx, staffRoute)
	<-ch

	store.SetAuthenticating(true)
	store.SetAuthenticating(false)

	select {
	case d := <-ch:
		t.Fatalf("unexpected decision %+v", d)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatch_PathologicalServerDoesNotLoop(t *testing.T) {
	store := session.NewStore()
	withToken(store, expired("staff"))
	ref := &fakeRefresher{fn: func(s *session.Store) (string, error) {
		return issues(expired("staff"))(s)
	}}
	g := newGuard(store, ref)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := g.Watch(ctx, staffRoute)

	d := <-ch
	assert.Equal(t, StateUnauthenticated, d.State)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), ref.calls.Load())
}
