package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authed(tok string, roles ...string) Session {
	return Session{Email: "a@b.c", StudentNo: "S1", Roles: roles, AccessToken: tok, IsAuthenticated: true}
}

func TestStore_StartsLoggedOut(t *testing.T) {
	s := NewStore()
	assert.Equal(t, LoggedOut(), s.Get())
	assert.Empty(t, s.AccessToken())
}

func TestStore_SetReplacesWholeValue(t *testing.T) {
	s := NewStore()
	got := s.Set(func(Session) Session { return authed("t1", "staff") })
	assert.Equal(t, authed("t1", "staff"), got)
	assert.Equal(t, "t1", s.AccessToken())

	s.Reset()
	assert.Equal(t, LoggedOut(), s.Get())
}

func TestStore_SnapshotsAreIndependent(t *testing.T) {
	s := NewStore()
	s.Set(func(Session) Session { return authed("t1", "staff") })

	snap := s.Get()
	snap.Roles[0] = "admin"
	assert.Equal(t, []string{"staff"}, s.Get().Roles)
}

func TestStore_SetAuthenticatingKeepsIdentity(t *testing.T) {
	s := NewStore()
	s.Set(func(Session) Session { return authed("t1", "student") })

	s.SetAuthenticating(true)
	assert.True(t, s.Get().IsAuthenticating)
	s.SetAuthenticating(false)
	assert.Equal(t, authed("t1", "student"), s.Get())
}

func TestStore_SubscribersNotifiedInOrder(t *testing.T) {
	s := NewStore()
	var calls []string
	s.Subscribe(func(got Session) { calls = append(calls, "first:"+got.AccessToken) })
	unsub := s.Subscribe(func(got Session) { calls = append(calls, "second:"+got.AccessToken) })

	s.Set(func(Session) Session { return authed("t1") })
	unsub()
	unsub()
	s.Set(func(Session) Session { return authed("t2") })

	assert.Equal(t, []string{"first:t1", "second:t1", "first:t2"}, calls)
}

func TestStore_ListenerMayReadStore(t *testing.T) {
	s := NewStore()
	var seen string
	s.Subscribe(func(Session) { seen = s.AccessToken() })

	s.Set(func(Session) Session { return authed("t1") })
	assert.Equal(t, "t1", seen)
}

func TestStore_ConcurrentWritersSeeConsistentSnapshots(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				s.Set(func(Session) Session { return authed("tok", "staff") })
			} else {
				s.Reset()
			}
		}()
		go func() {
			defer wg.Done()
			got := s.Get()
			// identity and token are cleared together
			if got.AccessToken == "" {
				assert.Empty(t, got.Email)
				assert.False(t, got.IsAuthenticated)
			} else {
				assert.Equal(t, "a@b.c", got.Email)
			}
		}()
	}
	wg.Wait()
}

func TestWithIdentityOf(t *testing.T) {
	cur := LoggedOut().Authenticating(true)
	next := cur.WithIdentityOf(authed("t1", "admin"))
	require.True(t, next.IsAuthenticating)
	assert.Equal(t, "t1", next.AccessToken)
	assert.Equal(t, []string{"admin"}, next.Roles)
}
