package session

import (
	"sync"
)

// Listener receives the committed session after each change.
type Listener func(Session)

// Store is the single owner of the client Session.
// It is safe for concurrent use.
type Store struct {
	writeMu sync.Mutex // orders commits with their notifications
	mu      sync.RWMutex
	current Session

	listenersMu sync.Mutex
	listeners   map[uint64]Listener
	order       []uint64
	nextID      uint64
}

// NewStore returns a store holding the logged-out session.
func NewStore() *Store {
	return &Store{
		current:   LoggedOut(),
		listeners: make(map[uint64]Listener),
	}
}

// Get returns a snapshot of the current session.
func (s *Store) Get() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

// AccessToken returns the current access token, or "" when none is held.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.AccessToken
}

// Set atomically replaces the session with transform(current) and notifies
// subscribers. Neither transform nor a listener may call Set.
func (s *Store) Set(transform func(Session) Session) Session {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	next := transform(s.current.clone()).clone()
	s.current = next
	s.mu.Unlock()

	s.notify(next)
	return next.clone()
}

// Reset clears the session to the logged-out default.
func (s *Store) Reset() {
	s.Set(func(Session) Session { return LoggedOut() })
}

// SetAuthenticating flips only the IsAuthenticating flag.
func (s *Store) SetAuthenticating(v bool) {
	s.Set(func(cur Session) Session { return cur.Authenticating(v) })
}

// Subscribe registers fn for change notifications and returns a function
// that removes it. The returned function is safe to call more than once.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.order = append(s.order, id)
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			defer s.listenersMu.Unlock()
			delete(s.listeners, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (s *Store) notify(snapshot Session) {
	s.listenersMu.Lock()
	fns := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.listeners[id])
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn(snapshot.clone())
	}
}
