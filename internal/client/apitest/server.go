// Package apitest runs an in-process fake of the platform API for tests:
// cookie-based refresh sessions, HS256 access tokens, and the resource
// collections behind bearer authentication.
package apitest

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

// RefreshCookieName is the refresh-token cookie the fake API sets.
const RefreshCookieName = "jwt"

var secret = []byte("apitest-secret")

// User is an account known to the fake API.
type User struct {
	Password     string
	Email        string
	StudentNo    string
	Roles        []string
	TempPassword bool
}

// Server is a running fake API. Zero-valued knobs mean normal behaviour.
type Server struct {
	*httptest.Server

	LoginCalls    atomic.Int32
	RefreshCalls  atomic.Int32
	LogoutCalls   atomic.Int32
	ResourceCalls atomic.Int32

	mu              sync.Mutex
	users           map[string]User
	sessions        map[string]string // refresh token -> identifier
	records         map[string][]map[string]any
	accessTTL       time.Duration
	refreshStatus   int
	resourceStatus  int
	refreshIssuesAt time.Time
	refreshDelay    time.Duration
}

// New starts a fake API. Close it with t.Cleanup(s.Close).
func New() *Server {
	s := &Server{
		accessTTL: time.Minute,
		users:     make(map[string]User),
		sessions:  make(map[string]string),
		records:   make(map[string][]map[string]any),
	}

	r := chi.NewRouter()
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Get("/refresh", s.handleRefresh)
		r.Get("/logout", s.handleLogout)
		r.Get("/logout-everywhere", s.handleLogoutEverywhere)
	})
	r.Get("/api/{kind}", s.handleList)
	r.Get("/api/{kind}/{id}", s.handleGet)

	s.Server = httptest.NewServer(r)
	return s
}

// AddUser registers an account under identifier (email or student number).
func (s *Server) AddUser(identifier string, u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[identifier] = u
}

// SetRecords sets the collection served for kind.
func (s *Server) SetRecords(kind string, records ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[kind] = records
}

// SetAccessTTL sets the lifetime of issued access tokens (default 1 minute).
// A negative ttl issues tokens that are already expired.
func (s *Server) SetAccessTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessTTL = ttl
}

// FailRefresh forces /api/auth/refresh to answer with status (0 restores
// normal behaviour).
func (s *Server) FailRefresh(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshStatus = status
}

// FailResources forces every resource request to answer with status.
func (s *Server) FailResources(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resourceStatus = status
}

// IssueExpiredOnRefresh makes refresh hand out tokens that expired already.
func (s *Server) IssueExpiredOnRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshIssuesAt = time.Now().Add(-time.Hour)
}

// SlowRefresh delays refresh responses by d.
func (s *Server) SlowRefresh(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDelay = d
}

// StartSession creates a refresh session for identifier as if it had logged
// in, returning the refresh cookie value.
func (s *Server) StartSession(identifier string) string {
	rt := randomToken()
	s.mu.Lock()
	s.sessions[rt] = identifier
	s.mu.Unlock()
	return rt
}

// Sessions returns the number of live refresh sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Mint signs an access token for u that expires at exp.
func Mint(u User, exp time.Time) string {
	claims := jwt.MapClaims{
		"UserInfo": map[string]any{
			"email":        u.Email,
			"studentNo":    u.StudentNo,
			"roles":        u.Roles,
			"tempPassword": u.TempPassword,
		},
		"exp": exp.Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		panic(err)
	}
	return tok
}

func randomToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.LoginCalls.Add(1)

	var in struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Identifier == "" || in.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Identifier and password are required.")
		return
	}

	s.mu.Lock()
	u, ok := s.users[in.Identifier]
	ttl := s.accessTTL
	s.mu.Unlock()
	if !ok || u.Password != in.Password {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	rt := s.StartSession(in.Identifier)
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    rt,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   24 * 60 * 60,
	})
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": Mint(u, time.Now().Add(ttl))})
}

func (s *Server) sessionUser(r *http.Request) (string, User, bool) {
	c, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return "", User{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.sessions[c.Value]
	if !ok {
		return "", User{}, false
	}
	u, ok := s.users[id]
	return c.Value, u, ok
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.RefreshCalls.Add(1)

	s.mu.Lock()
	status, delay, issuedAt, ttl := s.refreshStatus, s.refreshDelay, s.refreshIssuesAt, s.accessTTL
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if status != 0 {
		writeMessage(w, status, http.StatusText(status))
		return
	}

	_, u, ok := s.sessionUser(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	base := time.Now()
	if !issuedAt.IsZero() {
		base = issuedAt
	}
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": Mint(u, base.Add(ttl))})
}

func expireCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: RefreshCookieName, Value: "", Path: "/", HttpOnly: true, MaxAge: -1})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.LogoutCalls.Add(1)
	if c, err := r.Cookie(RefreshCookieName); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	expireCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogoutEverywhere(w http.ResponseWriter, r *http.Request) {
	s.LogoutCalls.Add(1)
	if c, err := r.Cookie(RefreshCookieName); err == nil {
		s.mu.Lock()
		if id, ok := s.sessions[c.Value]; ok {
			for rt, owner := range s.sessions {
				if owner == id {
					delete(s.sessions, rt)
				}
			}
		}
		s.mu.Unlock()
	}
	expireCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// authorize returns 0 when the bearer token is valid, else the status to send.
func (s *Server) authorize(r *http.Request) int {
	s.mu.Lock()
	forced := s.resourceStatus
	s.mu.Unlock()
	if forced != 0 {
		return forced
	}

	h := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || raw == "" {
		return http.StatusUnauthorized
	}
	_, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return http.StatusForbidden
	}
	return 0
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.ResourceCalls.Add(1)
	if status := s.authorize(r); status != 0 {
		writeMessage(w, status, http.StatusText(status))
		return
	}
	s.mu.Lock()
	recs := s.records[chi.URLParam(r, "kind")]
	s.mu.Unlock()
	if recs == nil {
		recs = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.ResourceCalls.Add(1)
	if status := s.authorize(r); status != 0 {
		writeMessage(w, status, http.StatusText(status))
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records[chi.URLParam(r, "kind")] {
		if rec["_id"] == id {
			writeJSON(w, http.StatusOK, rec)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "Not found")
}
