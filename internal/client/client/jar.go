package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/pharmsim/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/pharmsim/internal/logging"
	"golang.org/x/net/publicsuffix"
)

// PersistentJar is an http.CookieJar that mirrors every cookie it accepts
// into a cookies.Repository and restores them on construction.
type PersistentJar struct {
	mu     sync.Mutex
	inner  *cookiejar.Jar
	repo   cookies.Repository
	logger logging.Logger
	now    func() time.Time
}

var _ http.CookieJar = (*PersistentJar)(nil)

func newInnerJar() *cookiejar.Jar {
	// cookiejar.New never returns a non-nil error
	j, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return j
}

// NewPersistentJar loads the stored cookies into a fresh jar. Rows that have
// expired since they were stored are dropped.
func NewPersistentJar(ctx context.Context, repo cookies.Repository, logger logging.Logger) (*PersistentJar, error) {
	j := &PersistentJar{
		inner:  newInnerJar(),
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
	if err := j.load(ctx); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *PersistentJar) load(ctx context.Context) error {
	rows, err := j.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load cookies: %w", err)
	}
	now := j.now()
	for _, row := range rows {
		if !row.Expires.IsZero() && !row.Expires.After(now) {
			if err := j.repo.Delete(ctx, row.Host, row.Name); err != nil {
				return fmt.Errorf("drop expired cookie: %w", err)
			}
			continue
		}
		scheme := "http"
		if row.Secure {
			scheme = "https"
		}
		u := &url.URL{Scheme: scheme, Host: row.Host, Path: "/"}
		j.inner.SetCookies(u, []*http.Cookie{{
			Name:     row.Name,
			Value:    row.Value,
			Path:     row.Path,
			Domain:   row.Domain,
			Expires:  row.Expires,
			Secure:   row.Secure,
			HttpOnly: row.HTTPOnly,
		}})
	}
	return nil
}

func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

func (j *PersistentJar) SetCookies(u *url.URL, cs []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.inner.SetCookies(u, cs)

	ctx := context.Background()
	host := u.Hostname()
	now := j.now()
	for _, c := range cs {
		expires := c.Expires
		if c.MaxAge > 0 {
			expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		var err error
		if c.MaxAge < 0 || (!expires.IsZero() && !expires.After(now)) {
			err = j.repo.Delete(ctx, host, c.Name)
		} else {
			err = j.repo.Upsert(ctx, cookies.Cookie{
				Host:     host,
				Name:     c.Name,
				Value:    c.Value,
				Path:     c.Path,
				Domain:   c.Domain,
				Expires:  expires,
				Secure:   c.Secure,
				HTTPOnly: c.HttpOnly,
			})
		}
		if err != nil {
			j.logger.Error(ctx, "failed to persist cookie", "host", host, "name", c.Name, "error", err)
		}
	}
}

// Clear forgets every cookie, in memory and on disk.
func (j *PersistentJar) Clear(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.inner = newInnerJar()
	if err := j.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear cookies: %w", err)
	}
	return nil
}
