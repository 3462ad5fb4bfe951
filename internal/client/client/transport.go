package client

import (
	"context"
	"io"
	"net/http"

	"github.com/dmitrijs2005/pharmsim/internal/common"
	"github.com/dmitrijs2005/pharmsim/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// TokenSource yields the current in-memory access token, or "" when none.
type TokenSource interface {
	AccessToken() string
}

// Refresher renews the session and returns the new access token.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

type retriedKey struct{}

func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

func wasRetried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey{}).(bool)
	return v
}

// authTransport attaches the bearer token and renews the session once on 403.
type authTransport struct {
	base      http.RoundTripper
	tokens    TokenSource
	refresher Refresher
	logger    logging.Logger
}

func setBearer(r *http.Request, accessToken string) {
	(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}).SetAuthHeader(r)
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	out := req.Clone(ctx)
	if out.Header.Get(common.AuthorizationHeaderName) == "" {
		if tok := t.tokens.AccessToken(); tok != "" {
			setBearer(out, tok)
		}
	}
	if out.Header.Get(common.RequestIDHeaderName) == "" {
		out.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}
	log := t.logger.With("request_id", out.Header.Get(common.RequestIDHeaderName), "method", out.Method, "path", out.URL.Path)

	resp, err := t.base.RoundTrip(out)
	if err != nil || resp.StatusCode != http.StatusForbidden || wasRetried(ctx) {
		return resp, err
	}

	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		log.Warn(ctx, "403 on a request whose body cannot be replayed; not retrying")
		return resp, nil
	}

	tok, rerr := t.refresher.Refresh(ctx)
	if rerr != nil || tok == "" {
		log.Warn(ctx, "session renewal after 403 failed", "error", rerr)
		return resp, nil
	}

	retry := out.Clone(markRetried(ctx))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return resp, nil
		}
		retry.Body = body
	}
	setBearer(retry, tok)

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	log.Debug(ctx, "replaying request after session renewal")
	return t.base.RoundTrip(retry)
}

// NewAuthenticatedHTTPClient returns a copy of base whose transport attaches
// the access token from tokens and renews it through refresher on 403.
// Call it once while wiring the application.
func NewAuthenticatedHTTPClient(base *http.Client, tokens TokenSource, refresher Refresher, logger logging.Logger) *http.Client {
	c := *base
	InstallAuth(&c, tokens, refresher, logger)
	return &c
}

// InstallAuth wraps c.Transport with the authenticating transport. It
// reports false and leaves c untouched when c is already authenticated.
func InstallAuth(c *http.Client, tokens TokenSource, refresher Refresher, logger logging.Logger) bool {
	if _, ok := c.Transport.(*authTransport); ok {
		return false
	}
	base := c.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = logging.Discard()
	}
	c.Transport = &authTransport{base: base, tokens: tokens, refresher: refresher, logger: logger}
	return true
}
