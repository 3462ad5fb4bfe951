package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	loginPath            = "/api/auth/login"
	refreshPath          = "/api/auth/refresh"
	logoutPath           = "/api/auth/logout"
	logoutEverywherePath = "/api/auth/logout-everywhere"
)

// AuthEndpoints is the authentication surface of the API.
type AuthEndpoints interface {
	Login(ctx context.Context, identifier, password string) (string, error)
	Refresh(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	LogoutEverywhere(ctx context.Context) error
}

// AuthAPI calls the authentication endpoints with a cookie-carrying client
// that never attaches a bearer token.
type AuthAPI struct {
	baseURL string
	http    *http.Client
}

var _ AuthEndpoints = (*AuthAPI)(nil)

// NewAuthAPI binds the endpoints to baseURL. httpClient must carry the cookie
// jar holding the refresh cookie.
func NewAuthAPI(baseURL string, httpClient *http.Client) *AuthAPI {
	return &AuthAPI{baseURL: baseURL, http: httpClient}
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// Login exchanges credentials for an access token. The response also sets
// the refresh cookie in the client's jar.
func (a *AuthAPI) Login(ctx context.Context, identifier, password string) (string, error) {
	var out tokenResponse
	err := doJSON(ctx, a.http, http.MethodPost, a.baseURL, loginPath,
		loginRequest{Identifier: identifier, Password: password}, &out)
	if err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// Refresh asks for a new access token using the refresh cookie.
func (a *AuthAPI) Refresh(ctx context.Context) (string, error) {
	var out tokenResponse
	if err := doJSON(ctx, a.http, http.MethodGet, a.baseURL, refreshPath, nil, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// Logout invalidates the current server-side session.
func (a *AuthAPI) Logout(ctx context.Context) error {
	return doJSON(ctx, a.http, http.MethodGet, a.baseURL, logoutPath, nil, nil)
}

// LogoutEverywhere invalidates every server-side session of the user.
func (a *AuthAPI) LogoutEverywhere(ctx context.Context) error {
	return doJSON(ctx, a.http, http.MethodGet, a.baseURL, logoutEverywherePath, nil, nil)
}

// doJSON sends in (if any) as JSON and decodes a 2xx response into out (if
// any). Non-2xx responses become *StatusError; transport failures wrap
// ErrUnavailable.
func doJSON(ctx context.Context, c *http.Client, method, baseURL, path string, in, out any) error {
	endpoint, err := url.JoinPath(baseURL, path)
	if err != nil {
		return fmt.Errorf("invalid api url: %w", err)
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
