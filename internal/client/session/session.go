package session

import (
	"slices"

	"github.com/dmitrijs2005/pharmsim/internal/client/token"
)

// Session is the authentication state of the running client.
//
// IsAuthenticated implies AccessToken is set and was unexpired when it was
// set. Email, StudentNo and Roles are only meaningful while IsAuthenticated.
type Session struct {
	Email            string
	StudentNo        string
	Roles            []string
	AccessToken      string
	IsAuthenticated  bool
	IsAuthenticating bool
	IsTempPassword   bool
}

// LoggedOut is the default state: no identity, no token.
func LoggedOut() Session {
	return Session{}
}

// FromClaims builds an authenticated session for accessToken. Nil claims give
// a session holding the token but no identity.
func FromClaims(accessToken string, c *token.Claims) Session {
	s := Session{
		AccessToken:     accessToken,
		IsAuthenticated: accessToken != "",
	}
	if c != nil {
		s.Email = c.Email
		s.StudentNo = c.StudentNo
		s.Roles = slices.Clone(c.Roles)
		s.IsTempPassword = c.TempPassword
	}
	return s
}

// WithIdentityOf copies token and identity fields from other, keeping the
// receiver's IsAuthenticating.
func (s Session) WithIdentityOf(other Session) Session {
	other.IsAuthenticating = s.IsAuthenticating
	return other
}

// Authenticating returns a copy with IsAuthenticating set to v.
func (s Session) Authenticating(v bool) Session {
	s.IsAuthenticating = v
	return s
}

func (s Session) clone() Session {
	s.Roles = slices.Clone(s.Roles)
	return s
}
