package token

import (
	"bytes"
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the identity and authorization fields of an access token.
type Claims struct {
	Email        string
	StudentNo    string
	Roles        []string
	ExpiresAt    int64 // epoch seconds, 0 when the token has no exp claim
	TempPassword bool
}

// Expired reports whether the token had expired at now, comparing at
// millisecond resolution. A token without an exp claim is expired.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt*1000 < now.UnixMilli()
}

// ExpiresAtTime returns the expiry as a time.Time.
func (c *Claims) ExpiresAtTime() time.Time {
	return time.Unix(c.ExpiresAt, 0)
}

// HasAnyRole reports whether the claims carry at least one of allowed.
func (c *Claims) HasAnyRole(allowed []string) bool {
	for _, r := range c.Roles {
		if slices.Contains(allowed, r) {
			return true
		}
	}
	return false
}

type userInfo struct {
	Email        string   `json:"email,omitempty"`
	StudentNo    string   `json:"studentNo,omitempty"`
	Roles        []string `json:"roles,omitempty"`
	TempPassword bool     `json:"tempPassword,omitempty"`
}

// wireClaims is the payload layout. The API nests identity under UserInfo;
// top-level fields are accepted as well and take precedence.
type wireClaims struct {
	userInfo
	UserInfo *userInfo `json:"UserInfo,omitempty"`
	jwt.RegisteredClaims
}

var parser = jwt.NewParser()

// Decode extracts Claims from raw without verifying its signature.
func Decode(raw string) (c *Claims, ok bool) {
	defer func() {
		if recover() != nil {
			c, ok = nil, false
		}
	}()

	if raw == "" {
		return nil, false
	}

	var wc wireClaims
	_, parts, err := parser.ParseUnverified(raw, &wc)
	if err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		return nil, false
	}
	if len(parts) < 2 || !isObject(parts[1]) {
		return nil, false
	}

	return wc.claims(), true
}

func isObject(segment string) bool {
	payload, err := parser.DecodeSegment(segment)
	if err != nil {
		return false
	}
	payload = bytes.TrimSpace(payload)
	return len(payload) > 0 && payload[0] == '{'
}

func (wc *wireClaims) claims() *Claims {
	info := wc.userInfo
	if nested := wc.UserInfo; nested != nil {
		if info.Email == "" {
			info.Email = nested.Email
		}
		if info.StudentNo == "" {
			info.StudentNo = nested.StudentNo
		}
		if len(info.Roles) == 0 {
			info.Roles = nested.Roles
		}
		info.TempPassword = info.TempPassword || nested.TempPassword
	}

	c := &Claims{
		Email:        info.Email,
		StudentNo:    info.StudentNo,
		Roles:        slices.Clone(info.Roles),
		TempPassword: info.TempPassword,
	}
	if wc.ExpiresAt != nil {
		c.ExpiresAt = wc.ExpiresAt.Unix()
	}
	return c
}
