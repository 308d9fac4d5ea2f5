package oauth2client

import (
	"strings"
	"time"

	"github.com/goliatone/go-authprovider/core"
	"golang.org/x/oauth2"
)

// Session is an immutable snapshot of the tokens for the signed-in account.
// A refresh produces a new Session.
type Session struct {
	accessToken  string
	refreshToken string
	tokenType    string
	expiry       time.Time
	scopes       []string
	skew         time.Duration
	now          func() time.Time
}

func (s *Session) AccessToken() string {
	if s == nil {
		return ""
	}
	return s.accessToken
}

func (s *Session) RefreshToken() string {
	if s == nil {
		return ""
	}
	return s.refreshToken
}

func (s *Session) TokenType() string {
	if s == nil {
		return ""
	}
	return s.tokenType
}

func (s *Session) Expiry() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.expiry
}

func (s *Session) Scopes() []string {
	if s == nil {
		return []string{}
	}
	return append([]string{}, s.scopes...)
}

// IsExpired treats a session as expired skew before its expiry. A zero
// expiry never expires.
func (s *Session) IsExpired() bool {
	if s == nil || s.expiry.IsZero() {
		return false
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	return !now().Add(s.skew).Before(s.expiry)
}

// StoredSession is the persisted form of a Session.
type StoredSession struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitzero"`
	Scopes       []string  `json:"scopes,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s *Session) Stored(updatedAt time.Time) StoredSession {
	if s == nil {
		return StoredSession{}
	}
	return StoredSession{
		AccessToken:  s.accessToken,
		RefreshToken: s.refreshToken,
		TokenType:    s.tokenType,
		Expiry:       s.expiry,
		Scopes:       s.Scopes(),
		UpdatedAt:    updatedAt.UTC(),
	}
}

func (c *Client) sessionFromToken(token *oauth2.Token, previous *Session) *Session {
	refreshToken := strings.TrimSpace(token.RefreshToken)
	if refreshToken == "" && previous != nil {
		refreshToken = previous.refreshToken
	}
	tokenType := strings.TrimSpace(token.TokenType)
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &Session{
		accessToken:  strings.TrimSpace(token.AccessToken),
		refreshToken: refreshToken,
		tokenType:    tokenType,
		expiry:       token.Expiry,
		scopes:       grantedScopes(token, c.cfg.Scopes),
		skew:         c.expirySkew,
		now:          c.now,
	}
}

func (c *Client) sessionFromStored(stored StoredSession) *Session {
	return &Session{
		accessToken:  strings.TrimSpace(stored.AccessToken),
		refreshToken: strings.TrimSpace(stored.RefreshToken),
		tokenType:    strings.TrimSpace(stored.TokenType),
		expiry:       stored.Expiry,
		scopes:       core.NormalizeScopes(stored.Scopes),
		skew:         c.expirySkew,
		now:          c.now,
	}
}

func grantedScopes(token *oauth2.Token, requested []string) []string {
	if raw, ok := token.Extra("scope").(string); ok && strings.TrimSpace(raw) != "" {
		return core.NormalizeScopes(strings.Fields(raw))
	}
	return append([]string{}, requested...)
}

var _ core.Session = (*Session)(nil)
