package core

import (
	"strings"
	"time"
)

// CredentialState is derived from the identity client's current session on
// every read. It is never cached.
type CredentialState string

const (
	CredentialStateNoSession      CredentialState = "no_session"
	CredentialStateValidSession   CredentialState = "valid_session"
	CredentialStateExpiredSession CredentialState = "expired_session"
)

func ResolveCredentialState(session Session) CredentialState {
	if !sessionPresent(session) {
		return CredentialStateNoSession
	}
	if session.IsExpired() {
		return CredentialStateExpiredSession
	}
	return CredentialStateValidSession
}

type SessionStatus struct {
	State           CredentialState `json:"state"`
	HasValidSession bool            `json:"has_valid_session"`
	Expired         bool            `json:"expired"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
	Scopes          []string        `json:"scopes"`
}

func sessionPresent(session Session) bool {
	if session == nil {
		return false
	}
	return strings.TrimSpace(session.AccessToken()) != ""
}

// HasValidSession reports whether the identity client holds a session with an
// access token. An expired session still counts.
func (p *Provider) HasValidSession() bool {
	if p == nil || p.client == nil {
		return false
	}
	return sessionPresent(p.client.CurrentSession())
}

// IsExpired reports whether the current session is expired. It is false when
// there is no session.
func (p *Provider) IsExpired() bool {
	if p == nil || p.client == nil {
		return false
	}
	session := p.client.CurrentSession()
	if session == nil {
		return false
	}
	return session.IsExpired()
}

func (p *Provider) CredentialState() CredentialState {
	if p == nil || p.client == nil {
		return CredentialStateNoSession
	}
	return ResolveCredentialState(p.client.CurrentSession())
}

func (p *Provider) Status() SessionStatus {
	status := SessionStatus{
		State:  CredentialStateNoSession,
		Scopes: []string{},
	}
	if p == nil || p.client == nil {
		return status
	}
	status.Scopes = p.Scopes()
	session := p.client.CurrentSession()
	status.State = ResolveCredentialState(session)
	if status.State == CredentialStateNoSession {
		return status
	}
	status.HasValidSession = true
	status.Expired = status.State == CredentialStateExpiredSession
	if expiry := session.Expiry(); !expiry.IsZero() {
		expiresAt := expiry.UTC()
		status.ExpiresAt = &expiresAt
	}
	return status
}
