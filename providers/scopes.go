package providers

import (
	"strings"

	"github.com/goliatone/go-authprovider/core"
)

const (
	ScopeOpenID        = "openid"
	ScopeEmail         = "email"
	ScopeProfile       = "profile"
	ScopeOfflineAccess = "offline_access"
)

// DefaultScopes returns the scopes a preset needs for a refreshable session.
func DefaultScopes(name string) []string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProviderMicrosoft, ProviderAzureAD:
		return []string{ScopeOpenID, ScopeProfile, ScopeOfflineAccess}
	case ProviderGoogle:
		return []string{ScopeOpenID, ScopeProfile, ScopeEmail}
	case ProviderGitHub:
		return []string{"read:user"}
	default:
		return []string{}
	}
}

// WithIdentityScopes appends the OIDC identity scopes when include is set.
func WithIdentityScopes(scopes []string, include bool) []string {
	if !include {
		return core.NormalizeScopes(scopes)
	}
	return core.NormalizeScopes(append(append([]string(nil), scopes...), ScopeOpenID, ScopeProfile, ScopeEmail))
}
