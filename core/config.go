package core

import (
	"fmt"
	"net/url"
	"strings"
)

// Endpoint describes the authorization server an identity client talks to.
// It is a value type; each holder owns its copy.
type Endpoint struct {
	AuthorizeURL  string `koanf:"authorize_url" mapstructure:"authorize_url"`
	TokenURL      string `koanf:"token_url" mapstructure:"token_url"`
	LogoutURL     string `koanf:"logout_url" mapstructure:"logout_url"`
	DesktopURL    string `koanf:"desktop_url" mapstructure:"desktop_url"`
	RevocationURL string `koanf:"revocation_url" mapstructure:"revocation_url"`
}

type Config struct {
	ClientID   string   `koanf:"client_id" mapstructure:"client_id"`
	Scopes     []string `koanf:"scopes" mapstructure:"scopes"`
	Endpoint   Endpoint `koanf:"endpoint" mapstructure:"endpoint"`
	LoggerName string   `koanf:"logger_name" mapstructure:"logger_name"`
}

const defaultLoggerName = "authprovider"

// MicrosoftV2CommonEndpoint is the Microsoft identity platform v2.0 endpoint
// for the common tenant.
func MicrosoftV2CommonEndpoint() Endpoint {
	return Endpoint{
		AuthorizeURL: "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
		TokenURL:     "https://login.microsoftonline.com/common/oauth2/v2.0/token",
		LogoutURL:    "https://login.microsoftonline.com/common/oauth2/v2.0/logout",
		DesktopURL:   "urn:ietf:wg:oauth:2.0:oob",
	}
}

func DefaultConfig() Config {
	return Config{
		Endpoint:   MicrosoftV2CommonEndpoint(),
		LoggerName: defaultLoggerName,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("core: client_id is required")
	}
	if err := c.Endpoint.Validate(); err != nil {
		return err
	}
	return nil
}

func (e Endpoint) Validate() error {
	if strings.TrimSpace(e.AuthorizeURL) == "" {
		return fmt.Errorf("core: endpoint authorize_url is required")
	}
	if strings.TrimSpace(e.TokenURL) == "" {
		return fmt.Errorf("core: endpoint token_url is required")
	}
	for name, raw := range map[string]string{
		"authorize_url":  e.AuthorizeURL,
		"token_url":      e.TokenURL,
		"logout_url":     e.LogoutURL,
		"revocation_url": e.RevocationURL,
	} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("core: endpoint %s is invalid: %q", name, raw)
		}
	}
	return nil
}

// NormalizeScopes trims, drops blanks and removes case-insensitive duplicates
// while keeping first-seen order.
func NormalizeScopes(scopes []string) []string {
	if len(scopes) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(scopes))
	out := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		trimmed := strings.TrimSpace(scope)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
