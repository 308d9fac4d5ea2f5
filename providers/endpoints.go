package providers

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-authprovider/core"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
)

const (
	ProviderMicrosoft = "microsoft"
	ProviderAzureAD   = "azuread"
	ProviderGoogle    = "google"
	ProviderGitHub    = "github"

	GoogleRevocationURL = "https://oauth2.googleapis.com/revoke"
	microsoftLogoutPath = "/oauth2/v2.0/logout"
	microsoftLoginHost  = "https://login.microsoftonline.com/"
	defaultTenant       = "common"
)

// MicrosoftV2Common is the Microsoft identity platform v2.0 endpoint for the
// common tenant, including the logout and desktop redirect URIs.
func MicrosoftV2Common() core.Endpoint {
	return core.MicrosoftV2CommonEndpoint()
}

// MicrosoftTenant targets a single Azure AD tenant. An empty tenant means
// "common".
func MicrosoftTenant(tenant string) core.Endpoint {
	tenant = strings.TrimSpace(tenant)
	if tenant == "" {
		tenant = defaultTenant
	}
	endpoint := fromOAuth2(microsoft.AzureADEndpoint(tenant))
	endpoint.LogoutURL = microsoftLoginHost + tenant + microsoftLogoutPath
	endpoint.DesktopURL = core.MicrosoftV2CommonEndpoint().DesktopURL
	return endpoint
}

func Google() core.Endpoint {
	endpoint := fromOAuth2(google.Endpoint)
	endpoint.RevocationURL = GoogleRevocationURL
	return endpoint
}

// GitHub has no RFC 7009 revocation endpoint; logout only forgets the
// session locally.
func GitHub() core.Endpoint {
	return fromOAuth2(github.Endpoint)
}

// ByName resolves a preset from configuration. tenant only applies to
// azuread.
func ByName(name string, tenant string) (core.Endpoint, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProviderMicrosoft:
		return MicrosoftV2Common(), nil
	case ProviderAzureAD:
		return MicrosoftTenant(tenant), nil
	case ProviderGoogle:
		return Google(), nil
	case ProviderGitHub:
		return GitHub(), nil
	default:
		return core.Endpoint{}, providerError(ErrorUnknownProvider,
			fmt.Sprintf("providers: unknown provider %q", name), nil,
			map[string]any{"provider": name},
		)
	}
}

func fromOAuth2(endpoint oauth2.Endpoint) core.Endpoint {
	return core.Endpoint{
		AuthorizeURL: endpoint.AuthURL,
		TokenURL:     endpoint.TokenURL,
	}
}
