package providers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/goliatone/go-authprovider/core"
)

type discoveryClaims struct {
	RevocationEndpoint string `json:"revocation_endpoint"`
	EndSessionEndpoint string `json:"end_session_endpoint"`
}

type DiscoverOption func(*discoverOptions)

type discoverOptions struct {
	httpClient *http.Client
}

// WithDiscoveryHTTPClient sets the client used to fetch the discovery
// document.
func WithDiscoveryHTTPClient(client *http.Client) DiscoverOption {
	return func(o *discoverOptions) {
		o.httpClient = client
	}
}

// Discover reads the issuer's OpenID configuration. Endpoints must share the
// issuer's scheme and host.
func Discover(ctx context.Context, issuer string, opts ...DiscoverOption) (core.Endpoint, error) {
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		return core.Endpoint{}, core.NewInvalidArgument("issuer")
	}
	options := discoverOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if options.httpClient != nil {
		ctx = oidc.ClientContext(ctx, options.httpClient)
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return core.Endpoint{}, providerError(ErrorDiscoveryFailed, "providers: oidc discovery failed", err, map[string]any{"issuer": issuer})
	}
	var claims discoveryClaims
	if err := provider.Claims(&claims); err != nil {
		return core.Endpoint{}, providerError(ErrorInvalidDiscovery, "providers: read discovery claims", err, map[string]any{"issuer": issuer})
	}

	oauthEndpoint := provider.Endpoint()
	endpoint := core.Endpoint{
		AuthorizeURL:  oauthEndpoint.AuthURL,
		TokenURL:      oauthEndpoint.TokenURL,
		LogoutURL:     claims.EndSessionEndpoint,
		RevocationURL: claims.RevocationEndpoint,
	}
	if err := validateOrigins(issuer, endpoint); err != nil {
		return core.Endpoint{}, err
	}
	if err := endpoint.Validate(); err != nil {
		return core.Endpoint{}, providerError(ErrorInvalidDiscovery, err.Error(), err, map[string]any{"issuer": issuer})
	}
	return endpoint, nil
}

func validateOrigins(issuer string, endpoint core.Endpoint) error {
	issuerURL, err := url.Parse(issuer)
	if err != nil {
		return providerError(ErrorInvalidDiscovery, "providers: invalid issuer url", err, map[string]any{"issuer": issuer})
	}
	fields := map[string]string{
		"authorization_endpoint": endpoint.AuthorizeURL,
		"token_endpoint":         endpoint.TokenURL,
		"end_session_endpoint":   endpoint.LogoutURL,
		"revocation_endpoint":    endpoint.RevocationURL,
	}
	for name, raw := range fields {
		if raw == "" {
			continue
		}
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme != issuerURL.Scheme || parsed.Host != issuerURL.Host {
			return providerError(ErrorInvalidDiscovery, "providers: "+name+" is not served by the issuer", err,
				map[string]any{"issuer": issuer, "endpoint": name, "url": raw},
			)
		}
	}
	return nil
}
