package authprovider

import (
	"context"

	"github.com/goliatone/go-authprovider/core"
	oauth2client "github.com/goliatone/go-authprovider/identity/oauth2"
	"github.com/goliatone/go-authprovider/providers"
)

// OAuth2Config pairs the identity client settings with the provider's own.
// Scopes and endpoint are shared; ClientSecret stays on the client side.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	Endpoint     core.Endpoint
	Scopes       []string
	CallbackPort int
	StoreKey     string
}

// NewOAuth2Provider builds an oauth2client.Client, restores any persisted
// session and wraps the client in a Provider. A failed restore is returned;
// a missing session is not.
func NewOAuth2Provider(ctx context.Context, cfg OAuth2Config, clientOpts []oauth2client.Option, opts ...Option) (*Provider, *oauth2client.Client, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	client, err := oauth2client.New(oauth2client.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     cfg.Endpoint,
		Scopes:       cfg.Scopes,
		CallbackPort: cfg.CallbackPort,
		StoreKey:     cfg.StoreKey,
	}, clientOpts...)
	if err != nil {
		return nil, nil, err
	}
	if _, err := client.Restore(ctx); err != nil {
		return nil, nil, err
	}
	provider, err := core.NewProvider(core.Config{
		ClientID: cfg.ClientID,
		Scopes:   cfg.Scopes,
		Endpoint: cfg.Endpoint,
	}, client, opts...)
	if err != nil {
		return nil, nil, err
	}
	return provider, client, nil
}

// MicrosoftProvider targets the common tenant with the default Microsoft
// scopes unless cfg sets its own.
func MicrosoftProvider(ctx context.Context, cfg OAuth2Config, clientOpts []oauth2client.Option, opts ...Option) (*Provider, *oauth2client.Client, error) {
	return presetProvider(ctx, providers.ProviderMicrosoft, providers.MicrosoftV2Common(), cfg, clientOpts, opts...)
}

func GoogleProvider(ctx context.Context, cfg OAuth2Config, clientOpts []oauth2client.Option, opts ...Option) (*Provider, *oauth2client.Client, error) {
	return presetProvider(ctx, providers.ProviderGoogle, providers.Google(), cfg, clientOpts, opts...)
}

func GitHubProvider(ctx context.Context, cfg OAuth2Config, clientOpts []oauth2client.Option, opts ...Option) (*Provider, *oauth2client.Client, error) {
	return presetProvider(ctx, providers.ProviderGitHub, providers.GitHub(), cfg, clientOpts, opts...)
}

func presetProvider(
	ctx context.Context,
	name string,
	endpoint core.Endpoint,
	cfg OAuth2Config,
	clientOpts []oauth2client.Option,
	opts ...Option,
) (*Provider, *oauth2client.Client, error) {
	if cfg.Endpoint == (core.Endpoint{}) {
		cfg.Endpoint = endpoint
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = providers.DefaultScopes(name)
	}
	return NewOAuth2Provider(ctx, cfg, clientOpts, opts...)
}
