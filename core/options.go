package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	opts "github.com/goliatone/go-options"
)

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type providerBuilder struct {
	runtimeConfig   Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
}

type Option func(*providerBuilder)

func WithLogger(logger Logger) Option {
	return func(b *providerBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *providerBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *providerBuilder) {
		b.metricsRecorder = recorder
	}
}

// WithErrorMapper overrides how construction errors are normalized.
func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *providerBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *providerBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *providerBuilder) {
		b.optionsResolver = resolver
	}
}

func defaultProviderBuilder(runtime Config) providerBuilder {
	return providerBuilder{
		runtimeConfig:   runtime,
		metricsRecorder: NopMetricsRecorder{},
		errorMapper:     defaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if IsInvalidArgument(err) || IsAuthenticationFailure(err) {
		return MapError(err)
	}
	return newConfigError(err)
}

func newConfigError(cause error) *goerrors.Error {
	err := goerrors.New(cause.Error(), goerrors.CategoryValidation).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorInvalidArgument).
		WithMetadata(map[string]any{"argument": "config"})
	err.Source = cause
	return err
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// CfgxConfigProvider decodes a raw map (file, env, flags) on top of defaults.
// Validation runs after all layers are merged.
type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

// NewStaticConfigProvider loads configuration from an in-memory map.
func NewStaticConfigProvider(values map[string]any) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: staticRawConfigLoader{Values: values}}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw, cfgx.WithDefaults(defaults))
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	resolved.Scopes = NormalizeScopes(resolved.Scopes)
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ClientID) != "" {
		layer["client_id"] = cfg.ClientID
	}
	if includeZero || len(cfg.Scopes) > 0 {
		layer["scopes"] = append([]string(nil), cfg.Scopes...)
	}
	if includeZero || strings.TrimSpace(cfg.LoggerName) != "" {
		layer["logger_name"] = cfg.LoggerName
	}

	// An endpoint is replaced as a whole so URLs from different servers
	// never mix.
	if includeZero || endpointSet(cfg.Endpoint) {
		layer["endpoint"] = map[string]any{
			"authorize_url":  cfg.Endpoint.AuthorizeURL,
			"token_url":      cfg.Endpoint.TokenURL,
			"logout_url":     cfg.Endpoint.LogoutURL,
			"desktop_url":    cfg.Endpoint.DesktopURL,
			"revocation_url": cfg.Endpoint.RevocationURL,
		}
	}
	return layer
}

func endpointSet(endpoint Endpoint) bool {
	return strings.TrimSpace(endpoint.AuthorizeURL) != "" || strings.TrimSpace(endpoint.TokenURL) != ""
}
