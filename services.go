// Package authprovider coordinates the credential lifecycle of an OAuth2
// identity client: login, silent refresh on demand, logout and bearer
// header injection.
package authprovider

import "github.com/goliatone/go-authprovider/core"

type Config = core.Config

type Endpoint = core.Endpoint

type Option = core.Option

type Provider = core.Provider

type Session = core.Session

type SessionStatus = core.SessionStatus

type CredentialState = core.CredentialState

type IdentityClient = core.IdentityClient
type AuthListener = core.AuthListener
type UIOwner = core.UIOwner
type Callback = core.Callback
type Request = core.Request

const (
	CredentialStateNoSession      = core.CredentialStateNoSession
	CredentialStateValidSession   = core.CredentialStateValidSession
	CredentialStateExpiredSession = core.CredentialStateExpiredSession
)

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithErrorMapper     = core.WithErrorMapper
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewProvider(cfg Config, client IdentityClient, opts ...Option) (*Provider, error) {
	return core.NewProvider(cfg, client, opts...)
}
