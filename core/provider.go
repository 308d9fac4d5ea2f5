package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"golang.org/x/sync/singleflight"
)

// Provider coordinates the credential lifecycle of a single identity client.
// It never writes the session; the identity client owns it.
type Provider struct {
	config          Config
	client          IdentityClient
	scopes          []string
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder

	loggerMu sync.RWMutex
	logger   Logger

	refreshGroup singleflight.Group
}

func NewProvider(cfg Config, client IdentityClient, opts ...Option) (*Provider, error) {
	builder := defaultProviderBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}
	if client == nil {
		return nil, NewInvalidArgument("client")
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	loggerName := strings.TrimSpace(finalConfig.LoggerName)
	if loggerName == "" {
		loggerName = defaultLoggerName
	}
	loggerProvider, logger := glog.Resolve(loggerName, builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if builder.logger == nil && builder.loggerProvider != nil {
		if named := builder.loggerProvider.GetLogger(loggerName); named != nil {
			logger = glog.Ensure(named)
		}
	}

	return &Provider{
		config:          finalConfig,
		client:          client,
		scopes:          NormalizeScopes(finalConfig.Scopes),
		loggerProvider:  loggerProvider,
		metricsRecorder: builder.metricsRecorder,
		logger:          logger,
	}, nil
}

func (p *Provider) Config() Config {
	if p == nil {
		return Config{}
	}
	cfg := p.config
	cfg.Scopes = append([]string(nil), p.config.Scopes...)
	return cfg
}

// Scopes returns a copy of the normalized scope set.
func (p *Provider) Scopes() []string {
	if p == nil {
		return []string{}
	}
	return append([]string{}, p.scopes...)
}

func (p *Provider) Endpoint() Endpoint {
	if p == nil {
		return Endpoint{}
	}
	return p.config.Endpoint
}

// SetLogger replaces the logger at runtime. Nil installs the nop logger.
func (p *Provider) SetLogger(logger Logger) {
	if p == nil {
		return
	}
	p.loggerMu.Lock()
	defer p.loggerMu.Unlock()
	p.logger = glog.Ensure(logger)
}

func (p *Provider) currentLogger() Logger {
	p.loggerMu.RLock()
	defer p.loggerMu.RUnlock()
	return p.logger
}

// AuthenticateRequest adds a bearer Authorization header to req. Requests
// that already carry one are left alone. An expired session is refreshed
// silently first, blocking until the refresh completes or ctx ends.
func (p *Provider) AuthenticateRequest(ctx context.Context, req Request) (err error) {
	if p == nil || p.client == nil {
		return NewInvalidArgument("provider")
	}
	if req == nil {
		return NewInvalidArgument("request")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := time.Now()
	defer func() {
		p.observeOperation(ctx, startedAt, "authenticate_request", err)
	}()

	if _, ok := req.Header(AuthorizationHeader); ok {
		p.logDebug("authorization header already present", map[string]any{"url": req.URL()})
		return nil
	}
	if !p.HasValidSession() {
		err = NewAuthenticationFailure(msgNoActiveAccount, nil)
		p.logError(msgNoActiveAccount, err, map[string]any{"url": req.URL()})
		return err
	}
	if p.IsExpired() {
		p.logDebug("session expired, refreshing silently", map[string]any{"url": req.URL()})
		if err = p.loginSilentBlocking(ctx); err != nil {
			return err
		}
	}

	session := p.client.CurrentSession()
	if !sessionPresent(session) {
		err = NewAuthenticationFailure(msgNoActiveAccount, nil)
		p.logError(msgNoActiveAccount, err, map[string]any{"url": req.URL()})
		return err
	}
	req.AddHeader(AuthorizationHeader, bearerValue(session.AccessToken()))
	p.logDebug("request authenticated", map[string]any{"url": req.URL()})
	return nil
}

// Login completes immediately when a session is present. Otherwise it runs
// the identity client's interactive login on owner's UI thread and reports
// through cb. A NOT_CONNECTED completion is ignored while waiting.
func (p *Provider) Login(owner UIOwner, cb Callback) error {
	if p == nil || p.client == nil {
		return NewInvalidArgument("provider")
	}
	if cb == nil {
		return NewInvalidArgument("callback")
	}
	if owner == nil {
		return NewInvalidArgument("owner")
	}

	if p.HasValidSession() {
		p.logDebug("login skipped, session present", nil)
		p.observeOperation(context.Background(), time.Now(), "login", nil)
		p.notifySuccess("login", cb)
		return nil
	}

	startedAt := time.Now()
	var once sync.Once
	finish := func(err error) {
		once.Do(func() {
			p.observeOperation(context.Background(), startedAt, "login", err)
			if err != nil {
				p.notifyFailure("login", cb, err)
				return
			}
			p.logDebug("login completed", nil)
			p.notifySuccess("login", cb)
		})
	}
	listener := ListenerFuncs{
		Complete: func(status Status, _ Session, _ any) {
			switch status {
			case StatusNotConnected:
				p.logDebug("login reported not connected, waiting", map[string]any{"status": status.String()})
			case StatusConnected:
				finish(nil)
			default:
				err := NewAuthenticationFailure(msgLoginUnsuccessful, nil)
				p.logError(msgLoginUnsuccessful, err, map[string]any{"status": status.String()})
				finish(err)
			}
		},
		Error: func(cause error, _ any) {
			err := NewAuthenticationFailure(msgLoginFailure, cause)
			p.logError(msgLoginFailure, err, nil)
			finish(err)
		},
	}

	p.logDebug("login started", nil)
	work := func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				err := NewAuthenticationFailure(msgLoginFailure, fmt.Errorf("identity client panicked: %v", recovered))
				p.logError(msgLoginFailure, err, nil)
				finish(err)
			}
		}()
		p.client.Login(owner, listener)
	}
	submitter, ok := owner.(SubmittingUIOwner)
	if !ok {
		owner.RunOnUIThread(work)
		return nil
	}
	if !submitter.TryRunOnUIThread(work) {
		err := NewAuthenticationFailure(msgLoginFailure, ErrUIOwnerClosed)
		p.logError(msgLoginFailure, err, nil)
		finish(err)
	}
	return nil
}

// Logout delegates to the identity client and reports through cb.
func (p *Provider) Logout(cb Callback) error {
	if p == nil || p.client == nil {
		return NewInvalidArgument("provider")
	}
	if cb == nil {
		return NewInvalidArgument("callback")
	}

	startedAt := time.Now()
	var once sync.Once
	finish := func(err error) {
		once.Do(func() {
			p.observeOperation(context.Background(), startedAt, "logout", err)
			if err != nil {
				p.notifyFailure("logout", cb, err)
				return
			}
			p.logDebug("logout completed", nil)
			p.notifySuccess("logout", cb)
		})
	}
	listener := ListenerFuncs{
		Complete: func(Status, Session, any) {
			finish(nil)
		},
		Error: func(cause error, _ any) {
			err := NewAuthenticationFailure(msgLogoutFailure, cause)
			p.logError(msgLogoutFailure, err, nil)
			finish(err)
		},
	}

	p.logDebug("logout started", nil)
	func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				err := NewAuthenticationFailure(msgLogoutFailure, fmt.Errorf("identity client panicked: %v", recovered))
				p.logError(msgLogoutFailure, err, nil)
				finish(err)
			}
		}()
		p.client.Logout(listener)
	}()
	return nil
}

func (p *Provider) notifySuccess(operation string, cb Callback) {
	defer p.recoverCallback(operation)
	cb.OnSuccess()
}

func (p *Provider) notifyFailure(operation string, cb Callback, err error) {
	defer p.recoverCallback(operation)
	cb.OnFailure(err)
}

func (p *Provider) recoverCallback(operation string) {
	if recovered := recover(); recovered != nil {
		p.logError("callback panicked", fmt.Errorf("%v", recovered), map[string]any{"operation": operation})
	}
}
