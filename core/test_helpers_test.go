package core

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeSession struct {
	token   string
	expiry  time.Time
	expired bool
}

func (s *fakeSession) AccessToken() string { return s.token }
func (s *fakeSession) Expiry() time.Time   { return s.expiry }
func (s *fakeSession) IsExpired() bool     { return s.expired }

// fakeIdentityClient records calls and lets each test script the listener
// events for login, silent login and logout.
type fakeIdentityClient struct {
	mu      sync.Mutex
	session Session

	loginCalls  atomic.Int32
	silentCalls atomic.Int32
	logoutCalls atomic.Int32

	onLogin  func(c *fakeIdentityClient, listener AuthListener)
	onSilent func(c *fakeIdentityClient, listener AuthListener)
	onLogout func(c *fakeIdentityClient, listener AuthListener)
}

func (c *fakeIdentityClient) Login(_ UIOwner, listener AuthListener) {
	c.loginCalls.Add(1)
	if c.onLogin != nil {
		c.onLogin(c, listener)
	}
}

func (c *fakeIdentityClient) LoginSilent(listener AuthListener) {
	c.silentCalls.Add(1)
	if c.onSilent != nil {
		c.onSilent(c, listener)
	}
}

func (c *fakeIdentityClient) Logout(listener AuthListener) {
	c.logoutCalls.Add(1)
	if c.onLogout != nil {
		c.onLogout(c, listener)
	}
}

func (c *fakeIdentityClient) CurrentSession() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *fakeIdentityClient) setSession(session Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = session
}

type callbackRecorder struct {
	mu        sync.Mutex
	successes int
	failures  []error
	done      chan struct{}
	closeOnce sync.Once
}

func newCallbackRecorder() *callbackRecorder {
	return &callbackRecorder{done: make(chan struct{})}
}

func (r *callbackRecorder) OnSuccess() {
	r.mu.Lock()
	r.successes++
	r.mu.Unlock()
	r.closeOnce.Do(func() { close(r.done) })
}

func (r *callbackRecorder) OnFailure(err error) {
	r.mu.Lock()
	r.failures = append(r.failures, err)
	r.mu.Unlock()
	r.closeOnce.Do(func() { close(r.done) })
}

func (r *callbackRecorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for callback")
	}
}

func (r *callbackRecorder) counts() (int, []error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.successes, append([]error(nil), r.failures...)
}

func (r *callbackRecorder) fired() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

func testConfig() Config {
	return Config{
		ClientID: "client-1",
		Scopes:   []string{"openid", "offline_access"},
	}
}

func newTestProvider(t *testing.T, client IdentityClient, opts ...Option) *Provider {
	t.Helper()
	provider, err := NewProvider(testConfig(), client, opts...)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return provider
}
