package core

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"
)

func TestAuthenticateRequest_ExistingAuthorizationHeaderUntouched(t *testing.T) {
	client := &fakeIdentityClient{session: &fakeSession{token: "token-1", expired: true}}
	provider := newTestProvider(t, client)

	req := NewRequest("https://graph.example/me", HeaderOption{Name: AuthorizationHeader, Value: "Basic abc"})
	if err := provider.AuthenticateRequest(context.Background(), req); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	headers := req.Headers()
	if len(headers) != 1 || headers[0].Value != "Basic abc" {
		t.Fatalf("expected header unchanged, got %+v", headers)
	}
	if client.silentCalls.Load() != 0 || client.loginCalls.Load() != 0 {
		t.Fatalf("expected no identity client calls")
	}
}

func TestAuthenticateRequest_HeaderMatchIsCaseSensitive(t *testing.T) {
	client := &fakeIdentityClient{session: &fakeSession{token: "token-1"}}
	provider := newTestProvider(t, client)

	req := NewRequest("https://graph.example/me", HeaderOption{Name: "authorization", Value: "Basic abc"})
	if err := provider.AuthenticateRequest(context.Background(), req); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if value, ok := req.Header(AuthorizationHeader); !ok || value != "bearer token-1" {
		t.Fatalf("expected bearer header next to lowercase header, got %q", value)
	}
	if len(req.Headers()) != 2 {
		t.Fatalf("expected two headers, got %+v", req.Headers())
	}
}

func TestAuthenticateRequest_NoSessionFails(t *testing.T) {
	client := &fakeIdentityClient{}
	provider := newTestProvider(t, client)

	req := NewRequest("https://graph.example/me")
	err := provider.AuthenticateRequest(context.Background(), req)
	if !IsAuthenticationFailure(err) {
		t.Fatalf("expected authentication failure, got %v", err)
	}
	if MapError(err).Message != msgNoActiveAccount {
		t.Fatalf("expected no active account message, got %q", MapError(err).Message)
	}
	if len(req.Headers()) != 0 {
		t.Fatalf("expected no header to be added")
	}

	client.setSession(&fakeSession{token: ""})
	if err := provider.AuthenticateRequest(context.Background(), req); !IsAuthenticationFailure(err) {
		t.Fatalf("expected empty token to count as no session, got %v", err)
	}
}

func TestAuthenticateRequest_ValidSessionAddsBearer(t *testing.T) {
	client := &fakeIdentityClient{session: &fakeSession{token: "abc.def"}}
	provider := newTestProvider(t, client)

	req := NewRequest("https://graph.example/me")
	if err := provider.AuthenticateRequest(context.Background(), req); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	value, ok := req.Header(AuthorizationHeader)
	if !ok {
		t.Fatalf("expected authorization header")
	}
	if value != "bearer abc.def" {
		t.Fatalf("expected exact bearer value, got %q", value)
	}
	if client.silentCalls.Load() != 0 {
		t.Fatalf("expected no silent refresh for fresh session")
	}
}

func TestAuthenticateRequest_ExpiredSessionRefreshesOnce(t *testing.T) {
	client := &fakeIdentityClient{
		session: &fakeSession{token: "old", expired: true},
		onSilent: func(c *fakeIdentityClient, listener AuthListener) {
			fresh := &fakeSession{token: "new"}
			c.setSession(fresh)
			go listener.OnAuthComplete(StatusConnected, fresh, nil)
		},
	}
	provider := newTestProvider(t, client)

	req := NewRequest("https://graph.example/me")
	if err := provider.AuthenticateRequest(context.Background(), req); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got := client.silentCalls.Load(); got != 1 {
		t.Fatalf("expected one silent refresh, got %d", got)
	}
	if value, _ := req.Header(AuthorizationHeader); value != "bearer new" {
		t.Fatalf("expected refreshed token, got %q", value)
	}
}

func TestAuthenticateRequest_RefreshFailurePropagates(t *testing.T) {
	sdkErr := errors.New("invalid_grant")
	client := &fakeIdentityClient{
		session: &fakeSession{token: "old", expired: true},
		onSilent: func(_ *fakeIdentityClient, listener AuthListener) {
			listener.OnAuthError(sdkErr, nil)
		},
	}
	provider := newTestProvider(t, client)

	req := NewRequest("https://graph.example/me")
	err := provider.AuthenticateRequest(context.Background(), req)
	if !IsAuthenticationFailure(err) {
		t.Fatalf("expected authentication failure, got %v", err)
	}
	if !errors.Is(err, sdkErr) {
		t.Fatalf("expected sdk error as cause, got %v", err)
	}
	if MapError(err).Message != msgLoginSilent {
		t.Fatalf("expected silent login message, got %q", MapError(err).Message)
	}
	if len(req.Headers()) != 0 {
		t.Fatalf("expected no header after failed refresh")
	}
	if got := client.silentCalls.Load(); got != 1 {
		t.Fatalf("expected exactly one refresh attempt, got %d", got)
	}
}

func TestAuthenticateRequest_RefreshNotConnectedFails(t *testing.T) {
	client := &fakeIdentityClient{
		session: &fakeSession{token: "old", expired: true},
		onSilent: func(_ *fakeIdentityClient, listener AuthListener) {
			listener.OnAuthComplete(StatusNotConnected, nil, nil)
		},
	}
	provider := newTestProvider(t, client)

	err := provider.AuthenticateRequest(context.Background(), NewRequest("https://graph.example/me"))
	if !IsAuthenticationFailure(err) {
		t.Fatalf("expected authentication failure for non-connected refresh, got %v", err)
	}
}

func TestAuthenticateRequest_ConcurrentExpiredCallersShareRefresh(t *testing.T) {
	release := make(chan struct{})
	client := &fakeIdentityClient{
		session: &fakeSession{token: "old", expired: true},
	}
	client.onSilent = func(c *fakeIdentityClient, listener AuthListener) {
		go func() {
			<-release
			fresh := &fakeSession{token: "new"}
			c.setSession(fresh)
			listener.OnAuthComplete(StatusConnected, fresh, nil)
		}()
	}
	provider := newTestProvider(t, client)

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	requests := make([]*HeaderMap, callers)
	for index := range callers {
		requests[index] = NewRequest("https://graph.example/me")
		wg.Add(1)
		go func(req *HeaderMap) {
			defer wg.Done()
			errs <- provider.AuthenticateRequest(context.Background(), req)
		}(requests[index])
	}

	deadline := time.After(2 * time.Second)
	for client.silentCalls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for silent refresh")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("authenticate: %v", err)
		}
	}
	if got := client.silentCalls.Load(); got != 1 {
		t.Fatalf("expected a single shared refresh, got %d", got)
	}
	for _, req := range requests {
		if value, _ := req.Header(AuthorizationHeader); value != "bearer new" {
			t.Fatalf("expected refreshed token on every request, got %q", value)
		}
	}
}

func TestAuthenticateRequest_ContextCancelledDuringRefresh(t *testing.T) {
	listeners := make(chan AuthListener, 1)
	client := &fakeIdentityClient{
		session: &fakeSession{token: "old", expired: true},
		onSilent: func(_ *fakeIdentityClient, listener AuthListener) {
			listeners <- listener
		},
	}
	provider := newTestProvider(t, client)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := provider.AuthenticateRequest(ctx, NewRequest("https://graph.example/me"))
	if !IsAuthenticationFailure(err) {
		t.Fatalf("expected authentication failure, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded cause, got %v", err)
	}
	select {
	case listener := <-listeners:
		listener.OnAuthComplete(StatusConnected, nil, nil)
	case <-time.After(time.Second):
		t.Fatalf("expected silent login to be started")
	}
}

func TestAuthenticateRequest_HTTPRequestAdapter(t *testing.T) {
	client := &fakeIdentityClient{session: &fakeSession{token: "tok"}}
	provider := newTestProvider(t, client)

	httpReq, err := http.NewRequest(http.MethodGet, "https://graph.example/me", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if err := provider.AuthenticateRequest(context.Background(), NewHTTPRequest(httpReq)); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got := httpReq.Header.Get("Authorization"); got != "bearer tok" {
		t.Fatalf("expected bearer header on http request, got %q", got)
	}
}

func TestAuthenticateRequest_NilRequest(t *testing.T) {
	provider := newTestProvider(t, &fakeIdentityClient{})
	if err := provider.AuthenticateRequest(context.Background(), nil); !IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestLogin_ExistingSessionSucceedsWithoutSDK(t *testing.T) {
	client := &fakeIdentityClient{session: &fakeSession{token: "tok", expired: true}}
	provider := newTestProvider(t, client)

	owner := ExecutorFunc(func(func()) {
		t.Fatalf("expected no ui dispatch")
	})
	cb := newCallbackRecorder()
	if err := provider.Login(owner, cb); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !cb.fired() {
		t.Fatalf("expected success to be delivered synchronously")
	}
	successes, failures := cb.counts()
	if successes != 1 || len(failures) != 0 {
		t.Fatalf("expected one success, got %d successes %d failures", successes, len(failures))
	}
	if client.loginCalls.Load() != 0 {
		t.Fatalf("expected no interactive login")
	}
}

func TestLogin_NilCallbackFailsFast(t *testing.T) {
	client := &fakeIdentityClient{}
	provider := newTestProvider(t, client)

	if err := provider.Login(InlineExecutor{}, nil); !IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument for login, got %v", err)
	}
	if err := provider.Logout(nil); !IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument for logout, got %v", err)
	}
	if err := provider.Login(nil, newCallbackRecorder()); !IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument for nil owner, got %v", err)
	}
	if client.loginCalls.Load() != 0 || client.logoutCalls.Load() != 0 {
		t.Fatalf("expected no identity client calls")
	}
}

func TestLogin_RunsOnUIThreadAndIgnoresNotConnected(t *testing.T) {
	var dispatched int
	owner := ExecutorFunc(func(fn func()) {
		dispatched++
		fn()
	})
	client := &fakeIdentityClient{
		onLogin: func(c *fakeIdentityClient, listener AuthListener) {
			listener.OnAuthComplete(StatusNotConnected, nil, nil)
			session := &fakeSession{token: "tok"}
			c.setSession(session)
			listener.OnAuthComplete(StatusConnected, session, nil)
		},
	}
	provider := newTestProvider(t, client)

	cb := newCallbackRecorder()
	if err := provider.Login(owner, cb); err != nil {
		t.Fatalf("login: %v", err)
	}
	cb.wait(t)
	successes, failures := cb.counts()
	if successes != 1 || len(failures) != 0 {
		t.Fatalf("expected exactly one success, got %d successes %v", successes, failures)
	}
	if dispatched != 1 {
		t.Fatalf("expected login to be marshalled to the ui thread once, got %d", dispatched)
	}
}

func TestLogin_UnexpectedStatusFails(t *testing.T) {
	client := &fakeIdentityClient{
		onLogin: func(_ *fakeIdentityClient, listener AuthListener) {
			listener.OnAuthComplete(StatusUnknown, nil, nil)
		},
	}
	provider := newTestProvider(t, client)

	cb := newCallbackRecorder()
	if err := provider.Login(InlineExecutor{}, cb); err != nil {
		t.Fatalf("login: %v", err)
	}
	cb.wait(t)
	_, failures := cb.counts()
	if len(failures) != 1 || MapError(failures[0]).Message != msgLoginUnsuccessful {
		t.Fatalf("expected login unsuccessful failure, got %v", failures)
	}
}

func TestLogin_ErrorWrapsCauseAndDeliversOnce(t *testing.T) {
	sdkErr := errors.New("user cancelled")
	client := &fakeIdentityClient{
		onLogin: func(_ *fakeIdentityClient, listener AuthListener) {
			listener.OnAuthError(sdkErr, nil)
			listener.OnAuthComplete(StatusConnected, nil, nil)
		},
	}
	provider := newTestProvider(t, client)

	cb := newCallbackRecorder()
	if err := provider.Login(InlineExecutor{}, cb); err != nil {
		t.Fatalf("login: %v", err)
	}
	cb.wait(t)
	successes, failures := cb.counts()
	if successes != 0 || len(failures) != 1 {
		t.Fatalf("expected a single failure, got %d successes %d failures", successes, len(failures))
	}
	if !IsAuthenticationFailure(failures[0]) || !errors.Is(failures[0], sdkErr) {
		t.Fatalf("expected wrapped authentication failure, got %v", failures[0])
	}
	if MapError(failures[0]).Message != msgLoginFailure {
		t.Fatalf("expected login failure message, got %q", MapError(failures[0]).Message)
	}
}

func TestLogin_SDKPanicBecomesFailure(t *testing.T) {
	client := &fakeIdentityClient{
		onLogin: func(*fakeIdentityClient, AuthListener) {
			panic("boom")
		},
	}
	provider := newTestProvider(t, client)

	cb := newCallbackRecorder()
	if err := provider.Login(InlineExecutor{}, cb); err != nil {
		t.Fatalf("login: %v", err)
	}
	cb.wait(t)
	if _, failures := cb.counts(); len(failures) != 1 || !IsAuthenticationFailure(failures[0]) {
		t.Fatalf("expected authentication failure, got %v", failures)
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	client := &fakeIdentityClient{
		session: &fakeSession{token: "tok"},
		onLogout: func(c *fakeIdentityClient, listener AuthListener) {
			c.setSession(nil)
			listener.OnAuthComplete(StatusUnknown, nil, nil)
		},
	}
	provider := newTestProvider(t, client)
	if !provider.HasValidSession() {
		t.Fatalf("expected session before logout")
	}

	cb := newCallbackRecorder()
	if err := provider.Logout(cb); err != nil {
		t.Fatalf("logout: %v", err)
	}
	cb.wait(t)
	if successes, _ := cb.counts(); successes != 1 {
		t.Fatalf("expected logout success")
	}
	if provider.HasValidSession() {
		t.Fatalf("expected no session after logout")
	}
	if provider.CredentialState() != CredentialStateNoSession {
		t.Fatalf("expected no_session state, got %q", provider.CredentialState())
	}
}

func TestLogout_ErrorWrapsCause(t *testing.T) {
	sdkErr := errors.New("network down")
	client := &fakeIdentityClient{
		onLogout: func(_ *fakeIdentityClient, listener AuthListener) {
			go listener.OnAuthError(sdkErr, nil)
		},
	}
	provider := newTestProvider(t, client)

	cb := newCallbackRecorder()
	if err := provider.Logout(cb); err != nil {
		t.Fatalf("logout: %v", err)
	}
	cb.wait(t)
	_, failures := cb.counts()
	if len(failures) != 1 || !errors.Is(failures[0], sdkErr) {
		t.Fatalf("expected wrapped logout failure, got %v", failures)
	}
	if MapError(failures[0]).Message != msgLogoutFailure {
		t.Fatalf("expected logout failure message, got %q", MapError(failures[0]).Message)
	}
}

func TestCallbackPanicIsRecovered(t *testing.T) {
	client := &fakeIdentityClient{session: &fakeSession{token: "tok"}}
	logger := newCaptureLogger()
	provider := newTestProvider(t, client, WithLogger(logger))

	cb := CallbackFuncs{Success: func() { panic("callback bug") }}
	if err := provider.Login(InlineExecutor{}, cb); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, ok := logger.find("error", "callback panicked"); !ok {
		t.Fatalf("expected recovered callback panic to be logged")
	}
}

func TestNewProvider_RequiresClient(t *testing.T) {
	if _, err := NewProvider(testConfig(), nil); !IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument for nil client, got %v", err)
	}
}

func TestProviderScopes_ReturnsCopy(t *testing.T) {
	cfg := testConfig()
	cfg.Scopes = []string{" User.Read ", "user.read", "", "Mail.Send"}
	provider, err := NewProvider(cfg, &fakeIdentityClient{})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	scopes := provider.Scopes()
	if len(scopes) != 2 || scopes[0] != "User.Read" || scopes[1] != "Mail.Send" {
		t.Fatalf("unexpected scopes %v", scopes)
	}
	scopes[0] = "mutated"
	if provider.Scopes()[0] != "User.Read" {
		t.Fatalf("expected scopes to be copied")
	}
}
