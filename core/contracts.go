package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// Status is the terminal status an identity client reports on completion.
type Status int

const (
	StatusUnknown Status = iota
	StatusConnected
	StatusNotConnected
)

func (s Status) String() string {
	switch s {
	case StatusConnected:
		return "CONNECTED"
	case StatusNotConnected:
		return "NOT_CONNECTED"
	default:
		return "UNKNOWN"
	}
}

// Session is the identity client's view of the current account credentials.
// Implementations are replaced on refresh and never mutated by the provider.
type Session interface {
	AccessToken() string
	Expiry() time.Time
	IsExpired() bool
}

// AuthListener receives exactly one terminal event per identity operation.
type AuthListener interface {
	OnAuthComplete(status Status, session Session, userState any)
	OnAuthError(err error, userState any)
}

// UIOwner owns the thread the identity client's interactive login must run on.
type UIOwner interface {
	RunOnUIThread(fn func())
}

// IdentityClient is the external identity SDK contract.
type IdentityClient interface {
	Login(owner UIOwner, listener AuthListener)
	LoginSilent(listener AuthListener)
	Logout(listener AuthListener)
	CurrentSession() Session
}

// Callback is the result sink for asynchronous provider operations.
type Callback interface {
	OnSuccess()
	OnFailure(err error)
}

// Authenticator signs outbound requests.
type Authenticator interface {
	AuthenticateRequest(ctx context.Context, req Request) error
}

type SecretProvider interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// CallbackFuncs adapts plain functions to Callback. Nil funcs are skipped.
type CallbackFuncs struct {
	Success func()
	Failure func(err error)
}

func (c CallbackFuncs) OnSuccess() {
	if c.Success != nil {
		c.Success()
	}
}

func (c CallbackFuncs) OnFailure(err error) {
	if c.Failure != nil {
		c.Failure(err)
	}
}

// ListenerFuncs adapts plain functions to AuthListener.
type ListenerFuncs struct {
	Complete func(status Status, session Session, userState any)
	Error    func(err error, userState any)
}

func (l ListenerFuncs) OnAuthComplete(status Status, session Session, userState any) {
	if l.Complete != nil {
		l.Complete(status, session, userState)
	}
}

func (l ListenerFuncs) OnAuthError(err error, userState any) {
	if l.Error != nil {
		l.Error(err, userState)
	}
}

var (
	_ Callback     = CallbackFuncs{}
	_ AuthListener = ListenerFuncs{}
)
