package core

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const silentRefreshKey = "login_silent"

// loginSilent asks the identity client for a non-interactive refresh. Only a
// CONNECTED completion counts as success.
func (p *Provider) loginSilent(cb Callback) {
	startedAt := time.Now()
	var once sync.Once
	finish := func(err error) {
		once.Do(func() {
			p.observeOperation(context.Background(), startedAt, "login_silent", err)
			if err != nil {
				p.notifyFailure("login_silent", cb, err)
				return
			}
			p.logDebug("silent login completed", nil)
			p.notifySuccess("login_silent", cb)
		})
	}
	listener := ListenerFuncs{
		Complete: func(status Status, _ Session, _ any) {
			if status == StatusConnected {
				finish(nil)
				return
			}
			err := NewAuthenticationFailure(msgLoginSilent, nil)
			p.logError(msgLoginSilent, err, map[string]any{"status": status.String()})
			finish(err)
		},
		Error: func(cause error, _ any) {
			err := NewAuthenticationFailure(msgLoginSilent, cause)
			p.logError(msgLoginSilent, err, nil)
			finish(err)
		},
	}

	p.logDebug("silent login started", nil)
	defer func() {
		if recovered := recover(); recovered != nil {
			err := NewAuthenticationFailure(msgLoginSilent, fmt.Errorf("identity client panicked: %v", recovered))
			p.logError(msgLoginSilent, err, nil)
			finish(err)
		}
	}()
	p.client.LoginSilent(listener)
}

// loginSilentBlocking refreshes the session and waits for the outcome.
// Concurrent callers share one refresh; a caller arriving after a refresh
// has already produced a fresh session does not start another.
func (p *Provider) loginSilentBlocking(ctx context.Context) error {
	_, err := RunBlocking(ctx, func(handle ResultHandle[struct{}]) {
		flight := p.refreshGroup.DoChan(silentRefreshKey, func() (any, error) {
			if !p.IsExpired() && p.HasValidSession() {
				return struct{}{}, nil
			}
			return RunBlocking(context.Background(), func(inner ResultHandle[struct{}]) {
				p.loginSilent(handleCallback(inner))
			})
		})
		go func() {
			select {
			case result := <-flight:
				if result.Err != nil {
					handle.Failure(result.Err)
					return
				}
				handle.Success(struct{}{})
			case <-handle.Done():
			}
		}()
	})
	return err
}

func handleCallback[T any](handle ResultHandle[T]) Callback {
	return CallbackFuncs{
		Success: func() {
			var zero T
			handle.Success(zero)
		},
		Failure: func(err error) {
			handle.Failure(err)
		},
	}
}
