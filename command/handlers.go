package command

import (
	"context"

	"github.com/goliatone/go-authprovider/core"
	gocmd "github.com/goliatone/go-command"
)

// SessionController is the callback-based login/logout surface of
// core.Provider.
type SessionController interface {
	Login(owner core.UIOwner, cb core.Callback) error
	Logout(cb core.Callback) error
	Status() core.SessionStatus
}

// LoginCommand blocks until the login callback fires or ctx ends, then
// stores the resulting session status.
type LoginCommand struct {
	controller SessionController
}

func NewLoginCommand(controller SessionController) *LoginCommand {
	return &LoginCommand{controller: controller}
}

func (c *LoginCommand) Execute(ctx context.Context, msg LoginMessage) error {
	if c == nil || c.controller == nil {
		return commandDependencyError("command: session controller is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	status, err := core.RunBlocking(ctx, func(handle core.ResultHandle[core.SessionStatus]) {
		if err := c.controller.Login(msg.Owner, statusCallback(c.controller, handle)); err != nil {
			handle.Failure(err)
		}
	})
	if err != nil {
		return err
	}
	storeResult(ctx, status)
	return nil
}

type LogoutCommand struct {
	controller SessionController
}

func NewLogoutCommand(controller SessionController) *LogoutCommand {
	return &LogoutCommand{controller: controller}
}

func (c *LogoutCommand) Execute(ctx context.Context, _ LogoutMessage) error {
	if c == nil || c.controller == nil {
		return commandDependencyError("command: session controller is required")
	}
	status, err := core.RunBlocking(ctx, func(handle core.ResultHandle[core.SessionStatus]) {
		if err := c.controller.Logout(statusCallback(c.controller, handle)); err != nil {
			handle.Failure(err)
		}
	})
	if err != nil {
		return err
	}
	storeResult(ctx, status)
	return nil
}

type AuthenticateRequestCommand struct {
	authenticator core.Authenticator
}

func NewAuthenticateRequestCommand(authenticator core.Authenticator) *AuthenticateRequestCommand {
	return &AuthenticateRequestCommand{authenticator: authenticator}
}

func (c *AuthenticateRequestCommand) Execute(ctx context.Context, msg AuthenticateRequestMessage) error {
	if c == nil || c.authenticator == nil {
		return commandDependencyError("command: authenticator is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	return c.authenticator.AuthenticateRequest(ctx, msg.Request)
}

func statusCallback(controller SessionController, handle core.ResultHandle[core.SessionStatus]) core.Callback {
	return core.CallbackFuncs{
		Success: func() {
			handle.Success(controller.Status())
		},
		Failure: func(err error) {
			handle.Failure(err)
		},
	}
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
