package command

import "github.com/goliatone/go-authprovider/core"

const (
	TypeLogin               = "authprovider.command.login"
	TypeLogout              = "authprovider.command.logout"
	TypeAuthenticateRequest = "authprovider.command.request.authenticate"
)

type LoginMessage struct {
	Owner core.UIOwner
}

func (LoginMessage) Type() string { return TypeLogin }

func (m LoginMessage) Validate() error {
	if m.Owner == nil {
		return commandValidationError("owner", "ui owner is required")
	}
	return nil
}

type LogoutMessage struct{}

func (LogoutMessage) Type() string { return TypeLogout }

func (LogoutMessage) Validate() error { return nil }

type AuthenticateRequestMessage struct {
	Request core.Request
}

func (AuthenticateRequestMessage) Type() string { return TypeAuthenticateRequest }

func (m AuthenticateRequestMessage) Validate() error {
	if m.Request == nil {
		return commandValidationError("request", "request is required")
	}
	return nil
}
