package command

import (
	"github.com/goliatone/go-authprovider/core"
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Commander[LoginMessage]               = (*LoginCommand)(nil)
	_ gocmd.Commander[LogoutMessage]              = (*LogoutCommand)(nil)
	_ gocmd.Commander[AuthenticateRequestMessage] = (*AuthenticateRequestCommand)(nil)
	_ SessionController                           = (*core.Provider)(nil)
)
