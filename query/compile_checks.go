package query

import (
	"github.com/goliatone/go-authprovider/core"
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Querier[SessionStatusMessage, core.SessionStatus] = (*SessionStatusQuery)(nil)
	_ gocmd.Querier[ScopesMessage, []string]                  = (*ScopesQuery)(nil)
	_ StatusReader                                            = (*core.Provider)(nil)
	_ ScopesReader                                            = (*core.Provider)(nil)
)
