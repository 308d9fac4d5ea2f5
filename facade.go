package authprovider

import (
	"net/http"

	"github.com/goliatone/go-authprovider/adapters/gocommand"
	authcommand "github.com/goliatone/go-authprovider/command"
	"github.com/goliatone/go-authprovider/core"
	authquery "github.com/goliatone/go-authprovider/query"
	goerrors "github.com/goliatone/go-errors"
)

const ErrorRegisterFailed = "FACADE_REGISTER_FAILED"

// CommandQueryProvider is the provider surface the facade needs.
// *core.Provider satisfies it.
type CommandQueryProvider interface {
	authcommand.SessionController
	core.Authenticator
	authquery.ScopesReader
}

type Commands struct {
	Login               *authcommand.LoginCommand
	Logout              *authcommand.LogoutCommand
	AuthenticateRequest *authcommand.AuthenticateRequestCommand
}

type Queries struct {
	SessionStatus *authquery.SessionStatusQuery
	Scopes        *authquery.ScopesQuery
}

type Facade struct {
	provider CommandQueryProvider
	commands Commands
	queries  Queries
}

func NewFacade(provider CommandQueryProvider) (*Facade, error) {
	if provider == nil {
		return nil, core.NewInvalidArgument("provider")
	}
	return &Facade{
		provider: provider,
		commands: Commands{
			Login:               authcommand.NewLoginCommand(provider),
			Logout:              authcommand.NewLogoutCommand(provider),
			AuthenticateRequest: authcommand.NewAuthenticateRequestCommand(provider),
		},
		queries: Queries{
			SessionStatus: authquery.NewSessionStatusQuery(provider),
			Scopes:        authquery.NewScopesQuery(provider),
		},
	}, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Provider() CommandQueryProvider {
	if f == nil {
		return nil
	}
	return f.provider
}

// Register subscribes every command and query on the dispatcher and records
// them in the adapter's registry. It stops at the first failure; call
// adapter.Close to drop what was already subscribed.
func (f *Facade) Register(adapter *gocommand.RegistryAdapter) error {
	if f == nil {
		return core.NewInvalidArgument("facade")
	}
	if adapter == nil {
		return core.NewInvalidArgument("adapter")
	}
	steps := []struct {
		name string
		run  func() error
	}{
		{authcommand.TypeLogin, func() error {
			_, err := gocommand.RegisterAndSubscribe(adapter, f.commands.Login)
			return err
		}},
		{authcommand.TypeLogout, func() error {
			_, err := gocommand.RegisterAndSubscribe(adapter, f.commands.Logout)
			return err
		}},
		{authcommand.TypeAuthenticateRequest, func() error {
			_, err := gocommand.RegisterAndSubscribe(adapter, f.commands.AuthenticateRequest)
			return err
		}},
		{authquery.TypeSessionStatus, func() error {
			_, err := gocommand.RegisterAndSubscribeQuery(adapter, f.queries.SessionStatus)
			return err
		}},
		{authquery.TypeScopes, func() error {
			_, err := gocommand.RegisterAndSubscribeQuery(adapter, f.queries.Scopes)
			return err
		}},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			wrapped := goerrors.New("authprovider: register "+step.name, goerrors.CategoryInternal).
				WithCode(http.StatusInternalServerError).
				WithTextCode(ErrorRegisterFailed).
				WithMetadata(map[string]any{"message_type": step.name})
			wrapped.Source = err
			return wrapped
		}
	}
	return nil
}

var _ CommandQueryProvider = (*core.Provider)(nil)
