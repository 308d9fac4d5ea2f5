package query

const (
	TypeSessionStatus = "authprovider.query.session.status"
	TypeScopes        = "authprovider.query.scopes"
)

type SessionStatusMessage struct{}

func (SessionStatusMessage) Type() string { return TypeSessionStatus }

func (SessionStatusMessage) Validate() error { return nil }

type ScopesMessage struct{}

func (ScopesMessage) Type() string { return TypeScopes }

func (ScopesMessage) Validate() error { return nil }
