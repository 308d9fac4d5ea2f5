package query

import (
	"context"

	"github.com/goliatone/go-authprovider/core"
)

type StatusReader interface {
	Status() core.SessionStatus
}

type ScopesReader interface {
	Scopes() []string
}

// SessionStatusQuery reports the current credential state. It never
// triggers a refresh.
type SessionStatusQuery struct {
	reader StatusReader
}

func NewSessionStatusQuery(reader StatusReader) *SessionStatusQuery {
	return &SessionStatusQuery{reader: reader}
}

func (q *SessionStatusQuery) Query(_ context.Context, _ SessionStatusMessage) (core.SessionStatus, error) {
	if q == nil || q.reader == nil {
		return core.SessionStatus{}, queryDependencyError("query: status reader is required")
	}
	return q.reader.Status(), nil
}

type ScopesQuery struct {
	reader ScopesReader
}

func NewScopesQuery(reader ScopesReader) *ScopesQuery {
	return &ScopesQuery{reader: reader}
}

func (q *ScopesQuery) Query(_ context.Context, _ ScopesMessage) ([]string, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: scopes reader is required")
	}
	return q.reader.Scopes(), nil
}
