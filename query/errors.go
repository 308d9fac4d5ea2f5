package query

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const ErrorDependencyMissing = "QUERY_DEPENDENCY_MISSING"

func queryDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ErrorDependencyMissing)
}
