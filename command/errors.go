package command

import (
	"net/http"

	"github.com/goliatone/go-authprovider/core"
	goerrors "github.com/goliatone/go-errors"
)

const ErrorDependencyMissing = "COMMAND_DEPENDENCY_MISSING"

func commandDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ErrorDependencyMissing)
}

func commandValidationError(field string, message string) error {
	return goerrors.NewValidation("command: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ErrorInvalidArgument).
		WithSeverity(goerrors.SeverityError)
}
