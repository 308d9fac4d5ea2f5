package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorAuthenticationFailure = "AUTHENTICATION_FAILURE"
	ErrorInvalidArgument       = "INVALID_ARGUMENT"
)

const (
	msgNoActiveAccount   = "Unable to authenticate request, No active account found"
	msgLoginUnsuccessful = "Unable to login successfully"
	msgLoginFailure      = "Login failure"
	msgLogoutFailure     = "Logout failure"
	msgLoginSilent       = "Unable to login silently"
)

// NewAuthenticationFailure builds the single typed failure surfaced by the
// provider. The cause is kept as Source so errors.Is/As reach it.
func NewAuthenticationFailure(message string, cause error) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(ErrorAuthenticationFailure)
	err.Source = cause
	return err
}

// NewInvalidArgument reports a contract violation by the caller.
func NewInvalidArgument(argument string) *goerrors.Error {
	argument = strings.TrimSpace(argument)
	return goerrors.New("invalid argument: "+argument, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorInvalidArgument).
		WithMetadata(map[string]any{"argument": argument})
}

// MapError normalizes any error into the provider envelope. Rich errors keep
// their category; anything else becomes an authentication failure.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureErrorEnvelope(richErr)
	}
	return NewAuthenticationFailure(err.Error(), err)
}

func ErrorTextCode(err error) string {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return ""
	}
	return richErr.TextCode
}

func IsAuthenticationFailure(err error) bool {
	return ErrorTextCode(err) == ErrorAuthenticationFailure
}

func IsInvalidArgument(err error) bool {
	return ErrorTextCode(err) == ErrorInvalidArgument
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTextCode(err.Category)
	}
	if err.Code == 0 {
		err.Code = httpStatus(err.Category)
	}
	return err
}

func defaultTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorInvalidArgument
	default:
		return ErrorAuthenticationFailure
	}
}

func httpStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
