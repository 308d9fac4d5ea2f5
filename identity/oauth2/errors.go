package oauth2client

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorConfigInvalid        = "OAUTH2_CONFIG_INVALID"
	ErrorAuthorizationDenied  = "OAUTH2_AUTHORIZATION_DENIED"
	ErrorStateMismatch        = "OAUTH2_STATE_MISMATCH"
	ErrorTokenExchangeFailed  = "OAUTH2_TOKEN_EXCHANGE_FAILED"
	ErrorRefreshFailed        = "OAUTH2_REFRESH_FAILED"
	ErrorCallbackServerFailed = "OAUTH2_CALLBACK_SERVER_FAILED"
	ErrorLoginCancelled       = "OAUTH2_LOGIN_CANCELLED"
	ErrorStoreFailed          = "OAUTH2_STORE_FAILED"
	ErrorSessionSuperseded    = "OAUTH2_SESSION_SUPERSEDED"
)

func clientError(textCode string, message string, cause error, metadata map[string]any) *goerrors.Error {
	category, code := classify(textCode)
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	err.Source = cause
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func classify(textCode string) (goerrors.Category, int) {
	switch textCode {
	case ErrorConfigInvalid:
		return goerrors.CategoryBadInput, http.StatusBadRequest
	case ErrorAuthorizationDenied, ErrorStateMismatch:
		return goerrors.CategoryAuth, http.StatusUnauthorized
	case ErrorTokenExchangeFailed, ErrorRefreshFailed:
		return goerrors.CategoryExternal, http.StatusBadGateway
	case ErrorLoginCancelled:
		return goerrors.CategoryOperation, http.StatusRequestTimeout
	case ErrorSessionSuperseded:
		return goerrors.CategoryConflict, http.StatusConflict
	default:
		return goerrors.CategoryInternal, http.StatusInternalServerError
	}
}

func isSuperseded(err error) bool {
	var richErr *goerrors.Error
	return goerrors.As(err, &richErr) && richErr.TextCode == ErrorSessionSuperseded
}
