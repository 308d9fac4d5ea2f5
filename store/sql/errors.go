package sqlstore

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorStoreNotConfigured = "SESSION_STORE_NOT_CONFIGURED"
	ErrorStoreQueryFailed   = "SESSION_STORE_QUERY_FAILED"
	ErrorPayloadInvalid     = "SESSION_STORE_PAYLOAD_INVALID"
	ErrorUnsupportedDriver  = "SESSION_STORE_UNSUPPORTED_DRIVER"
)

func storeError(textCode string, message string, cause error, metadata map[string]any) *goerrors.Error {
	category := goerrors.CategoryInternal
	code := http.StatusInternalServerError
	switch textCode {
	case ErrorStoreNotConfigured, ErrorUnsupportedDriver:
		category = goerrors.CategoryBadInput
		code = http.StatusBadRequest
	}
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	err.Source = cause
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func isUniqueViolation(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}
