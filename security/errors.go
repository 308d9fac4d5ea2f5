package security

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorKeyInvalid       = "SECRET_KEY_INVALID"
	ErrorEnvelopeInvalid  = "SECRET_ENVELOPE_INVALID"
	ErrorKeyMismatch      = "SECRET_KEY_MISMATCH"
	ErrorDecryptionFailed = "SECRET_DECRYPTION_FAILED"
	ErrorEncryptionFailed = "SECRET_ENCRYPTION_FAILED"
)

func securityError(textCode string, message string, cause error) *goerrors.Error {
	category := goerrors.CategoryInternal
	code := http.StatusInternalServerError
	if textCode == ErrorKeyInvalid {
		category = goerrors.CategoryBadInput
		code = http.StatusBadRequest
	}
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	err.Source = cause
	return err
}
