package providers

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorUnknownProvider  = "PROVIDER_UNKNOWN"
	ErrorDiscoveryFailed  = "PROVIDER_DISCOVERY_FAILED"
	ErrorInvalidDiscovery = "PROVIDER_DISCOVERY_INVALID"
)

func providerError(textCode string, message string, cause error, metadata map[string]any) *goerrors.Error {
	category := goerrors.CategoryExternal
	code := http.StatusBadGateway
	if textCode == ErrorUnknownProvider {
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
