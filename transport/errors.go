package transport

import (
	"github.com/goliatone/go-authprovider/core"
	goerrors "github.com/goliatone/go-errors"
)

func transportError(
	message string,
	category goerrors.Category,
	code int,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// authenticationError copies the provider's envelope and adds request
// metadata. The provider error stays reachable as the source.
func authenticationError(source error, metadata map[string]any) error {
	mapped := core.MapError(source)
	if mapped == nil {
		return nil
	}
	err := goerrors.New(mapped.Message, mapped.Category).
		WithCode(mapped.Code).
		WithTextCode(mapped.TextCode)
	err.Source = source
	merged := make(map[string]any, len(mapped.Metadata)+len(metadata))
	for key, value := range mapped.Metadata {
		merged[key] = value
	}
	for key, value := range metadata {
		merged[key] = value
	}
	if len(merged) > 0 {
		err.WithMetadata(merged)
	}
	return err
}

func transportTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return core.ErrorAuthenticationFailure
	default:
		return core.ErrorInvalidArgument
	}
}
