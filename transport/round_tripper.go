package transport

import (
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-authprovider/core"
	goerrors "github.com/goliatone/go-errors"
)

const defaultClientTimeout = 30 * time.Second

// RoundTripper signs every outbound request through an Authenticator before
// handing it to Base. A request that cannot be signed never reaches Base.
type RoundTripper struct {
	Authenticator  core.Authenticator
	Base           http.RoundTripper
	DefaultHeaders map[string]string
}

func New(authenticator core.Authenticator, base http.RoundTripper) *RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &RoundTripper{
		Authenticator:  authenticator,
		Base:           base,
		DefaultHeaders: map[string]string{},
	}
}

// NewClient returns an http.Client whose transport signs requests.
func NewClient(authenticator core.Authenticator, base http.RoundTripper) *http.Client {
	return &http.Client{
		Transport: New(authenticator, base),
		Timeout:   defaultClientTimeout,
	}
}

func (t *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, transportError(
			"transport: request is required",
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			nil,
		)
	}
	if t == nil || t.Authenticator == nil {
		closeBody(req)
		return nil, transportError(
			"transport: round tripper requires an authenticator",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			map[string]any{"url": requestURL(req)},
		)
	}

	// RoundTrip must not modify the caller's request.
	clone := req.Clone(req.Context())
	if clone.Header == nil {
		clone.Header = http.Header{}
	}
	for key, value := range t.DefaultHeaders {
		key = strings.TrimSpace(key)
		if key == "" || clone.Header.Get(key) != "" {
			continue
		}
		clone.Header.Set(key, strings.TrimSpace(value))
	}

	if err := t.Authenticator.AuthenticateRequest(req.Context(), core.NewHTTPRequest(clone)); err != nil {
		closeBody(req)
		return nil, authenticationError(err, map[string]any{
			"method": clone.Method,
			"url":    requestURL(clone),
		})
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

func closeBody(req *http.Request) {
	if req != nil && req.Body != nil {
		_ = req.Body.Close()
	}
}

func requestURL(req *http.Request) string {
	if req == nil || req.URL == nil {
		return ""
	}
	return req.URL.Redacted()
}

var _ http.RoundTripper = (*RoundTripper)(nil)
