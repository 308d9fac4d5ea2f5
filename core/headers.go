package core

import (
	"net/http"
	"strings"
)

const (
	AuthorizationHeader = "Authorization"
	bearerPrefix        = "bearer "
)

// Request is the outbound request view the provider signs. Header lookup is
// an exact, case-sensitive match on the name.
type Request interface {
	URL() string
	Header(name string) (string, bool)
	AddHeader(name, value string)
	Headers() []HeaderOption
}

type HeaderOption struct {
	Name  string
	Value string
}

// HeaderMap is an ordered header list; AddHeader appends.
type HeaderMap struct {
	url     string
	headers []HeaderOption
}

func NewRequest(url string, headers ...HeaderOption) *HeaderMap {
	return &HeaderMap{
		url:     strings.TrimSpace(url),
		headers: append([]HeaderOption(nil), headers...),
	}
}

func (m *HeaderMap) URL() string {
	if m == nil {
		return ""
	}
	return m.url
}

func (m *HeaderMap) Header(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	for _, header := range m.headers {
		if header.Name == name {
			return header.Value, true
		}
	}
	return "", false
}

func (m *HeaderMap) AddHeader(name, value string) {
	if m == nil {
		return
	}
	m.headers = append(m.headers, HeaderOption{Name: name, Value: value})
}

func (m *HeaderMap) Headers() []HeaderOption {
	if m == nil {
		return nil
	}
	return append([]HeaderOption(nil), m.headers...)
}

// HTTPRequest adapts *http.Request. Keys are used as given, without
// canonicalization.
type HTTPRequest struct {
	req *http.Request
}

func NewHTTPRequest(req *http.Request) *HTTPRequest {
	return &HTTPRequest{req: req}
}

func (r *HTTPRequest) URL() string {
	if r == nil || r.req == nil || r.req.URL == nil {
		return ""
	}
	return r.req.URL.String()
}

func (r *HTTPRequest) Header(name string) (string, bool) {
	if r == nil || r.req == nil || r.req.Header == nil {
		return "", false
	}
	values, ok := r.req.Header[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func (r *HTTPRequest) AddHeader(name, value string) {
	if r == nil || r.req == nil {
		return
	}
	if r.req.Header == nil {
		r.req.Header = http.Header{}
	}
	r.req.Header[name] = append(r.req.Header[name], value)
}

func (r *HTTPRequest) Headers() []HeaderOption {
	if r == nil || r.req == nil {
		return nil
	}
	out := make([]HeaderOption, 0, len(r.req.Header))
	for name, values := range r.req.Header {
		for _, value := range values {
			out = append(out, HeaderOption{Name: name, Value: value})
		}
	}
	return out
}

func (r *HTTPRequest) Unwrap() *http.Request {
	if r == nil {
		return nil
	}
	return r.req
}

func bearerValue(accessToken string) string {
	return bearerPrefix + accessToken
}
