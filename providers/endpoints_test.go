package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-authprovider/core"
	goerrors "github.com/goliatone/go-errors"
)

func TestMicrosoftV2CommonMatchesCoreDefault(t *testing.T) {
	endpoint := MicrosoftV2Common()
	if endpoint != core.MicrosoftV2CommonEndpoint() {
		t.Fatalf("unexpected endpoint %+v", endpoint)
	}
	if endpoint.DesktopURL != "urn:ietf:wg:oauth:2.0:oob" {
		t.Fatalf("unexpected desktop url %q", endpoint.DesktopURL)
	}
}

func TestMicrosoftTenant(t *testing.T) {
	endpoint := MicrosoftTenant("contoso.onmicrosoft.com")
	if endpoint.AuthorizeURL != "https://login.microsoftonline.com/contoso.onmicrosoft.com/oauth2/v2.0/authorize" {
		t.Fatalf("unexpected authorize url %q", endpoint.AuthorizeURL)
	}
	if endpoint.LogoutURL != "https://login.microsoftonline.com/contoso.onmicrosoft.com/oauth2/v2.0/logout" {
		t.Fatalf("unexpected logout url %q", endpoint.LogoutURL)
	}
	if MicrosoftTenant(" ").TokenURL != core.MicrosoftV2CommonEndpoint().TokenURL {
		t.Fatalf("expected empty tenant to fall back to common")
	}
}

func TestByName(t *testing.T) {
	google, err := ByName("Google", "")
	if err != nil {
		t.Fatalf("resolve google: %v", err)
	}
	if google.RevocationURL != GoogleRevocationURL {
		t.Fatalf("expected google revocation url, got %q", google.RevocationURL)
	}
	github, err := ByName("github", "")
	if err != nil {
		t.Fatalf("resolve github: %v", err)
	}
	if github.RevocationURL != "" || github.TokenURL == "" {
		t.Fatalf("unexpected github endpoint %+v", github)
	}

	_, err = ByName("myspace", "")
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.TextCode != ErrorUnknownProvider {
		t.Fatalf("expected unknown provider error, got %v", err)
	}
}

func newDiscoveryServer(t *testing.T, mutate func(doc map[string]any, base string)) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		base := server.URL
		doc := map[string]any{
			"issuer":                                base,
			"authorization_endpoint":                base + "/authorize",
			"token_endpoint":                        base + "/token",
			"jwks_uri":                              base + "/keys",
			"revocation_endpoint":                   base + "/revoke",
			"end_session_endpoint":                  base + "/logout",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		}
		if mutate != nil {
			mutate(doc, base)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDiscover(t *testing.T) {
	server := newDiscoveryServer(t, nil)

	endpoint, err := Discover(context.Background(), server.URL, WithDiscoveryHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if endpoint.AuthorizeURL != server.URL+"/authorize" || endpoint.TokenURL != server.URL+"/token" {
		t.Fatalf("unexpected endpoints %+v", endpoint)
	}
	if endpoint.RevocationURL != server.URL+"/revoke" || endpoint.LogoutURL != server.URL+"/logout" {
		t.Fatalf("expected revocation and end session claims, got %+v", endpoint)
	}
}

func TestDiscoverRejectsForeignEndpoint(t *testing.T) {
	server := newDiscoveryServer(t, func(doc map[string]any, _ string) {
		doc["token_endpoint"] = "https://attacker.example/token"
	})

	_, err := Discover(context.Background(), server.URL)
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.TextCode != ErrorInvalidDiscovery {
		t.Fatalf("expected invalid discovery error, got %v", err)
	}
}

func TestDiscoverIssuerMismatch(t *testing.T) {
	server := newDiscoveryServer(t, func(doc map[string]any, _ string) {
		doc["issuer"] = "https://other.example"
	})

	_, err := Discover(context.Background(), server.URL)
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.TextCode != ErrorDiscoveryFailed {
		t.Fatalf("expected discovery failure, got %v", err)
	}
}

func TestDiscoverRequiresIssuer(t *testing.T) {
	_, err := Discover(context.Background(), " ")
	if !core.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestScopes(t *testing.T) {
	scopes := DefaultScopes(ProviderAzureAD)
	if len(scopes) != 3 || scopes[2] != ScopeOfflineAccess {
		t.Fatalf("unexpected azuread scopes %v", scopes)
	}
	merged := WithIdentityScopes([]string{"Mail.Read", "openid"}, true)
	want := []string{"Mail.Read", "openid", "profile", "email"}
	if len(merged) != len(want) {
		t.Fatalf("unexpected merged scopes %v", merged)
	}
	for i := range want {
		if merged[i] != want[i] {
			t.Fatalf("unexpected merged scopes %v", merged)
		}
	}
	if len(WithIdentityScopes([]string{" a ", ""}, false)) != 1 {
		t.Fatalf("expected normalization without identity scopes")
	}
}
