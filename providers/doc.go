// Package providers builds core.Endpoint values for well-known authorization
// servers and discovers them from an OIDC issuer.
package providers
