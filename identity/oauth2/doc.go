// Package oauth2client is an identity client for the credential coordinator
// built on golang.org/x/oauth2. It runs the loopback PKCE login, refreshes
// with the stored refresh token and persists sessions through a SessionStore.
package oauth2client
