// Package core contains the credential lifecycle coordinator: session state,
// the blocking bridge over callback-based identity flows, request signing and
// the typed error envelope. Identity SDKs, stores and transports depend on
// this package; core depends on none of them.
package core
