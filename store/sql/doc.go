// Package sqlstore persists oauth2client sessions with bun, on sqlite3 or
// postgres, optionally sealing payloads with a core.SecretProvider.
package sqlstore
