// Package keyringstore keeps oauth2client sessions in the OS keyring.
package keyringstore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-authprovider/core"
	oauth2client "github.com/goliatone/go-authprovider/identity/oauth2"
	"github.com/goliatone/go-authprovider/security"
	goerrors "github.com/goliatone/go-errors"
	"github.com/zalando/go-keyring"
)

const (
	DefaultService = "go-authprovider"

	ErrorKeyringFailed  = "KEYRING_STORE_FAILED"
	ErrorPayloadInvalid = "KEYRING_PAYLOAD_INVALID"
)

// Store saves one JSON payload per key under a keyring service name.
type Store struct {
	service string
	secrets core.SecretProvider
}

type Option func(*Store)

func WithService(service string) Option {
	return func(s *Store) {
		if trimmed := strings.TrimSpace(service); trimmed != "" {
			s.service = trimmed
		}
	}
}

// WithSecretProvider seals the payload before it reaches the keyring.
func WithSecretProvider(secrets core.SecretProvider) Option {
	return func(s *Store) {
		s.secrets = secrets
	}
}

func New(opts ...Option) *Store {
	store := &Store{service: DefaultService}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

func (s *Store) Service() string {
	return s.service
}

func (s *Store) Load(ctx context.Context, key string) (oauth2client.StoredSession, error) {
	key = strings.TrimSpace(key)
	value, err := keyring.Get(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return oauth2client.StoredSession{}, oauth2client.ErrSessionNotFound
	}
	if err != nil {
		return oauth2client.StoredSession{}, keyringError(ErrorKeyringFailed, "keyringstore: read session", err, s.service, key)
	}
	payload := []byte(value)
	if security.IsEnvelope(payload) {
		if s.secrets == nil {
			return oauth2client.StoredSession{}, keyringError(ErrorPayloadInvalid, "keyringstore: session is encrypted but no secret provider is configured", nil, s.service, key)
		}
		payload, err = s.secrets.Decrypt(ctx, payload)
		if err != nil {
			return oauth2client.StoredSession{}, keyringError(ErrorPayloadInvalid, "keyringstore: decrypt session", err, s.service, key)
		}
	}
	var session oauth2client.StoredSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return oauth2client.StoredSession{}, keyringError(ErrorPayloadInvalid, "keyringstore: decode session", err, s.service, key)
	}
	return session, nil
}

func (s *Store) Save(ctx context.Context, key string, session oauth2client.StoredSession) error {
	key = strings.TrimSpace(key)
	payload, err := json.Marshal(session)
	if err != nil {
		return keyringError(ErrorPayloadInvalid, "keyringstore: encode session", err, s.service, key)
	}
	if s.secrets != nil {
		payload, err = s.secrets.Encrypt(ctx, payload)
		if err != nil {
			return keyringError(ErrorPayloadInvalid, "keyringstore: encrypt session", err, s.service, key)
		}
	}
	if err := keyring.Set(s.service, key, string(payload)); err != nil {
		return keyringError(ErrorKeyringFailed, "keyringstore: write session", err, s.service, key)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	key = strings.TrimSpace(key)
	err := keyring.Delete(s.service, key)
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return keyringError(ErrorKeyringFailed, "keyringstore: delete session", err, s.service, key)
}

func keyringError(textCode string, message string, cause error, service string, key string) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(textCode).
		WithMetadata(map[string]any{"service": service, "key": key})
	err.Source = cause
	return err
}

var _ oauth2client.SessionStore = (*Store)(nil)
