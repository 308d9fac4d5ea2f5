package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-authprovider/core"
	oauth2client "github.com/goliatone/go-authprovider/identity/oauth2"
	"github.com/goliatone/go-authprovider/security"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SessionStore persists oauth2client sessions in the auth_sessions table,
// one row per store key.
type SessionStore struct {
	db      *bun.DB
	repo    repository.Repository[*sessionRecord]
	secrets core.SecretProvider
	now     func() time.Time
}

type Option func(*SessionStore)

// WithSecretProvider seals payloads before they reach the database.
func WithSecretProvider(secrets core.SecretProvider) Option {
	return func(s *SessionStore) {
		s.secrets = secrets
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *SessionStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewSessionStore(db *bun.DB, opts ...Option) (*SessionStore, error) {
	if db == nil {
		return nil, storeError(ErrorStoreNotConfigured, "sqlstore: bun db is required", nil, nil)
	}
	repo := repository.NewRepository[*sessionRecord](db, sessionHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, storeError(ErrorStoreNotConfigured, "sqlstore: invalid session repository wiring", err, nil)
		}
	}
	store := &SessionStore{
		db:   db,
		repo: repo,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(store)
	}
	return store, nil
}

func (s *SessionStore) Load(ctx context.Context, key string) (oauth2client.StoredSession, error) {
	if s == nil || s.repo == nil {
		return oauth2client.StoredSession{}, storeError(ErrorStoreNotConfigured, "sqlstore: session store is not configured", nil, nil)
	}
	key = strings.TrimSpace(key)
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("session_key", "=", key),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return oauth2client.StoredSession{}, storeError(ErrorStoreQueryFailed, "sqlstore: load session", err, map[string]any{"key": key})
	}
	if len(records) == 0 {
		return oauth2client.StoredSession{}, oauth2client.ErrSessionNotFound
	}
	return s.decode(ctx, records[0])
}

func (s *SessionStore) Save(ctx context.Context, key string, session oauth2client.StoredSession) error {
	if s == nil || s.db == nil || s.repo == nil {
		return storeError(ErrorStoreNotConfigured, "sqlstore: session store is not configured", nil, nil)
	}
	key = strings.TrimSpace(key)
	payload, encrypted, err := s.encode(ctx, session)
	if err != nil {
		return err
	}
	now := s.now()

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, findErr := findSessionTx(ctx, tx, key)
		if findErr != nil {
			return findErr
		}
		if record == nil {
			record = &sessionRecord{
				ID:         uuid.NewString(),
				SessionKey: key,
				CreatedAt:  now,
			}
			applyPayload(record, payload, encrypted, session, now)
			if _, insertErr := s.repo.CreateTx(ctx, tx, record); insertErr != nil {
				if !isUniqueViolation(insertErr) {
					return insertErr
				}
				// Lost an insert race for the same key; update the winner.
				record, findErr = findSessionTx(ctx, tx, key)
				if findErr != nil {
					return findErr
				}
				if record == nil {
					return insertErr
				}
			} else {
				return nil
			}
		}
		applyPayload(record, payload, encrypted, session, now)
		_, updateErr := tx.NewUpdate().
			Model(record).
			Column("payload", "encrypted", "expires_at", "updated_at").
			Where("id = ?", record.ID).
			Exec(ctx)
		return updateErr
	})
	if err != nil {
		return storeError(ErrorStoreQueryFailed, "sqlstore: save session", err, map[string]any{"key": key})
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	if s == nil || s.db == nil {
		return storeError(ErrorStoreNotConfigured, "sqlstore: session store is not configured", nil, nil)
	}
	key = strings.TrimSpace(key)
	_, err := s.db.NewDelete().
		Model((*sessionRecord)(nil)).
		Where("session_key = ?", key).
		Exec(ctx)
	if err != nil {
		return storeError(ErrorStoreQueryFailed, "sqlstore: delete session", err, map[string]any{"key": key})
	}
	return nil
}

func (s *SessionStore) encode(ctx context.Context, session oauth2client.StoredSession) ([]byte, bool, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, false, storeError(ErrorPayloadInvalid, "sqlstore: encode session", err, nil)
	}
	if s.secrets == nil {
		return payload, false, nil
	}
	sealed, err := s.secrets.Encrypt(ctx, payload)
	if err != nil {
		return nil, false, storeError(ErrorPayloadInvalid, "sqlstore: encrypt session", err, nil)
	}
	return sealed, true, nil
}

func (s *SessionStore) decode(ctx context.Context, record *sessionRecord) (oauth2client.StoredSession, error) {
	payload := record.Payload
	if record.Encrypted || security.IsEnvelope(payload) {
		if s.secrets == nil {
			return oauth2client.StoredSession{}, storeError(ErrorPayloadInvalid,
				"sqlstore: session is encrypted but no secret provider is configured", nil,
				map[string]any{"key": record.SessionKey},
			)
		}
		opened, err := s.secrets.Decrypt(ctx, payload)
		if err != nil {
			return oauth2client.StoredSession{}, storeError(ErrorPayloadInvalid, "sqlstore: decrypt session", err, map[string]any{"key": record.SessionKey})
		}
		payload = opened
	}
	var session oauth2client.StoredSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return oauth2client.StoredSession{}, storeError(ErrorPayloadInvalid, "sqlstore: decode session", err, map[string]any{"key": record.SessionKey})
	}
	return session, nil
}

func applyPayload(record *sessionRecord, payload []byte, encrypted bool, session oauth2client.StoredSession, now time.Time) {
	record.Payload = payload
	record.Encrypted = encrypted
	record.UpdatedAt = now
	record.ExpiresAt = nil
	if !session.Expiry.IsZero() {
		expiry := session.Expiry.UTC()
		record.ExpiresAt = &expiry
	}
}

func findSessionTx(ctx context.Context, tx bun.Tx, key string) (*sessionRecord, error) {
	record := &sessionRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.session_key = ?", key).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

var _ oauth2client.SessionStore = (*SessionStore)(nil)
