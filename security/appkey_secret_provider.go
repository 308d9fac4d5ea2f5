package security

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-authprovider/core"
)

type Option func(*AppKeySecretProvider)

// AppKeySecretProvider seals session payloads with AES-GCM under an
// application key. The key id and version are bound as associated data.
type AppKeySecretProvider struct {
	aead    cipher.AEAD
	keyID   string
	version int
}

func WithKeyID(id string) Option {
	return func(provider *AppKeySecretProvider) {
		trimmed := strings.TrimSpace(id)
		if trimmed != "" {
			provider.keyID = trimmed
		}
	}
}

func WithVersion(version int) Option {
	return func(provider *AppKeySecretProvider) {
		if version > 0 {
			provider.version = version
		}
	}
}

// NewAppKeySecretProvider accepts raw AES key material (16, 24 or 32 bytes);
// anything else is hashed to a 32 byte key.
func NewAppKeySecretProvider(keyMaterial []byte, opts ...Option) (*AppKeySecretProvider, error) {
	key := bytes.TrimSpace(keyMaterial)
	if len(key) == 0 {
		return nil, securityError(ErrorKeyInvalid, "security: key material is required", nil)
	}
	block, err := aes.NewCipher(normalizeKey(key))
	if err != nil {
		return nil, securityError(ErrorKeyInvalid, "security: create cipher", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, securityError(ErrorKeyInvalid, "security: create gcm", err)
	}
	provider := &AppKeySecretProvider{
		aead:    aead,
		keyID:   "app-key",
		version: 1,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(provider)
	}
	return provider, nil
}

func NewAppKeySecretProviderFromString(key string, opts ...Option) (*AppKeySecretProvider, error) {
	return NewAppKeySecretProvider([]byte(key), opts...)
}

func (p *AppKeySecretProvider) Encrypt(_ context.Context, plaintext []byte) ([]byte, error) {
	if p == nil || p.aead == nil {
		return nil, securityError(ErrorEncryptionFailed, "security: secret provider is nil", nil)
	}
	if len(plaintext) == 0 {
		return nil, securityError(ErrorEncryptionFailed, "security: plaintext is required", nil)
	}
	nonce := make([]byte, p.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, securityError(ErrorEncryptionFailed, "security: nonce generation failed", err)
	}
	sealed := p.aead.Seal(nil, nonce, plaintext, p.associatedData())
	return encodeEnvelope(envelope{
		KeyID:      p.keyID,
		Version:    p.version,
		Algorithm:  envelopeAlgorithm,
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(sealed),
	})
}

func (p *AppKeySecretProvider) Decrypt(_ context.Context, ciphertext []byte) ([]byte, error) {
	if p == nil || p.aead == nil {
		return nil, securityError(ErrorDecryptionFailed, "security: secret provider is nil", nil)
	}
	env, err := decodeEnvelope(ciphertext)
	if err != nil {
		return nil, err
	}
	if !p.matches(env) {
		return nil, securityError(ErrorKeyMismatch,
			fmt.Sprintf("security: key mismatch: got %s/%d want %s/%d", env.KeyID, env.Version, p.keyID, p.version), nil)
	}
	return p.open(env)
}

func (p *AppKeySecretProvider) open(env envelope) ([]byte, error) {
	nonce, payload, err := env.sealed()
	if err != nil {
		return nil, err
	}
	if len(nonce) != p.aead.NonceSize() {
		return nil, securityError(ErrorEnvelopeInvalid, "security: invalid nonce size", nil)
	}
	plaintext, err := p.aead.Open(nil, nonce, payload, p.associatedData())
	if err != nil {
		return nil, securityError(ErrorDecryptionFailed, "security: decrypt payload", err)
	}
	return plaintext, nil
}

func (p *AppKeySecretProvider) matches(env envelope) bool {
	return env.KeyID == p.keyID && env.Version == p.version
}

func (p *AppKeySecretProvider) associatedData() []byte {
	return fmt.Appendf(nil, "%s:%d", p.keyID, p.version)
}

func (p *AppKeySecretProvider) KeyID() string {
	if p == nil {
		return ""
	}
	return p.keyID
}

func (p *AppKeySecretProvider) Version() int {
	if p == nil {
		return 0
	}
	return p.version
}

func normalizeKey(value []byte) []byte {
	if len(value) == 16 || len(value) == 24 || len(value) == 32 {
		return append([]byte(nil), value...)
	}
	sum := sha256.Sum256(value)
	return sum[:]
}

var _ core.SecretProvider = (*AppKeySecretProvider)(nil)
