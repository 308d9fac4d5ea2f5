package security

import (
	"context"
	"fmt"

	"github.com/goliatone/go-authprovider/core"
)

// KeyRing encrypts with the primary key and decrypts with whichever key
// sealed the envelope, so stored sessions survive an app key rotation.
type KeyRing struct {
	primary  *AppKeySecretProvider
	previous []*AppKeySecretProvider
}

func NewKeyRing(primary *AppKeySecretProvider, previous ...*AppKeySecretProvider) (*KeyRing, error) {
	if primary == nil {
		return nil, securityError(ErrorKeyInvalid, "security: primary key is required", nil)
	}
	ring := &KeyRing{primary: primary}
	for _, key := range previous {
		if key == nil {
			continue
		}
		if key.keyID == primary.keyID && key.version == primary.version {
			return nil, securityError(ErrorKeyInvalid,
				fmt.Sprintf("security: duplicate key %s/%d", key.keyID, key.version), nil)
		}
		ring.previous = append(ring.previous, key)
	}
	return ring, nil
}

func (r *KeyRing) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	if r == nil {
		return nil, securityError(ErrorEncryptionFailed, "security: key ring is nil", nil)
	}
	return r.primary.Encrypt(ctx, plaintext)
}

func (r *KeyRing) Decrypt(_ context.Context, ciphertext []byte) ([]byte, error) {
	if r == nil {
		return nil, securityError(ErrorDecryptionFailed, "security: key ring is nil", nil)
	}
	env, err := decodeEnvelope(ciphertext)
	if err != nil {
		return nil, err
	}
	for _, key := range append([]*AppKeySecretProvider{r.primary}, r.previous...) {
		if key.matches(env) {
			return key.open(env)
		}
	}
	return nil, securityError(ErrorKeyMismatch,
		fmt.Sprintf("security: no key for %s/%d", env.KeyID, env.Version), nil)
}

// NeedsRotation reports whether ciphertext was sealed by a key other than
// the primary.
func (r *KeyRing) NeedsRotation(ciphertext []byte) bool {
	env, err := decodeEnvelope(ciphertext)
	if err != nil {
		return false
	}
	return !r.primary.matches(env)
}

var _ core.SecretProvider = (*KeyRing)(nil)
