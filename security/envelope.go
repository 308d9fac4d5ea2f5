package security

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
)

const (
	envelopePrefix    = "authprovider.secret.v1:"
	envelopeAlgorithm = "aes-256-gcm"
)

type envelope struct {
	KeyID      string `json:"kid"`
	Version    int    `json:"ver"`
	Algorithm  string `json:"alg"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

type EnvelopeMetadata struct {
	KeyID     string
	Version   int
	Algorithm string
}

// IsEnvelope reports whether data carries the encrypted payload prefix.
// Stores use it to read payloads written before encryption was enabled.
func IsEnvelope(data []byte) bool {
	return bytes.HasPrefix(data, []byte(envelopePrefix))
}

func ParseEnvelopeMetadata(ciphertext []byte) (EnvelopeMetadata, error) {
	env, err := decodeEnvelope(ciphertext)
	if err != nil {
		return EnvelopeMetadata{}, err
	}
	return EnvelopeMetadata{KeyID: env.KeyID, Version: env.Version, Algorithm: env.Algorithm}, nil
}

func encodeEnvelope(env envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, securityError(ErrorEnvelopeInvalid, "security: encode envelope", err)
	}
	return append([]byte(envelopePrefix), data...), nil
}

func decodeEnvelope(ciphertext []byte) (envelope, error) {
	if len(ciphertext) == 0 {
		return envelope{}, securityError(ErrorEnvelopeInvalid, "security: ciphertext is required", nil)
	}
	if !IsEnvelope(ciphertext) {
		return envelope{}, securityError(ErrorEnvelopeInvalid, "security: invalid ciphertext envelope prefix", nil)
	}
	var parsed envelope
	if err := json.Unmarshal(ciphertext[len(envelopePrefix):], &parsed); err != nil {
		return envelope{}, securityError(ErrorEnvelopeInvalid, "security: decode envelope", err)
	}
	parsed.KeyID = strings.TrimSpace(parsed.KeyID)
	parsed.Algorithm = strings.ToLower(strings.TrimSpace(parsed.Algorithm))
	if parsed.Algorithm == "" {
		parsed.Algorithm = envelopeAlgorithm
	}
	if parsed.Algorithm != envelopeAlgorithm {
		return envelope{}, securityError(ErrorEnvelopeInvalid, "security: unsupported envelope algorithm "+parsed.Algorithm, nil)
	}
	if parsed.Ciphertext == "" || parsed.Nonce == "" {
		return envelope{}, securityError(ErrorEnvelopeInvalid, "security: envelope is missing ciphertext", nil)
	}
	return parsed, nil
}

func (e envelope) sealed() ([]byte, []byte, error) {
	nonce, err := base64.StdEncoding.DecodeString(e.Nonce)
	if err != nil {
		return nil, nil, securityError(ErrorEnvelopeInvalid, "security: decode nonce", err)
	}
	payload, err := base64.StdEncoding.DecodeString(e.Ciphertext)
	if err != nil {
		return nil, nil, securityError(ErrorEnvelopeInvalid, "security: decode ciphertext payload", err)
	}
	return nonce, payload, nil
}
