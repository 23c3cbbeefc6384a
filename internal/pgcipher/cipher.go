package pgcipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Codec encrypts approval payloads for the upstream processor. It is an
// interface so the static-IV scheme below can be swapped for a per-call
// nonce scheme without touching the approval client.
type Codec interface {
	Encrypt(plaintext string) (string, error)
}

// AESGCM implements the processor's wire scheme: the 256-bit key is the
// SHA-256 digest of the shared secret, the payload is sealed with AES-GCM
// (128-bit tag) and the result is base64url-encoded without padding.
//
// The IV comes from static configuration, not per-call randomness. Reusing a
// GCM nonce under the same key is a known weakening of the mode: the same
// plaintext always produces the same ciphertext, and repeated plaintexts leak
// equality to an observer. The upstream processor requires this exact scheme,
// so it is preserved byte-for-byte here rather than fixed.
type AESGCM struct {
	key []byte
	iv  []byte
}

// NewAESGCM derives the key from sharedSecret and decodes ivB64 as
// URL-safe base64. The IV length is preserved as configured; GCM is
// initialized with a matching nonce size.
func NewAESGCM(sharedSecret, ivB64 string) (*AESGCM, error) {
	if sharedSecret == "" {
		return nil, errors.New("shared secret is required")
	}

	iv, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(ivB64, "="))
	if err != nil {
		return nil, fmt.Errorf("decode iv: %w", err)
	}
	if len(iv) == 0 {
		return nil, errors.New("iv must not be empty")
	}

	key := sha256.Sum256([]byte(sharedSecret))

	return &AESGCM{key: key[:], iv: iv}, nil
}

// Encrypt seals plaintext and returns ciphertext+tag as unpadded base64url.
// Deterministic for a given secret/IV pair.
func (c *AESGCM) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, len(c.iv))
	if err != nil {
		return "", fmt.Errorf("init gcm: %w", err)
	}

	sealed := gcm.Seal(nil, c.iv, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}
