package secure

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

var ErrInvalidKey = errors.New("field encryption key must be 32 bytes, hex encoded")

// FieldCipher encrypts individual candidate fields before they are persisted
// and decrypts them after load. Callers invoke it explicitly from the
// repository layer; nothing happens implicitly on field mutation.
type FieldCipher struct {
	key []byte
}

// NewFieldCipher parses a hex-encoded 32-byte key.
func NewFieldCipher(hexKey string) (*FieldCipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil || len(key) != chacha20poly1305.KeySize {
		return nil, ErrInvalidKey
	}
	return &FieldCipher{key: key}, nil
}

// Encrypt seals plaintext with XChaCha20-Poly1305 and a random nonce,
// returning base64 text safe for a string column. Empty input stays empty.
func (fc *FieldCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	aead, err := chacha20poly1305.NewX(fc.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (fc *FieldCipher) Decrypt(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode encrypted field: %w", err)
	}
	aead, err := chacha20poly1305.NewX(fc.key)
	if err != nil {
		return "", err
	}
	if len(sealed) < aead.NonceSize() {
		return "", errors.New("encrypted field too short")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("open encrypted field: %w", err)
	}
	return string(plaintext), nil
}

// Digest produces a deterministic keyed hash of a value so encrypted columns
// can still be matched by equality (e.g. the active-session-by-email lookup).
func (fc *FieldCipher) Digest(value string) string {
	mac := hmac.New(sha256.New, fc.key)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}
