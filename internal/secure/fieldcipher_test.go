package secure

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0101010101010101010101010101010101010101010101010101010101010101"

func TestNewFieldCipherRejectsBadKeys(t *testing.T) {
	cases := []string{
		"",
		"not-hex",
		"0101",                          // too short
		strings.Repeat("01", 16),        // 16 bytes
		strings.Repeat("01", 32) + "01", // 33 bytes
	}
	for _, key := range cases {
		_, err := NewFieldCipher(key)
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestEncryptDecryptRoundtrip(t *testing.T) {
	fc, err := NewFieldCipher(testKey)
	require.NoError(t, err)

	for _, plaintext := range []string{"a@x.com", "+65 9123 4567", "名前", strings.Repeat("x", 4096)} {
		sealed, err := fc.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, sealed)

		opened, err := fc.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, plaintext, opened)
	}
}

func TestEncryptEmptyStaysEmpty(t *testing.T) {
	fc, err := NewFieldCipher(testKey)
	require.NoError(t, err)

	sealed, err := fc.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, sealed)

	opened, err := fc.Decrypt("")
	require.NoError(t, err)
	assert.Empty(t, opened)
}

func TestEncryptIsNondeterministic(t *testing.T) {
	fc, err := NewFieldCipher(testKey)
	require.NoError(t, err)

	first, err := fc.Encrypt("a@x.com")
	require.NoError(t, err)
	second, err := fc.Encrypt("a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "a fresh nonce must produce distinct ciphertexts")
}

func TestDecryptRejectsGarbage(t *testing.T) {
	fc, err := NewFieldCipher(testKey)
	require.NoError(t, err)

	_, err = fc.Decrypt("not base64 !!!")
	assert.Error(t, err)

	_, err = fc.Decrypt("c2hvcnQ=") // valid base64, shorter than a nonce
	assert.Error(t, err)
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	fc, err := NewFieldCipher(testKey)
	require.NoError(t, err)
	other, err := NewFieldCipher(strings.Repeat("02", 32))
	require.NoError(t, err)

	sealed, err := fc.Encrypt("a@x.com")
	require.NoError(t, err)

	_, err = other.Decrypt(sealed)
	assert.Error(t, err)
}

func TestDigestDeterministicAndKeyed(t *testing.T) {
	fc, err := NewFieldCipher(testKey)
	require.NoError(t, err)
	other, err := NewFieldCipher(strings.Repeat("02", 32))
	require.NoError(t, err)

	assert.Equal(t, fc.Digest("a@x.com"), fc.Digest("a@x.com"))
	assert.NotEqual(t, fc.Digest("a@x.com"), fc.Digest("b@x.com"))
	assert.NotEqual(t, fc.Digest("a@x.com"), other.Digest("a@x.com"))
}
