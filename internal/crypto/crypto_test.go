package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	cipher, err := NewCipher(key)
	require.NoError(t, err)

	tests := []string{
		"Had a calm walk in the park today.",
		"",
		"unicode: café, 日本語, emoji 😊",
		`{"cbt": "challenge the thought", "dbt": "ride the wave", "act": "act on values"}`,
	}

	for _, plain := range tests {
		token, err := cipher.Encrypt(plain)
		require.NoError(t, err)
		assert.NotEqual(t, plain, token, "ciphertext must differ from plaintext")

		got, err := cipher.Decrypt(token)
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	}
}

func TestNewCipherRejectsBadKeys(t *testing.T) {
	_, err := NewCipher("")
	assert.Error(t, err, "empty key must fail at startup")

	_, err = NewCipher("not-a-valid-fernet-key")
	assert.Error(t, err)
}

func TestDecryptRejectsTamperedToken(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	cipher, err := NewCipher(key)
	require.NoError(t, err)

	token, err := cipher.Encrypt("private journal text")
	require.NoError(t, err)

	_, err = cipher.Decrypt(token + "x")
	assert.Error(t, err)

	_, err = cipher.Decrypt("garbage")
	assert.Error(t, err)
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	key1, err := GenerateKey()
	require.NoError(t, err)
	key2, err := GenerateKey()
	require.NoError(t, err)
	require.NotEqual(t, key1, key2)

	c1, err := NewCipher(key1)
	require.NoError(t, err)
	c2, err := NewCipher(key2)
	require.NoError(t, err)

	token, err := c1.Encrypt("secret")
	require.NoError(t, err)

	_, err = c2.Decrypt(token)
	assert.Error(t, err, "a rotated key must not decrypt old tokens")
}
