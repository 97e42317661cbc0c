// Package crypto provides symmetric encryption for sensitive journal fields.
// It uses Fernet tokens so records written by the original Python service
// decrypt unchanged, and vice versa.
package crypto

import (
	"fmt"

	"github.com/fernet/fernet-go"
)

// Cipher encrypts and decrypts journal text fields with a process-wide key.
// The key is loaded once at startup; a missing or malformed key is a
// constructor error, never a per-call condition.
type Cipher struct {
	key *fernet.Key
}

// NewCipher parses a base64 Fernet key and returns a Cipher.
func NewCipher(encodedKey string) (*Cipher, error) {
	if encodedKey == "" {
		return nil, fmt.Errorf("encryption key must be configured")
	}
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("decode fernet key: %w", err)
	}
	return &Cipher{key: key}, nil
}

// Encrypt returns the Fernet token for text.
func (c *Cipher) Encrypt(text string) (string, error) {
	token, err := fernet.EncryptAndSign([]byte(text), c.key)
	if err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}
	return string(token), nil
}

// Decrypt verifies and opens a Fernet token. TTL is not enforced: journal
// records are retained indefinitely.
func (c *Cipher) Decrypt(token string) (string, error) {
	plain := fernet.VerifyAndDecrypt([]byte(token), 0, []*fernet.Key{c.key})
	if plain == nil {
		return "", fmt.Errorf("decrypt: invalid token")
	}
	return string(plain), nil
}

// GenerateKey creates a fresh base64 Fernet key, for setup tooling.
func GenerateKey() (string, error) {
	var key fernet.Key
	if err := key.Generate(); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return key.Encode(), nil
}
