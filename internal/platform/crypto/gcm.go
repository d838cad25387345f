package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const gcmPrefix = "v2:"

// GCMCipher is AES-256-GCM with an argon2id-derived key and a random nonce
// per value. Output is "v2:" followed by hex(nonce || sealed).
type GCMCipher struct {
	aead cipher.AEAD
}

func deriveGCMKey(passphrase, salt string) []byte {
	return argon2.IDKey([]byte(passphrase), []byte(salt), 1, 64*1024, 4, 32)
}

func NewGCMCipher(passphrase, salt string) (*GCMCipher, error) {
	block, err := aes.NewCipher(deriveGCMKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &GCMCipher{aead: aead}, nil
}

func (c *GCMCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return gcmPrefix + hex.EncodeToString(sealed), nil
}

func (c *GCMCipher) Decrypt(ciphertext string) (string, error) {
	if !isGCM(ciphertext) {
		return "", ErrMalformedCiphertext
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(ciphertext, gcmPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	ns := c.aead.NonceSize()
	if len(raw) < ns+c.aead.Overhead() {
		return "", ErrMalformedCiphertext
	}
	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return string(plain), nil
}

func isGCM(ciphertext string) bool {
	return strings.HasPrefix(ciphertext, gcmPrefix)
}
