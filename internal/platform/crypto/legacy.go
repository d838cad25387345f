package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// LegacyCipher reproduces the original credential format: AES-256-CBC with
// an scrypt-derived key, a fixed IV from configuration and PKCS#7 padding,
// hex encoded. Every value shares the IV, so it is only kept for reading
// rows that predate GCMCipher.
type LegacyCipher struct {
	block cipher.Block
	iv    []byte
}

func NewLegacyCipher(passphrase, salt, ivHex string) (*LegacyCipher, error) {
	iv, err := hex.DecodeString(strings.TrimSpace(ivHex))
	if err != nil {
		return nil, fmt.Errorf("decode iv: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("iv must be %d bytes, got %d", aes.BlockSize, len(iv))
	}
	key, err := scrypt.Key([]byte(passphrase), []byte(salt), 16384, 8, 1, 32)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &LegacyCipher{block: block, iv: iv}, nil
}

func (c *LegacyCipher) Encrypt(plaintext string) (string, error) {
	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(out, padded)
	return hex.EncodeToString(out), nil
}

func (c *LegacyCipher) Decrypt(ciphertext string) (string, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(ciphertext))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", ErrMalformedCiphertext
	}
	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(out, raw)
	plain, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return string(plain), nil
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, errors.New("bad block length")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, errors.New("bad padding")
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, errors.New("bad padding")
		}
	}
	return b[:len(b)-n], nil
}
