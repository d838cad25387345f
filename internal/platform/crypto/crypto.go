// Package crypto protects third-party API credentials at rest.
package crypto

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedCiphertext = errors.New("malformed ciphertext")
	ErrDecrypt             = errors.New("decrypt failed")
	ErrLegacyDisabled      = errors.New("legacy ciphertext without legacy cipher configured")
)

// Cipher encrypts short secrets into printable strings.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type Config struct {
	Passphrase string
	Salt       string
	// LegacyIV is the hex IV used by rows written before per-record nonces.
	// Empty disables reading legacy rows.
	LegacyIV string
}

// Versioned writes with GCM and reads both GCM and legacy CBC values.
type Versioned struct {
	current *GCMCipher
	legacy  *LegacyCipher
}

func New(cfg Config) (*Versioned, error) {
	if strings.TrimSpace(cfg.Passphrase) == "" {
		return nil, errors.New("encryption passphrase is required")
	}
	if strings.TrimSpace(cfg.Salt) == "" {
		return nil, errors.New("encryption salt is required")
	}
	current, err := NewGCMCipher(cfg.Passphrase, cfg.Salt)
	if err != nil {
		return nil, err
	}
	v := &Versioned{current: current}
	if strings.TrimSpace(cfg.LegacyIV) != "" {
		legacy, err := NewLegacyCipher(cfg.Passphrase, cfg.Salt, cfg.LegacyIV)
		if err != nil {
			return nil, fmt.Errorf("legacy cipher: %w", err)
		}
		v.legacy = legacy
	}
	return v, nil
}

func (v *Versioned) Encrypt(plaintext string) (string, error) {
	return v.current.Encrypt(plaintext)
}

func (v *Versioned) Decrypt(ciphertext string) (string, error) {
	if isGCM(ciphertext) {
		return v.current.Decrypt(ciphertext)
	}
	if v.legacy == nil {
		return "", ErrLegacyDisabled
	}
	return v.legacy.Decrypt(ciphertext)
}

// NeedsMigration reports whether ciphertext was written by the legacy cipher.
func (v *Versioned) NeedsMigration(ciphertext string) bool {
	return !isGCM(ciphertext)
}

// Reencrypt decrypts a legacy value and encrypts it with the current cipher.
// Values already in the current format are returned unchanged.
func (v *Versioned) Reencrypt(ciphertext string) (string, bool, error) {
	if !v.NeedsMigration(ciphertext) {
		return ciphertext, false, nil
	}
	plain, err := v.Decrypt(ciphertext)
	if err != nil {
		return "", false, err
	}
	out, err := v.Encrypt(plain)
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}
