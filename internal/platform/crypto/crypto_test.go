package crypto

import (
	"errors"
	"strings"
	"testing"
)

const testIV = "000102030405060708090a0b0c0d0e0f"

func newTestCipher(t *testing.T, iv string) *Versioned {
	t.Helper()
	c, err := New(Config{Passphrase: "correct horse", Salt: "battery staple", LegacyIV: iv})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestVersionedRoundTrip(t *testing.T) {
	c := newTestCipher(t, testIV)
	for _, plain := range []string{"", "AIzaSyExample", strings.Repeat("k", 200)} {
		ct, err := c.Encrypt(plain)
		if err != nil {
			t.Fatalf("Encrypt: %v", err)
		}
		if !strings.HasPrefix(ct, "v2:") {
			t.Fatalf("expected v2 prefix, got %q", ct)
		}
		if strings.Contains(ct, plain) && plain != "" {
			t.Fatalf("ciphertext leaks plaintext")
		}
		got, err := c.Decrypt(ct)
		if err != nil {
			t.Fatalf("Decrypt: %v", err)
		}
		if got != plain {
			t.Fatalf("round trip mismatch: %q != %q", got, plain)
		}
	}
}

func TestGCMUsesFreshNonce(t *testing.T) {
	c := newTestCipher(t, "")
	a, _ := c.Encrypt("same")
	b, _ := c.Encrypt("same")
	if a == b {
		t.Fatalf("expected distinct ciphertexts for repeated plaintext")
	}
}

func TestLegacyIsDeterministicHex(t *testing.T) {
	l, err := NewLegacyCipher("correct horse", "battery staple", testIV)
	if err != nil {
		t.Fatalf("NewLegacyCipher: %v", err)
	}
	a, _ := l.Encrypt("sk-test")
	b, _ := l.Encrypt("sk-test")
	if a != b {
		t.Fatalf("legacy cipher should be deterministic")
	}
	if a != strings.ToLower(a) || len(a)%32 != 0 {
		t.Fatalf("expected lowercase hex of whole blocks, got %q", a)
	}
	got, err := l.Decrypt(a)
	if err != nil || got != "sk-test" {
		t.Fatalf("legacy round trip: got=%q err=%v", got, err)
	}
}

func TestVersionedReadsLegacyAndMigrates(t *testing.T) {
	c := newTestCipher(t, testIV)
	l, _ := NewLegacyCipher("correct horse", "battery staple", testIV)
	legacyCT, _ := l.Encrypt("sk-legacy")

	if !c.NeedsMigration(legacyCT) {
		t.Fatalf("legacy value should need migration")
	}
	got, err := c.Decrypt(legacyCT)
	if err != nil || got != "sk-legacy" {
		t.Fatalf("Decrypt legacy: got=%q err=%v", got, err)
	}

	migrated, changed, err := c.Reencrypt(legacyCT)
	if err != nil || !changed {
		t.Fatalf("Reencrypt: changed=%v err=%v", changed, err)
	}
	if c.NeedsMigration(migrated) {
		t.Fatalf("migrated value still flagged")
	}
	again, changed, err := c.Reencrypt(migrated)
	if err != nil || changed || again != migrated {
		t.Fatalf("Reencrypt should be a no-op on current values")
	}
	if got, _ := c.Decrypt(migrated); got != "sk-legacy" {
		t.Fatalf("migrated value decrypts to %q", got)
	}
}

func TestVersionedWithoutLegacy(t *testing.T) {
	c := newTestCipher(t, "")
	if _, err := c.Decrypt("deadbeef"); !errors.Is(err, ErrLegacyDisabled) {
		t.Fatalf("expected ErrLegacyDisabled, got %v", err)
	}
}

func TestDecryptRejectsGarbage(t *testing.T) {
	c := newTestCipher(t, testIV)
	cases := []string{"v2:zz", "v2:00", "nothex", "abcd"}
	for _, ct := range cases {
		if _, err := c.Decrypt(ct); err == nil {
			t.Fatalf("expected error for %q", ct)
		}
	}
	ct, _ := c.Encrypt("secret")
	tampered := ct[:len(ct)-2] + "00"
	if tampered == ct {
		tampered = ct[:len(ct)-2] + "11"
	}
	if _, err := c.Decrypt(tampered); !errors.Is(err, ErrDecrypt) {
		t.Fatalf("expected ErrDecrypt for tampered value, got %v", err)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(Config{Salt: "s"}); err == nil {
		t.Fatalf("expected passphrase error")
	}
	if _, err := New(Config{Passphrase: "p"}); err == nil {
		t.Fatalf("expected salt error")
	}
	if _, err := New(Config{Passphrase: "p", Salt: "s", LegacyIV: "abcd"}); err == nil {
		t.Fatalf("expected iv length error")
	}
}
