package secure

import (
	"bytes"
	"testing"
)

func testCipher(t *testing.T) *Cipher {
	t.Helper()
	key := bytes.Repeat([]byte{0x42}, 32)
	c, err := NewCipher(key)
	if err != nil {
		t.Fatalf("failed to build cipher: %v", err)
	}
	return c
}

func TestCipherRoundTrip(t *testing.T) {
	c := testCipher(t)

	sealed, err := c.Encrypt("96000.00")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if bytes.Contains(sealed, []byte("96000")) {
		t.Error("ciphertext must not contain the plaintext")
	}

	opened, err := c.Decrypt(sealed)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if opened != "96000.00" {
		t.Errorf("round trip mismatch: got %q", opened)
	}
}

func TestCipherNoncePerValue(t *testing.T) {
	c := testCipher(t)

	first, err := c.Encrypt("secret")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	second, err := c.Encrypt("secret")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if bytes.Equal(first, second) {
		t.Error("sealing the same value twice must not repeat ciphertext")
	}
}

func TestCipherRejectsBadKey(t *testing.T) {
	if _, err := NewCipher([]byte("short")); err == nil {
		t.Fatal("expected error for a short key")
	}
	if _, err := NewCipherFromHex("zz"); err == nil {
		t.Fatal("expected error for invalid hex")
	}
}

func TestCipherRejectsTamperedValue(t *testing.T) {
	c := testCipher(t)

	sealed, err := c.Encrypt("secret")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xFF
	if _, err := c.Decrypt(sealed); err == nil {
		t.Fatal("expected tampered value to fail authentication")
	}
}
