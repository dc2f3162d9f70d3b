package crypto

import (
	"bytes"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, KeySize)
	a, err := New(key)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ct, err := a.EncryptToString("Ccj-hunter2")
	if err != nil {
		t.Fatalf("EncryptToString: %v", err)
	}
	pt, err := a.DecryptString(ct)
	if err != nil {
		t.Fatalf("DecryptString: %v", err)
	}
	if pt != "Ccj-hunter2" {
		t.Errorf("round trip = %q", pt)
	}
}

func TestWrongKeyFails(t *testing.T) {
	a1, _ := New(bytes.Repeat([]byte{1}, KeySize))
	a2, _ := New(bytes.Repeat([]byte{2}, KeySize))
	ct, err := a1.EncryptToString("secret")
	if err != nil {
		t.Fatalf("EncryptToString: %v", err)
	}
	if _, err := a2.DecryptString(ct); err == nil {
		t.Fatal("decrypt with wrong key must fail")
	}
}

func TestBadInputs(t *testing.T) {
	if _, err := New(make([]byte, 16)); err == nil {
		t.Error("short key must be rejected")
	}
	a, _ := New(make([]byte, KeySize))
	if _, err := a.DecryptString("AA"); err == nil {
		t.Error("truncated ciphertext must be rejected")
	}
	if _, err := a.DecryptString("!!!not base64!!!"); err == nil {
		t.Error("invalid base64 must be rejected")
	}
}
