package config

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/example/tma-autoreserve/internal/crypto"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("TMA_CARD_NO", "0030-927583")
	t.Setenv("TMA_PASSWORD", "pw")
	t.Setenv("TMA_PASSWORD_ENC", "")
	t.Setenv("CRED_ENC_KEY", "")
	t.Setenv("MAX_PAGES", "")
	t.Setenv("HEADLESS", "")
	t.Setenv("AUDIT_DATABASE_URL", "")
}

func TestFromEnvDefaults(t *testing.T) {
	setBaseEnv(t)
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.LoginURL != defaultLoginURL || cfg.HistoryURL != defaultHistoryURL || cfg.StationURL != defaultStationURL {
		t.Errorf("URL defaults not applied: %+v", cfg)
	}
	if cfg.EvidenceDir != "evidence" {
		t.Errorf("EvidenceDir = %q", cfg.EvidenceDir)
	}
	if cfg.MaxPages != 50 {
		t.Errorf("MaxPages = %d, want 50", cfg.MaxPages)
	}
	if !cfg.Headless {
		t.Error("Headless must default to true")
	}
	first, second := cfg.CardParts()
	if first != "0030" || second != "927583" {
		t.Errorf("CardParts = %q, %q", first, second)
	}
}

func TestFromEnvRequiresCardNo(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TMA_CARD_NO", "")
	if _, err := FromEnv(); err == nil {
		t.Fatal("want error when TMA_CARD_NO is unset")
	}
	t.Setenv("TMA_CARD_NO", "0030927583")
	if _, err := FromEnv(); err == nil {
		t.Fatal("want error when TMA_CARD_NO has no '-'")
	}
}

func TestFromEnvEncryptedPassword(t *testing.T) {
	setBaseEnv(t)
	key := bytes.Repeat([]byte{7}, crypto.KeySize)
	aead, err := crypto.New(key)
	if err != nil {
		t.Fatalf("crypto.New: %v", err)
	}
	enc, err := aead.EncryptToString("s3cret")
	if err != nil {
		t.Fatalf("EncryptToString: %v", err)
	}
	t.Setenv("TMA_PASSWORD", "")
	t.Setenv("TMA_PASSWORD_ENC", enc)
	t.Setenv("CRED_ENC_KEY", base64.StdEncoding.EncodeToString(key))

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Password != "s3cret" {
		t.Errorf("Password = %q", cfg.Password)
	}
}

func TestFromEnvMissingPassword(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TMA_PASSWORD", "")
	if _, err := FromEnv(); err == nil {
		t.Fatal("want error when no password source is set")
	}
}

func TestFromEnvBadMaxPages(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("MAX_PAGES", "0")
	if _, err := FromEnv(); err == nil {
		t.Fatal("want error for MAX_PAGES=0")
	}
	t.Setenv("MAX_PAGES", "nope")
	if _, err := FromEnv(); err == nil {
		t.Fatal("want error for non-numeric MAX_PAGES")
	}
}
