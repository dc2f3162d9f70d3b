package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/example/tma-autoreserve/internal/crypto"
)

const (
	defaultLoginURL   = "https://dailycheck.tc-extsys.jp/tcrappsweb/web/login/tawLogin.html"
	defaultHistoryURL = "https://dailycheck.tc-extsys.jp/tcrappsweb/web/reserveHistory.html"
	defaultStationURL = "https://dailycheck.tc-extsys.jp/tcrappsweb/web/routineStation.html"
)

// Config is the immutable run configuration, sourced from the environment and
// injected into the orchestrator at construction.
type Config struct {
	LoginURL   string
	HistoryURL string
	StationURL string

	// CardNo is the portal member id, "NNNN-NNNNNN"; the login form wants it
	// split across two fields.
	CardNo   string
	Password string

	EvidenceDir string
	MaxPages    int
	Headless    bool

	// AuditDatabaseURL enables the Postgres audit trail when non-empty.
	AuditDatabaseURL string
}

func FromEnv() (Config, error) {
	cfg := Config{
		LoginURL:         getenv("TMA_LOGIN_URL", defaultLoginURL),
		HistoryURL:       getenv("TMA_HISTORY_URL", defaultHistoryURL),
		StationURL:       getenv("TMA_STATION_URL", defaultStationURL),
		CardNo:           strings.TrimSpace(os.Getenv("TMA_CARD_NO")),
		EvidenceDir:      getenv("EVIDENCE_DIR", "evidence"),
		Headless:         getenv("HEADLESS", "1") == "1",
		AuditDatabaseURL: strings.TrimSpace(os.Getenv("AUDIT_DATABASE_URL")),
	}

	maxPages, err := strconv.Atoi(getenv("MAX_PAGES", "50"))
	if err != nil || maxPages < 1 {
		return Config{}, fmt.Errorf("invalid MAX_PAGES")
	}
	cfg.MaxPages = maxPages

	if cfg.CardNo == "" {
		return Config{}, fmt.Errorf("TMA_CARD_NO is required (format NNNN-NNNNNN)")
	}
	if !strings.Contains(cfg.CardNo, "-") {
		return Config{}, fmt.Errorf("TMA_CARD_NO must contain '-' (format NNNN-NNNNNN)")
	}

	cfg.Password, err = passwordFromEnv()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// passwordFromEnv accepts either TMA_PASSWORD (plain) or TMA_PASSWORD_ENC
// (AES-GCM ciphertext, decrypted with the base64 CRED_ENC_KEY).
func passwordFromEnv() (string, error) {
	if pw := os.Getenv("TMA_PASSWORD"); pw != "" {
		return pw, nil
	}
	enc := strings.TrimSpace(os.Getenv("TMA_PASSWORD_ENC"))
	if enc == "" {
		return "", fmt.Errorf("TMA_PASSWORD or TMA_PASSWORD_ENC is required")
	}
	key, err := decodeB64(strings.TrimSpace(os.Getenv("CRED_ENC_KEY")))
	if err != nil {
		return "", fmt.Errorf("CRED_ENC_KEY: %w", err)
	}
	aead, err := crypto.New(key)
	if err != nil {
		return "", fmt.Errorf("CRED_ENC_KEY: %w", err)
	}
	pw, err := aead.DecryptString(enc)
	if err != nil {
		return "", fmt.Errorf("TMA_PASSWORD_ENC: %w", err)
	}
	return pw, nil
}

// CardParts splits the member id on its first '-' into the two login fields.
func (c Config) CardParts() (string, string) {
	first, second, _ := strings.Cut(c.CardNo, "-")
	return first, second
}

func decodeB64(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("value is required (base64)")
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
