package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/smehta-dev/storefront-backend/pkg/config"
)

func sessionConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:   "unit-test-secret",
		Issuer:   "storefront",
		TTLHours: 1,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := sessionConfig()
	now := time.Now()

	signed, sid, err := MintSessionToken(cfg, now, "")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if sid == "" {
		t.Fatal("expected a generated session id")
	}

	parsed, err := ParseSessionToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != sid {
		t.Fatalf("expected session id %q, got %q", sid, parsed)
	}
}

func TestMintKeepsExistingSessionID(t *testing.T) {
	cfg := sessionConfig()
	signed, sid, err := MintSessionToken(cfg, time.Now(), "sess-keep")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if sid != "sess-keep" {
		t.Fatalf("expected session id preserved, got %q", sid)
	}
	parsed, err := ParseSessionToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != "sess-keep" {
		t.Fatalf("unexpected session id %q", parsed)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := sessionConfig()
	signed, _, err := MintSessionToken(cfg, time.Now().Add(-2*time.Hour), "sess-old")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseSessionToken(cfg, signed); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := sessionConfig()
	signed, _, err := MintSessionToken(cfg, time.Now(), "sess-1")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "different-secret"
	if _, err := ParseSessionToken(other, signed); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestMintRequiresSecret(t *testing.T) {
	cfg := sessionConfig()
	cfg.Secret = ""
	if _, _, err := MintSessionToken(cfg, time.Now(), ""); err == nil || !strings.Contains(err.Error(), "secret") {
		t.Fatalf("expected secret error, got %v", err)
	}
}
