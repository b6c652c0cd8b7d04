package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/poornima-canteen/canteen-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "canteen-api",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	now := time.Now()

	signed, err := MintAccessToken(cfg, now, AccessTokenPayload{
		SubjectID:   "subject-1",
		Email:       "student@poornima.edu.in",
		DisplayName: "Student",
		Role:        "standard",
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.Subject != "subject-1" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if claims.Email != "student@poornima.edu.in" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
	if claims.Role != "standard" {
		t.Fatalf("unexpected role %q", claims.Role)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
}

func TestMintRejectsIncompletePayload(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	cases := []AccessTokenPayload{
		{Email: "a@b.c", Role: "standard"},
		{SubjectID: "s", Role: "standard"},
		{SubjectID: "s", Email: "a@b.c"},
	}
	for _, payload := range cases {
		if _, err := MintAccessToken(cfg, time.Now(), payload); err == nil {
			t.Fatalf("expected error for payload %+v", payload)
		}
	}
}

func TestParseRejectsForeignIssuer(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	other := cfg
	other.Issuer = "someone-else"

	signed, err := MintAccessToken(other, time.Now(), AccessTokenPayload{
		SubjectID: "subject-1",
		Email:     "student@poornima.edu.in",
		Role:      "standard",
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if _, err := ParseAccessToken(cfg, signed); err == nil || !strings.Contains(err.Error(), "iss") {
		t.Fatalf("expected issuer validation error, got %v", err)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{
		SubjectID: "subject-1",
		Email:     "student@poornima.edu.in",
		Role:      "standard",
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected expiry validation error")
	}
}
