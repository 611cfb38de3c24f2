package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/catalogbase-backend/pkg/config"
)

func TestMintAndParseSessionToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "catalogbase",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	userID := uuid.New()
	image := "https://cdn.example.com/avatar.png"

	payload := SessionPayload{
		UserID:             userID,
		Name:               "Zoe",
		Image:              &image,
		OnboardingComplete: true,
		JTI:                uuid.NewString(),
	}

	token, err := MintSessionToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint session token: %v", err)
	}

	claims, err := ParseSessionToken(cfg, token)
	if err != nil {
		t.Fatalf("parse session token: %v", err)
	}

	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.Name != "Zoe" {
		t.Fatalf("unexpected name %q", claims.Name)
	}
	if claims.Image == nil || *claims.Image != image {
		t.Fatal("image not preserved")
	}
	if !claims.OnboardingComplete {
		t.Fatal("onboarding flag not preserved")
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestParseSessionTokenInvalidSignature(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "catalogbase",
		ExpirationMinutes: 10,
	}
	token, err := MintSessionToken(cfg, time.Now(), SessionPayload{
		UserID: uuid.New(),
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint session token: %v", err)
	}

	if _, err := ParseSessionToken(cfg, token+"x"); err == nil {
		t.Fatal("expected invalid signature error")
	}
}

func TestParseSessionTokenExpired(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "catalogbase",
		ExpirationMinutes: 15,
	}
	token, err := MintSessionToken(cfg, time.Now().Add(-time.Hour), SessionPayload{
		UserID: uuid.New(),
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint session token: %v", err)
	}

	_, err = ParseSessionToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}
}
