package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestHMACService_RoundTrip(t *testing.T) {
	svc := NewHMACService("secret", 15*time.Minute)

	tok, exp, err := svc.GenerateAccessToken("ops", RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if exp.IsZero() {
		t.Fatal("expected expiry")
	}

	claims, err := svc.ValidateToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "ops" || claims.Role != RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestHMACService_Rejects(t *testing.T) {
	svc := NewHMACService("secret", time.Minute)
	tok, _, err := svc.GenerateAccessToken("ops", RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := NewHMACService("other-secret", time.Minute)
	if _, err := other.ValidateToken(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("wrong secret: expected ErrTokenInvalid, got %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.ValidateToken(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	if _, err := svc.ValidateToken("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("garbage: expected ErrTokenInvalid, got %v", err)
	}

	if _, _, err := NewHMACService("", time.Minute).GenerateAccessToken("ops", RoleAdmin); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("empty secret must not sign: %v", err)
	}
}
