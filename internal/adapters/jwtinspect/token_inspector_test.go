package jwtinspect_test

import (
	"testing"
	"time"

	"pharmacy-admin-console/internal/adapters/jwtinspect"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestExpiresAtReadsExpiryClaim(t *testing.T) {
	expected := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	token := signToken(t, jwt.MapClaims{
		"sub":  "a1",
		"role": "admin",
		"exp":  expected.Unix(),
	})

	inspector := jwtinspect.NewTokenInspector()
	expiresAt, err := inspector.ExpiresAt(token)
	if err != nil {
		t.Fatalf("ExpiresAt failed: %v", err)
	}
	if !expiresAt.Equal(expected) {
		t.Fatalf("expiry mismatch: got %v, want %v", expiresAt, expected)
	}
}

func TestExpiresAtRejectsTokenWithoutExpiry(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "a1"})

	inspector := jwtinspect.NewTokenInspector()
	if _, err := inspector.ExpiresAt(token); err == nil {
		t.Fatal("token without exp claim must be rejected")
	}
}

func TestExpiresAtRejectsGarbage(t *testing.T) {
	inspector := jwtinspect.NewTokenInspector()
	if _, err := inspector.ExpiresAt("not-a-jwt"); err == nil {
		t.Fatal("unparsable token must be rejected")
	}
}
