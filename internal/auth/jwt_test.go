package auth

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Generate("user-42")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	userID, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if userID != "user-42" {
		t.Errorf("Verify returned %q, want user-42", userID)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, err := issuer.Generate("user-42")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Error("token signed with a different secret verified")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute)

	token, err := m.Generate("user-42")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := m.Verify(token); err == nil {
		t.Error("expired token verified")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	if _, err := m.Verify("not.a.token"); err == nil {
		t.Error("garbage token verified")
	}
}

func TestFromRequestHeaderAndQuery(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	token, err := m.Generate("user-42")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	r := httptest.NewRequest("GET", "/socket", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	if userID, err := m.FromRequest(r); err != nil || userID != "user-42" {
		t.Errorf("FromRequest header = (%q, %v), want user-42", userID, err)
	}

	// Browsers cannot set headers on websocket upgrades.
	r = httptest.NewRequest("GET", "/socket?access_token="+token, nil)
	if userID, err := m.FromRequest(r); err != nil || userID != "user-42" {
		t.Errorf("FromRequest query = (%q, %v), want user-42", userID, err)
	}

	r = httptest.NewRequest("GET", "/socket", nil)
	if _, err := m.FromRequest(r); err == nil {
		t.Error("request without a token resolved an identity")
	}
}
