package token

import (
	"errors"
	"testing"
	"time"
)

func TestCodec_AccessRoundTrip(t *testing.T) {
	c := NewCodec("secret")

	raw, err := c.IssueAccess("acct_1", "admin", time.Minute)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	claims, err := c.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Subject != "acct_1" {
		t.Fatalf("subject = %q, want acct_1", claims.Subject)
	}
	if claims.TokenType != TypeAccess {
		t.Fatalf("type = %q, want access", claims.TokenType)
	}
	if claims.Role != "admin" {
		t.Fatalf("role = %q, want admin", claims.Role)
	}
	if claims.ID == "" {
		t.Fatalf("expected a token id")
	}
}

func TestCodec_RefreshRoundTrip(t *testing.T) {
	c := NewCodec("secret")

	raw, err := c.IssueRefresh("acct_2", time.Hour)
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}

	claims, err := c.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.TokenType != TypeRefresh {
		t.Fatalf("type = %q, want refresh", claims.TokenType)
	}
	if claims.Role != "" {
		t.Fatalf("refresh token must not carry a role, got %q", claims.Role)
	}
}

func TestCodec_UniqueTokenIDs(t *testing.T) {
	c := NewCodec("secret")

	a, _ := c.IssueRefresh("acct", time.Hour)
	b, _ := c.IssueRefresh("acct", time.Hour)
	if a == b {
		t.Fatalf("two issued tokens must differ")
	}

	ca, _ := c.Decode(a)
	cb, _ := c.Decode(b)
	if ca.ID == cb.ID {
		t.Fatalf("token ids must be unique")
	}
}

func TestCodec_WrongSecret(t *testing.T) {
	raw, err := NewCodec("right").IssueAccess("acct", "user", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := NewCodec("wrong").Decode(raw); !errors.Is(err, ErrSignature) {
		t.Fatalf("expected ErrSignature, got %v", err)
	}
}

func TestCodec_Expired(t *testing.T) {
	c := NewCodec("secret")
	raw, err := c.IssueAccess("acct", "user", -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := c.Decode(raw); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestCodec_Malformed(t *testing.T) {
	c := NewCodec("secret")
	if _, err := c.Decode("not-a-token"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}
