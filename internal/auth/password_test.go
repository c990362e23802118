package auth

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPIN(t *testing.T) {
	hash, err := HashPIN(1111, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPIN: %v", err)
	}
	if err := VerifyPIN(hash, 1111); err != nil {
		t.Fatalf("VerifyPIN same pin: %v", err)
	}
	if err := VerifyPIN(hash, 2222); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := VerifyPIN("", 1111); err == nil {
		t.Fatalf("expected error for empty hash")
	}
}

func TestParsePINNumericEquality(t *testing.T) {
	hash, err := HashPIN(42, bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	pin, err := ParsePIN("0042")
	if err != nil {
		t.Fatal(err)
	}
	if err := VerifyPIN(hash, pin); err != nil {
		t.Fatalf("0042 should match 42: %v", err)
	}
	for _, raw := range []string{"42", "42.0", " 0042.00 ", "4.2e1"} {
		got, err := ParsePIN(raw)
		if err != nil || got != 42 {
			t.Fatalf("ParsePIN(%q)=%d,%v want 42", raw, got, err)
		}
	}
	for _, raw := range []string{"", "abc", "-1", "12.5", "99999999999999999999"} {
		if _, err := ParsePIN(raw); !errors.Is(err, ErrInvalidPIN) {
			t.Fatalf("ParsePIN(%q) expected ErrInvalidPIN, got %v", raw, err)
		}
	}
}

func TestPrincipalContext(t *testing.T) {
	ctx := ContextWithPrincipal(context.Background(), Principal{UserName: "js", SessionID: "s-1"})
	p, ok := PrincipalFromContext(ctx)
	if !ok || p.UserName != "js" || p.SessionID != "s-1" {
		t.Fatalf("unexpected principal: %+v %v", p, ok)
	}
	if _, ok := PrincipalFromContext(context.Background()); ok {
		t.Fatalf("empty context must not carry a principal")
	}
}
