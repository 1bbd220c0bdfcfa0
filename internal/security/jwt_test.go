package security

import (
	"errors"
	"testing"
	"time"
)

func newManagerForTest() *JWTManager {
	return NewJWTManager("quizapi-test", "0123456789abcdef0123456789abcdef")
}

func TestSignAndParseAccessToken(t *testing.T) {
	mgr := newManagerForTest()
	raw, err := mgr.SignAccessToken(42, "user@example.com", true, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := mgr.Parse(raw, TokenKindAccess)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	id, err := claims.UserID()
	if err != nil {
		t.Fatalf("user id: %v", err)
	}
	if id != 42 {
		t.Fatalf("user id = %d, want 42", id)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("email = %q", claims.Email)
	}
	if !claims.IsAdmin {
		t.Fatal("expected admin claim")
	}
	if claims.ID == "" {
		t.Fatal("expected a jti")
	}
}

func TestParseRejectsWrongKind(t *testing.T) {
	mgr := newManagerForTest()
	refresh, err := mgr.SignRefreshToken(7, time.Minute)
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}
	if _, err := mgr.Parse(refresh, TokenKindAccess); !errors.Is(err, ErrTokenKindMismatch) {
		t.Fatalf("err = %v, want ErrTokenKindMismatch", err)
	}
	if _, err := mgr.Parse(refresh, TokenKindRefresh); err != nil {
		t.Fatalf("parse as refresh: %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	mgr := newManagerForTest()
	raw, err := mgr.SignAccessToken(1, "a@b.c", false, -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := mgr.ParseAny(raw); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestParseRejectsForeignSecret(t *testing.T) {
	other := NewJWTManager("quizapi-test", "another-secret-another-secret-32")
	raw, err := other.SignAccessToken(1, "a@b.c", false, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := newManagerForTest().ParseAny(raw); err == nil {
		t.Fatal("expected error for token signed with a different secret")
	}
}

func TestEachTokenGetsUniqueJTI(t *testing.T) {
	mgr := newManagerForTest()
	seen := make(map[string]struct{})
	for i := 0; i < 10; i++ {
		raw, err := mgr.SignAccessToken(1, "a@b.c", false, time.Minute)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		claims, err := mgr.ParseAny(raw)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if _, dup := seen[claims.ID]; dup {
			t.Fatalf("duplicate jti %q", claims.ID)
		}
		seen[claims.ID] = struct{}{}
	}
}
