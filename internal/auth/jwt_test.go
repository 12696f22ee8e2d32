package auth

import (
	"testing"
	"time"

	"github.com/expromedia/Marx/internal/domain/user"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	u := user.User{Username: "info@expromedia.com.ng", DisplayName: "John Smith", Role: user.RoleAdmin}

	token, exp, err := m.GenerateAccessToken("client-1", u)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if exp.IsZero() {
		t.Fatalf("expected an expiry")
	}

	claims, err := m.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if claims.ClientID != "client-1" || claims.Role != user.RoleAdmin || claims.Username != u.Username {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestManager_RejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", time.Minute)
	issued := time.Now()
	m.now = func() time.Time { return issued }

	token, _, err := m.GenerateAccessToken("client-1", user.User{Username: "a", Role: user.RoleStaff})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }

	if _, err := m.VerifyAccessToken(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestManager_RejectsForeignSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour)
	verifier := NewManager("secret-b", time.Hour)

	token, _, err := issuer.GenerateAccessToken("client-1", user.User{Username: "a", Role: user.RoleStaff})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := verifier.VerifyAccessToken(token); err == nil {
		t.Fatalf("expected signature check to fail")
	}
}
