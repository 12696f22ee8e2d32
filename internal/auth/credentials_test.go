package auth

import (
	"errors"
	"testing"

	"github.com/expromedia/Marx/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "info@expromedia.com.ng"
	adminPassword = "admin1356@#"
	staffEmail    = "staff@expromedia.com.ng"
	staffPassword = "staff1356@#"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()

	admin, err := NewCredential(user.RoleAdmin, adminEmail, adminPassword, "John Smith", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("admin credential: %v", err)
	}

	staff, err := NewCredential(user.RoleStaff, staffEmail, staffPassword, "Sarah Jenkins", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("staff credential: %v", err)
	}

	return NewValidator(admin, staff)
}

func TestValidate_AdminSuccess(t *testing.T) {
	v := newTestValidator(t)

	u, err := v.Validate(adminEmail, adminPassword, user.RoleAdmin, "12", 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := user.User{Username: adminEmail, DisplayName: "John Smith", Role: user.RoleAdmin}
	if u != want {
		t.Fatalf("got %+v, want %+v", u, want)
	}
}

func TestValidate_StaffSuccess(t *testing.T) {
	v := newTestValidator(t)

	u, err := v.Validate(staffEmail, staffPassword, user.RoleStaff, "3", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if u.Role != user.RoleStaff || u.DisplayName != "Sarah Jenkins" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestValidate_ChallengeMismatchWins(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name     string
		identity string
		secret   string
		input    string
	}{
		{name: "correct credentials wrong answer", identity: adminEmail, secret: adminPassword, input: "13"},
		{name: "wrong credentials wrong answer", identity: "x@y.z", secret: "nope", input: "1"},
		{name: "empty answer", identity: adminEmail, secret: adminPassword, input: ""},
		{name: "non numeric answer", identity: adminEmail, secret: adminPassword, input: "twelve"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(tt.identity, tt.secret, user.RoleAdmin, tt.input, 12)
			if !errors.Is(err, ErrChallengeMismatch) {
				t.Fatalf("got %v, want ErrChallengeMismatch", err)
			}
		})
	}
}

func TestValidate_InvalidCredentials(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name        string
		identity    string
		secret      string
		role        user.Role
		wantMessage string
	}{
		{name: "admin wrong secret", identity: adminEmail, secret: "admin1356@", role: user.RoleAdmin, wantMessage: "Invalid admin credentials."},
		{name: "admin wrong identity", identity: "info@expromedia.com", secret: adminPassword, role: user.RoleAdmin, wantMessage: "Invalid admin credentials."},
		{name: "staff pair on admin role", identity: staffEmail, secret: staffPassword, role: user.RoleAdmin, wantMessage: "Invalid admin credentials."},
		{name: "admin pair on staff role", identity: adminEmail, secret: adminPassword, role: user.RoleStaff, wantMessage: "Invalid staff credentials."},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(tt.identity, tt.secret, tt.role, "5", 5)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("got %v, want ErrInvalidCredentials", err)
			}

			var credErr *InvalidCredentialsError
			if !errors.As(err, &credErr) {
				t.Fatalf("expected *InvalidCredentialsError, got %T", err)
			}
			if credErr.Message() != tt.wantMessage {
				t.Fatalf("message = %q, want %q", credErr.Message(), tt.wantMessage)
			}
		})
	}
}

func TestValidate_UnknownRole(t *testing.T) {
	v := newTestValidator(t)

	_, err := v.Validate(adminEmail, adminPassword, user.Role("OWNER"), "1", 1)
	if !errors.Is(err, user.ErrUnknownRole) {
		t.Fatalf("got %v, want ErrUnknownRole", err)
	}
}
