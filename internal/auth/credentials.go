package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/expromedia/Marx/internal/challenge"
	"github.com/expromedia/Marx/internal/domain/user"
	"github.com/expromedia/Marx/internal/security"
)

var (
	ErrChallengeMismatch  = errors.New("challenge answer mismatch")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// InvalidCredentialsError carries the role the login was attempted for so the
// caller can show a role specific message.
type InvalidCredentialsError struct {
	Role user.Role
}

func (e *InvalidCredentialsError) Error() string {
	return fmt.Sprintf("invalid %s credentials", strings.ToLower(string(e.Role)))
}

func (e *InvalidCredentialsError) Is(target error) bool {
	return target == ErrInvalidCredentials
}

// Message is the user facing text for the login form.
func (e *InvalidCredentialsError) Message() string {
	switch e.Role {
	case user.RoleAdmin:
		return "Invalid admin credentials."
	case user.RoleStaff:
		return "Invalid staff credentials."
	default:
		return "Invalid credentials."
	}
}

// Credential is the one identity/secret pair accepted for a role.
type Credential struct {
	Role        user.Role
	Identity    string
	SecretHash  string
	DisplayName string
}

// NewCredential hashes secret and returns the pair for role.
func NewCredential(role user.Role, identity, secret, displayName string, cost int) (Credential, error) {
	if !role.Valid() {
		return Credential{}, user.ErrUnknownRole
	}

	hash, err := security.HashSecret(secret, cost)
	if err != nil {
		return Credential{}, fmt.Errorf("hash %s secret: %w", role, err)
	}

	return Credential{
		Role:        role,
		Identity:    identity,
		SecretHash:  hash,
		DisplayName: displayName,
	}, nil
}

type Validator struct {
	byRole map[user.Role]Credential
}

func NewValidator(creds ...Credential) *Validator {
	byRole := make(map[user.Role]Credential, len(creds))
	for _, c := range creds {
		byRole[c.Role] = c
	}

	return &Validator{byRole: byRole}
}

// Validate checks the challenge answer first and the credentials second.
// A wrong challenge answer always yields ErrChallengeMismatch, even when the
// credentials are right.
func (v *Validator) Validate(identity, secret string, role user.Role, challengeInput string, expectedAnswer int) (user.User, error) {
	if !challenge.Matches(challengeInput, expectedAnswer) {
		return user.User{}, ErrChallengeMismatch
	}

	var cred Credential
	var ok bool

	switch role {
	case user.RoleAdmin, user.RoleStaff:
		cred, ok = v.byRole[role]
	default:
		return user.User{}, user.ErrUnknownRole
	}

	if !ok {
		return user.User{}, &InvalidCredentialsError{Role: role}
	}

	identityOK := subtle.ConstantTimeCompare([]byte(identity), []byte(cred.Identity)) == 1
	secretErr := security.CheckSecret(cred.SecretHash, secret)

	if !identityOK || secretErr != nil {
		return user.User{}, &InvalidCredentialsError{Role: role}
	}

	return user.User{
		Username:    cred.Identity,
		DisplayName: cred.DisplayName,
		Role:        role,
	}, nil
}
