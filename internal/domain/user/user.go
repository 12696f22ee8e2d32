package user

import (
	"errors"
	"strings"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
)

var ErrUnknownRole = errors.New("unknown role")

// Roles lists every role the portal knows about, in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleStaff}
}

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleStaff:
		return RoleStaff, nil
	default:
		return "", ErrUnknownRole
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff:
		return true
	default:
		return false
	}
}

// User is created on a successful login and never mutated afterwards.
type User struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
