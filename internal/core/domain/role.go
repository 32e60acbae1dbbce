package domain

import (
	"context"
	"errors"
	"strings"
)

// Role is the canonical role of an account. Roles are stored and transported as
// lowercase strings.
type Role string

const (
	RoleUser       Role = "user"
	RoleEditor     Role = "editor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

var ErrUnknownRole = errors.New("unknown role")

// ParseRole normalises s and rejects anything outside the four known roles.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrUnknownRole
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleEditor, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Elevated reports whether r belongs to a staff account.
func (r Role) Elevated() bool {
	return r == RoleEditor || r == RoleAdmin || r == RoleSuperAdmin
}

// Moderator reports whether r may moderate content owned by other accounts.
func (r Role) Moderator() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

func (r Role) String() string { return string(r) }

// Principal is the identity attached to an authenticated request.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

type principalKey struct{}

// ContextWithPrincipal returns a copy of ctx carrying p.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by ContextWithPrincipal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
