package domain

import (
	"errors"
	"fmt"
	"strings"
)

// AuthReason is the client-facing reason for a failed authentication. The
// values are part of the HTTP contract and must not change.
type AuthReason string

const (
	ReasonNoToken      AuthReason = "No token"
	ReasonInvalidToken AuthReason = "Invalid token"
	ReasonTokenExpired AuthReason = "Token expired"
	ReasonInvalidUser  AuthReason = "Invalid user"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("access forbidden")

	// Token codec failures.
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// UnauthenticatedError is returned when a request carries no usable identity.
type UnauthenticatedError struct {
	Reason AuthReason
}

// Unauthenticated builds an UnauthenticatedError for reason.
func Unauthenticated(reason AuthReason) error {
	return &UnauthenticatedError{Reason: reason}
}

func (e *UnauthenticatedError) Error() string {
	return "unauthenticated: " + strings.ToLower(string(e.Reason))
}

func (e *UnauthenticatedError) Is(target error) bool {
	return target == ErrUnauthenticated
}

// ForbiddenError is returned when a principal's role is not in the allowed set.
type ForbiddenError struct {
	Role    Role
	Allowed []Role
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("role %q not allowed, required one of [%s]", e.Role, e.AllowedList())
}

func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

// AllowedList joins the allowed roles with ", ".
func (e *ForbiddenError) AllowedList() string {
	names := make([]string, len(e.Allowed))
	for i, r := range e.Allowed {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
