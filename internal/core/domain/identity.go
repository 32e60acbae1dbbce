package domain

import (
	"errors"
	"time"
)

var (
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrIdentityExists     = errors.New("identity already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("role not permitted for this account class")
	ErrInvalidAccount     = errors.New("invalid account data")
)

// MinPasswordLength is enforced on registration and staff creation.
const MinPasswordLength = 8

// Identity is a stored account. Regular accounts and staff accounts live in
// separate stores; Role tells which one a record belongs to.
type Identity struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"name"`
	Username     string    `json:"username,omitempty"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Principal returns the request identity for this record.
func (i *Identity) Principal() Principal {
	return Principal{ID: i.ID, Role: i.Role}
}
