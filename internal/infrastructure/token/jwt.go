// Package token issues and verifies HS256 bearer tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/blogcms/cms-api/internal/core/domain"
	"github.com/blogcms/cms-api/internal/core/ports"
)

const (
	defaultUserTTL  = 7 * 24 * time.Hour
	defaultStaffTTL = time.Hour
)

// Config holds the signing secret and token lifetimes.
type Config struct {
	Secret   string
	Issuer   string
	UserTTL  time.Duration // regular accounts
	StaffTTL time.Duration // elevated roles
}

// Claims is the JWT payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Codec implements ports.TokenCodec.
type Codec struct {
	secret   []byte
	issuer   string
	userTTL  time.Duration
	staffTTL time.Duration
	now      func() time.Time
}

var _ ports.TokenCodec = (*Codec)(nil)

// NewCodec validates cfg and returns a Codec. Zero TTLs fall back to the
// defaults.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token: secret is required")
	}
	c := &Codec{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		userTTL:  cfg.UserTTL,
		staffTTL: cfg.StaffTTL,
		now:      time.Now,
	}
	if c.userTTL <= 0 {
		c.userTTL = defaultUserTTL
	}
	if c.staffTTL <= 0 {
		c.staffTTL = defaultStaffTTL
	}
	return c, nil
}

// TTL returns the lifetime of tokens minted for role.
func (c *Codec) TTL(role domain.Role) time.Duration {
	if role.Elevated() {
		return c.staffTTL
	}
	return c.userTTL
}

func (c *Codec) Issue(subjectID string, role domain.Role) (string, time.Time, error) {
	if subjectID == "" || !role.Valid() {
		return "", time.Time{}, fmt.Errorf("issue token: %w", domain.ErrTokenInvalid)
	}

	now := c.now().UTC()
	expiresAt := now.Add(c.TTL(role))
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (c *Codec) Verify(raw string) (*ports.TokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		// The signature is checked before the claims, so an expiry error
		// implies an authentic token.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrTokenInvalid)
	}

	out := &ports.TokenClaims{SubjectID: claims.Subject, Role: role}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
