package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/blogcms/cms-api/internal/api/metrics"
	"github.com/blogcms/cms-api/internal/core/domain"
	"github.com/blogcms/cms-api/internal/core/ports"
)

// AuthService implements registration, login and staff management over the
// two identity stores.
type AuthService struct {
	users ports.IdentityRepository
	staff ports.IdentityRepository
	codec ports.TokenCodec
	log   zerolog.Logger
	now   func() time.Time
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(users, staff ports.IdentityRepository, codec ports.TokenCodec, log zerolog.Logger) *AuthService {
	return &AuthService{
		users: users,
		staff: staff,
		codec: codec,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a regular account.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error) {
	identity, err := s.newIdentity(in.DisplayName, "", in.Email, in.Password, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, identity)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created, nil
}

// Login authenticates a regular account by email.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.login(ctx, s.users, "user", email, password)
}

// StaffLogin authenticates a staff account by username or email.
func (s *AuthService) StaffLogin(ctx context.Context, login, password string) (*ports.AuthResult, error) {
	return s.login(ctx, s.staff, "staff", login, password)
}

func (s *AuthService) login(ctx context.Context, repo ports.IdentityRepository, class, login, password string) (*ports.AuthResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues(class, "failed").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	identity, err := repo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			metrics.LoginsTotal.WithLabelValues(class, "failed").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues(class, "failed").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.codec.Issue(identity.ID, identity.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues(class, "ok").Inc()
	s.log.Info().Str("identity_id", identity.ID).Str("role", identity.Role.String()).Msg("login")

	return &ports.AuthResult{Token: token, ExpiresAt: expiresAt, Identity: identity}, nil
}

// CreateStaff creates an elevated account. Admins may only create editors;
// superadmins may create any staff role. A nil CreatedBy is trusted (CLI).
func (s *AuthService) CreateStaff(ctx context.Context, in ports.CreateStaffInput) (*domain.Identity, error) {
	if !in.Role.Elevated() {
		return nil, domain.ErrInvalidRole
	}
	if creator := in.CreatedBy; creator != nil {
		switch creator.Role {
		case domain.RoleSuperAdmin:
		case domain.RoleAdmin:
			if in.Role != domain.RoleEditor {
				return nil, &domain.ForbiddenError{Role: creator.Role, Allowed: []domain.Role{domain.RoleSuperAdmin}}
			}
		default:
			return nil, &domain.ForbiddenError{
				Role:    creator.Role,
				Allowed: []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin},
			}
		}
	}

	identity, err := s.newIdentity(in.DisplayName, in.Username, in.Email, in.Password, in.Role)
	if err != nil {
		return nil, err
	}

	created, err := s.staff.Create(ctx, identity)
	if err != nil {
		return nil, err
	}

	ev := s.log.Info().Str("staff_id", created.ID).Str("role", created.Role.String())
	if in.CreatedBy != nil {
		ev = ev.Str("created_by", in.CreatedBy.ID)
	}
	ev.Msg("staff account created")
	return created, nil
}

// ChangeStaffRole moves a staff account between elevated roles. Demoting to
// user is not possible here since regular accounts live in another store.
func (s *AuthService) ChangeStaffRole(ctx context.Context, id string, role domain.Role) (*domain.Identity, error) {
	if !role.Elevated() {
		return nil, domain.ErrInvalidRole
	}

	updated, err := s.staff.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("staff_id", id).Str("role", role.String()).Msg("staff role changed")
	return updated, nil
}

// Profile loads the stored record behind p.
func (s *AuthService) Profile(ctx context.Context, p domain.Principal) (*domain.Identity, error) {
	repo := s.users
	if p.Role.Elevated() {
		repo = s.staff
	}
	return repo.FindByID(ctx, p.ID)
}

func (s *AuthService) newIdentity(name, username, email, password string, role domain.Role) (*domain.Identity, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", domain.ErrInvalidAccount)
	}
	if len(password) < domain.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidAccount, domain.MinPasswordLength)
	}
	// bcrypt only hashes the first 72 bytes and refuses longer input.
	if len(password) > 72 {
		return nil, fmt.Errorf("%w: password must be at most 72 bytes", domain.ErrInvalidAccount)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	return &domain.Identity{
		DisplayName:  name,
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
