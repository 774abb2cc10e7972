package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assetdesk-backend/internal/store"
	pkgAuth "github.com/angelmondragon/assetdesk-backend/pkg/auth"
	"github.com/angelmondragon/assetdesk-backend/pkg/auth/session"
	"github.com/angelmondragon/assetdesk-backend/pkg/config"
	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/assetdesk-backend/pkg/errors"
)

const (
	invalidCredentialsMessage = "Invalid email or password"
	invalidRefreshMessage     = "invalid or expired refresh token"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error)
	Logout(ctx context.Context, accessID string) error
	Me(ctx context.Context, adminID uuid.UUID) (*AuthUser, error)
	// EnsureAdmin creates or refreshes the configured administrator so the
	// stored hash always matches the configured password.
	EnsureAdmin(ctx context.Context, cfg config.AdminConfig) (*AuthUser, error)
}

type sessionManager interface {
	Start(ctx context.Context, adminID uuid.UUID) (*session.Session, error)
	Rotate(ctx context.Context, refreshToken string) (*session.Session, error)
	Revoke(ctx context.Context, accessID string) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
	VerifyDecoy(password string)
	NeedsRehash(encoded string) bool
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Admins         AdminRepository
	SessionManager sessionManager
	Hasher         passwordHasher
	JWTConfig      config.JWTConfig
	Timeout        time.Duration
	Now            func() time.Time
}

type service struct {
	admins  AdminRepository
	session sessionManager
	hasher  passwordHasher
	jwtCfg  config.JWTConfig
	timeout time.Duration
	now     func() time.Time
}

// NewService constructs the admin auth service.
func NewService(params ServiceParams) (Service, error) {
	if params.Admins == nil {
		return nil, fmt.Errorf("admin repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		admins:  params.Admins,
		session: params.SessionManager,
		hasher:  params.Hasher,
		jwtCfg:  params.JWTConfig,
		timeout: params.Timeout,
		now:     now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	admin, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.withTimeout(ctx, func(ctx context.Context) error {
		return s.admins.UpdateLastLogin(ctx, admin.ID, now)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	admin.LastLoginAt = &now

	sess, err := s.session.Start(ctx, admin.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}
	return s.issue(admin, sess, now)
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	sess, err := s.session.Rotate(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidRefreshMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate refresh token")
	}

	admin, err := s.findByID(ctx, sess.AdminID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = s.session.Revoke(ctx, sess.AccessID)
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidRefreshMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup admin")
	}
	return s.issue(admin, sess, s.now().UTC())
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Me(ctx context.Context, adminID uuid.UUID) (*AuthUser, error) {
	admin, err := s.findByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup admin")
	}
	return AuthUserFromModel(admin), nil
}

func (s *service) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) (*AuthUser, error) {
	if !cfg.ShouldSeed() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin email and password are required")
	}
	email := normalizeEmail(cfg.Email)
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = email
	}

	var existing *models.AdminUser
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		existing, err = s.admins.FindByEmail(ctx, email)
		return err
	})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup admin")
	}

	if existing != nil {
		if existing.Name == name && !s.hasher.NeedsRehash(existing.PasswordHash) {
			if ok, verr := s.hasher.Verify(cfg.Password, existing.PasswordHash); verr == nil && ok {
				return AuthUserFromModel(existing), nil
			}
		}
		hash, err := s.hasher.Hash(cfg.Password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash admin password")
		}
		if err := s.withTimeout(ctx, func(ctx context.Context) error {
			return s.admins.UpdateCredentials(ctx, existing.ID, name, hash)
		}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update admin")
		}
		existing.Name = name
		existing.PasswordHash = hash
		return AuthUserFromModel(existing), nil
	}

	hash, err := s.hasher.Hash(cfg.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash admin password")
	}
	admin := &models.AdminUser{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		Role:         enums.AdminRoleAdmin,
		PasswordHash: hash,
	}
	if err := s.withTimeout(ctx, func(ctx context.Context) error {
		return s.admins.Create(ctx, admin)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create admin")
	}
	return AuthUserFromModel(admin), nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.AdminUser, error) {
	input := normalizeEmail(email)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	var admin *models.AdminUser
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		admin, err = s.admins.FindByEmail(ctx, input)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.hasher.VerifyDecoy(password)
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup admin")
	}

	valid, err := s.hasher.Verify(password, admin.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return admin, nil
}

func (s *service) issue(admin *models.AdminUser, sess *session.Session, now time.Time) (*TokenResponse, error) {
	role := admin.Role
	if !role.IsValid() {
		role = enums.AdminRoleAdmin
	}
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		AdminID: admin.ID,
		Role:    role,
		JTI:     sess.AccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &TokenResponse{
		User:         AuthUserFromModel(admin),
		AccessToken:  accessToken,
		RefreshToken: sess.RefreshToken,
	}, nil
}

func (s *service) findByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	var admin *models.AdminUser
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		admin, err = s.admins.FindByID(ctx, id)
		return err
	})
	return admin, err
}

func (s *service) withTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := store.Bound(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
