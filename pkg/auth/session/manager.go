package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/assetdesk-backend/pkg/config"
	redisclient "github.com/angelmondragon/assetdesk-backend/pkg/redis"
)

const (
	refreshSecretBytes = 32
	tokenSeparator     = "."
	valueSeparator     = "|"
)

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	AccessSessionKey(accessID string) string
}

// Session ties an access token id (the JWT jti) to the admin it was issued for.
// RefreshToken is "<accessID>.<secret>"; only the secret is stored.
type Session struct {
	AccessID     string
	AdminID      uuid.UUID
	RefreshToken string
}

// Manager handles refresh token creation, storage, and rotation.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive")
	}
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	if ttl <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}

	return &Manager{
		store: client,
		keyer: client,
		ttl:   ttl,
	}, nil
}

// Start opens a session for adminID under a fresh access id.
func (m *Manager) Start(ctx context.Context, adminID uuid.UUID) (*Session, error) {
	if adminID == uuid.Nil {
		return nil, fmt.Errorf("admin id is required")
	}
	return m.open(ctx, NewAccessID(), adminID)
}

func (m *Manager) open(ctx context.Context, accessID string, adminID uuid.UUID) (*Session, error) {
	secret, err := generateSecret()
	if err != nil {
		return nil, err
	}
	value := adminID.String() + valueSeparator + secret
	if err := m.store.Set(ctx, m.keyer.AccessSessionKey(accessID), value, m.ttl); err != nil {
		return nil, err
	}
	return &Session{
		AccessID:     accessID,
		AdminID:      adminID,
		RefreshToken: accessID + tokenSeparator + secret,
	}, nil
}

// Rotate validates the refresh token, invalidates its session, and opens a
// new one for the same admin.
func (m *Manager) Rotate(ctx context.Context, refreshToken string) (*Session, error) {
	accessID, secret, ok := strings.Cut(strings.TrimSpace(refreshToken), tokenSeparator)
	if !ok || accessID == "" || secret == "" {
		return nil, ErrInvalidRefreshToken
	}

	key := m.keyer.AccessSessionKey(accessID)
	stored, err := m.store.Get(ctx, key)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	rawAdmin, storedSecret, ok := strings.Cut(stored, valueSeparator)
	if !ok {
		return nil, ErrInvalidRefreshToken
	}
	if subtle.ConstantTimeCompare([]byte(storedSecret), []byte(secret)) != 1 {
		return nil, ErrInvalidRefreshToken
	}
	adminID, err := uuid.Parse(rawAdmin)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	next, err := m.open(ctx, NewAccessID(), adminID)
	if err != nil {
		return nil, err
	}
	if err := m.store.Del(ctx, key); err != nil {
		return nil, err
	}
	return next, nil
}

// Revoke deletes the refresh mapping tied to the access identifier.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.store.Del(ctx, m.keyer.AccessSessionKey(accessID))
}

// HasSession reports whether the provided access ID still has an active refresh session.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, fmt.Errorf("access id is required")
	}
	if _, err := m.store.Get(ctx, m.keyer.AccessSessionKey(accessID)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// NewAccessID produces the identifier used as the JWT jti and Redis key.
func NewAccessID() string {
	return uuid.NewString()
}

func generateSecret() (string, error) {
	buf := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func wrapNotFound(err error) error {
	if errors.Is(err, redislib.Nil) {
		return ErrInvalidRefreshToken
	}
	return err
}
