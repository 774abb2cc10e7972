package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/assetdesk-backend/internal/store"
	"github.com/angelmondragon/assetdesk-backend/pkg/db"
	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
)

// AdminRepository persists console administrators. Lookups return
// store.ErrNotFound when no row matches.
type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error)
	Create(ctx context.Context, admin *models.AdminUser) error
	UpdateCredentials(ctx context.Context, id uuid.UUID, name, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Repository is the gorm-backed AdminRepository.
type Repository struct {
	db *gorm.DB
}

var _ AdminRepository = (*Repository)(nil)

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (r *Repository) Create(ctx context.Context, admin *models.AdminUser) error {
	return translate(r.db.WithContext(ctx).Create(admin).Error)
}

func (r *Repository) UpdateCredentials(ctx context.Context, id uuid.UUID, name, passwordHash string) error {
	res := r.db.WithContext(ctx).
		Model(&models.AdminUser{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":          name,
			"password_hash": passwordHash,
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// UpdateLastLogin refreshes the admin's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return translate(r.db.WithContext(ctx).
		Model(&models.AdminUser{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case db.IsUniqueViolation(err, ""):
		return store.ErrConflict
	default:
		return err
	}
}

// MemoryRepository keeps admins in process for the memory store driver.
type MemoryRepository struct {
	mu     sync.RWMutex
	admins map[uuid.UUID]models.AdminUser
}

var _ AdminRepository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{admins: make(map[uuid.UUID]models.AdminUser)}
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, admin := range r.admins {
		if strings.EqualFold(admin.Email, email) {
			out := admin
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *MemoryRepository) FindByID(_ context.Context, id uuid.UUID) (*models.AdminUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	admin, ok := r.admins[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &admin, nil
}

func (r *MemoryRepository) Create(_ context.Context, admin *models.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.admins[admin.ID]; exists {
		return store.ErrConflict
	}
	for _, existing := range r.admins {
		if strings.EqualFold(existing.Email, admin.Email) {
			return store.ErrConflict
		}
	}
	now := time.Now().UTC()
	admin.CreatedAt, admin.UpdatedAt = now, now
	r.admins[admin.ID] = *admin
	return nil
}

func (r *MemoryRepository) UpdateCredentials(_ context.Context, id uuid.UUID, name, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin, ok := r.admins[id]
	if !ok {
		return store.ErrNotFound
	}
	admin.Name = name
	admin.PasswordHash = passwordHash
	admin.UpdatedAt = time.Now().UTC()
	r.admins[id] = admin
	return nil
}

func (r *MemoryRepository) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin, ok := r.admins[id]
	if !ok {
		return store.ErrNotFound
	}
	admin.LastLoginAt = &at
	r.admins[id] = admin
	return nil
}
