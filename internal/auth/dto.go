package auth

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthUser is the signed-in administrator as shown by the console.
type AuthUser struct {
	ID    uuid.UUID       `json:"id"`
	Email string          `json:"email"`
	Name  string          `json:"name"`
	Role  enums.AdminRole `json:"role"`
}

func AuthUserFromModel(m *models.AdminUser) *AuthUser {
	if m == nil {
		return nil
	}
	return &AuthUser{
		ID:    m.ID,
		Email: m.Email,
		Name:  m.Name,
		Role:  m.Role,
	}
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	User         *AuthUser `json:"user"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
}
