package employees

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
)

// EmployeeDTO is the wire shape of an employee.
type EmployeeDTO struct {
	ID         uuid.UUID            `json:"id"`
	Name       string               `json:"name"`
	Email      string               `json:"email"`
	Department string               `json:"department"`
	Role       string               `json:"role"`
	Status     enums.EmployeeStatus `json:"status"`
	CreatedAt  time.Time            `json:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt"`
}

func FromModel(e models.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:         e.ID,
		Name:       e.Name,
		Email:      e.Email,
		Department: e.Department,
		Role:       e.Role,
		Status:     e.Status,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

// CreateInput holds the validated payload to create an employee.
type CreateInput struct {
	Name       string
	Email      string
	Department string
	Role       string
	Status     *enums.EmployeeStatus
}

// UpdateInput holds optional mutation values; nil fields are untouched.
type UpdateInput struct {
	Name       *string
	Email      *string
	Department *string
	Role       *string
	Status     *enums.EmployeeStatus
}

// ListParams filters and pages the employee directory.
type ListParams struct {
	Query  string
	Status *enums.EmployeeStatus
	Limit  int
	Cursor string
}

// ListResult wraps a page of employees and the cursor for the next page.
type ListResult struct {
	Items  []EmployeeDTO `json:"items"`
	Cursor string        `json:"cursor"`
	Total  int           `json:"total"`
}
