// Package store defines the persistence contract the lifecycle engine and the
// admin services depend on. Implementations live in internal/repo (gorm) and
// internal/store/memory.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
	"github.com/angelmondragon/assetdesk-backend/pkg/types"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when a write violates a uniqueness rule.
	ErrConflict = errors.New("store: conflict")
)

type Employees interface {
	List(ctx context.Context) ([]models.Employee, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	Create(ctx context.Context, employee *models.Employee) (*models.Employee, error)
	Update(ctx context.Context, id uuid.UUID, patch EmployeePatch) (*models.Employee, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Assets interface {
	List(ctx context.Context) ([]models.Asset, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Asset, error)
	Create(ctx context.Context, asset *models.Asset) (*models.Asset, error)
	Update(ctx context.Context, id uuid.UUID, patch AssetPatch) (*models.Asset, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Assignments has no Delete: assignment history is never removed.
type Assignments interface {
	List(ctx context.Context) ([]models.Assignment, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) (*models.Assignment, error)
	Update(ctx context.Context, id uuid.UUID, patch AssignmentPatch) (*models.Assignment, error)
}

// Store groups the entity collections behind one transactional boundary.
type Store interface {
	Employees() Employees
	Assets() Assets
	Assignments() Assignments
	// WithTx runs fn against a Store whose writes commit together or not at
	// all. Calling WithTx on the Store handed to fn runs inline.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// EmployeePatch carries a partial update; nil fields are left untouched.
type EmployeePatch struct {
	Name       *string
	Email      *string
	Department *string
	Role       *string
	Status     *enums.EmployeeStatus
}

func (p EmployeePatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Department == nil && p.Role == nil && p.Status == nil
}

// Apply copies the set fields onto e.
func (p EmployeePatch) Apply(e *models.Employee) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Email != nil {
		e.Email = *p.Email
	}
	if p.Department != nil {
		e.Department = *p.Department
	}
	if p.Role != nil {
		e.Role = *p.Role
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
}

// AssetPatch carries a partial update. AssignedTo and the Assigned status are
// reserved for the lifecycle engine.
type AssetPatch struct {
	AssetName          *string
	AssetType          *string
	SerialNumber       *string
	PurchaseDate       *types.Date
	PurchasePrice      *decimal.Decimal
	ClearPurchasePrice bool
	Status             *enums.AssetStatus
	AssignedTo         *uuid.UUID
	ClearAssignedTo    bool
}

func (p AssetPatch) IsEmpty() bool {
	return p.AssetName == nil && p.AssetType == nil && p.SerialNumber == nil &&
		p.PurchaseDate == nil && p.PurchasePrice == nil && !p.ClearPurchasePrice &&
		p.Status == nil && p.AssignedTo == nil && !p.ClearAssignedTo
}

// Apply copies the set fields onto a.
func (p AssetPatch) Apply(a *models.Asset) {
	if p.AssetName != nil {
		a.AssetName = *p.AssetName
	}
	if p.AssetType != nil {
		a.AssetType = *p.AssetType
	}
	if p.SerialNumber != nil {
		a.SerialNumber = *p.SerialNumber
	}
	if p.PurchaseDate != nil {
		a.PurchaseDate = *p.PurchaseDate
	}
	if p.ClearPurchasePrice {
		a.PurchasePrice = nil
	} else if p.PurchasePrice != nil {
		price := *p.PurchasePrice
		a.PurchasePrice = &price
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.ClearAssignedTo {
		a.AssignedTo = nil
	} else if p.AssignedTo != nil {
		id := *p.AssignedTo
		a.AssignedTo = &id
	}
}

// AssignmentPatch carries the single mutation an assignment goes through.
type AssignmentPatch struct {
	Status       *enums.AssignmentStatus
	ReturnedDate *types.Date
	// ExpectStatus makes the update conditional on the stored status. A
	// mismatch fails with ErrConflict and writes nothing.
	ExpectStatus *enums.AssignmentStatus
}

func (p AssignmentPatch) IsEmpty() bool {
	return p.Status == nil && p.ReturnedDate == nil
}

// Apply copies the set fields onto a.
func (p AssignmentPatch) Apply(a *models.Assignment) {
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.ReturnedDate != nil {
		d := *p.ReturnedDate
		a.ReturnedDate = &d
	}
}
