package employees

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assetdesk-backend/internal/store"
	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/assetdesk-backend/pkg/errors"
	"github.com/angelmondragon/assetdesk-backend/pkg/pagination"
)

const (
	entity      = "employee"
	msgEmailDup = "an employee with this email already exists"
)

// Service exposes the employee directory.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*EmployeeDTO, error)
	Create(ctx context.Context, input CreateInput) (*EmployeeDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*EmployeeDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Deleter runs the guarded employee delete.
type Deleter interface {
	DeleteEmployee(ctx context.Context, employeeID uuid.UUID) error
}

type ServiceParams struct {
	Store   store.Store
	Deleter Deleter
	NewID   func() uuid.UUID
	Timeout time.Duration
}

type service struct {
	store   store.Store
	deleter Deleter
	newID   func() uuid.UUID
	timeout time.Duration
}

// NewService wires employee dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "employee store required")
	}
	if params.Deleter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "employee deleter required")
	}
	newID := params.NewID
	if newID == nil {
		newID = uuid.New
	}
	return &service{
		store:   params.Store,
		deleter: params.Deleter,
		newID:   newID,
		timeout: params.Timeout,
	}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	ctx, cancel := store.Bound(ctx, s.timeout)
	defer cancel()

	rows, err := s.store.Employees().List(ctx)
	if err != nil {
		return nil, store.MapError(err, entity, "")
	}

	query := strings.ToLower(strings.TrimSpace(params.Query))
	filtered := make([]models.Employee, 0, len(rows))
	for _, row := range rows {
		if params.Status != nil && row.Status != *params.Status {
			continue
		}
		if query != "" && !matches(row, query) {
			continue
		}
		filtered = append(filtered, row)
	}

	pagination.SortNewestFirst(filtered, cursorOf)
	page, next, err := pagination.Page(filtered, pagination.Params{Limit: params.Limit, Cursor: params.Cursor}, cursorOf)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	items := make([]EmployeeDTO, 0, len(page))
	for _, row := range page {
		items = append(items, FromModel(row))
	}
	return &ListResult{Items: items, Cursor: next, Total: len(filtered)}, nil
}

func matches(e models.Employee, query string) bool {
	for _, field := range []string{e.Name, e.Email, e.Department, e.Role} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func cursorOf(e models.Employee) pagination.Cursor {
	return pagination.Cursor{CreatedAt: e.CreatedAt, ID: e.ID}
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*EmployeeDTO, error) {
	ctx, cancel := store.Bound(ctx, s.timeout)
	defer cancel()

	row, err := s.store.Employees().Get(ctx, id)
	if err != nil {
		return nil, store.MapError(err, entity, "")
	}
	dto := FromModel(*row)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*EmployeeDTO, error) {
	employee := models.Employee{
		ID:         s.newID(),
		Name:       strings.TrimSpace(input.Name),
		Email:      normalizeEmail(input.Email),
		Department: strings.TrimSpace(input.Department),
		Role:       strings.TrimSpace(input.Role),
		Status:     enums.EmployeeStatusActive,
	}
	if input.Status != nil {
		employee.Status = *input.Status
	}
	if err := validate(employee); err != nil {
		return nil, err
	}

	ctx, cancel := store.Bound(ctx, s.timeout)
	defer cancel()

	created, err := s.store.Employees().Create(ctx, &employee)
	if err != nil {
		return nil, store.MapError(err, entity, msgEmailDup)
	}
	dto := FromModel(*created)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*EmployeeDTO, error) {
	patch := store.EmployeePatch{
		Name:       trimmed(input.Name),
		Department: trimmed(input.Department),
		Role:       trimmed(input.Role),
		Status:     input.Status,
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		patch.Email = &email
	}
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"name", patch.Name},
		{"email", patch.Email},
		{"department", patch.Department},
		{"role", patch.Role},
	} {
		if f.value != nil && *f.value == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, f.name+" cannot be empty")
		}
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid employee status")
	}

	ctx, cancel := store.Bound(ctx, s.timeout)
	defer cancel()

	updated, err := s.store.Employees().Update(ctx, id, patch)
	if err != nil {
		return nil, store.MapError(err, entity, msgEmailDup)
	}
	dto := FromModel(*updated)
	return &dto, nil
}

// Delete refuses while any asset is still assigned to the employee.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleter.DeleteEmployee(ctx, id)
}

func validate(e models.Employee) error {
	switch {
	case e.Name == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case e.Email == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	case e.Department == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "department is required")
	case e.Role == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "role is required")
	case !e.Status.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid employee status")
	}
	return nil
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	out := strings.TrimSpace(*value)
	return &out
}
