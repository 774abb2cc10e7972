package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assetdesk-backend/internal/store"
	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
)

// EmployeeRepository persists employees.
type EmployeeRepository struct {
	Base
}

func (r *EmployeeRepository) List(ctx context.Context) ([]models.Employee, error) {
	var rows []models.Employee
	if err := r.DB(ctx).Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (r *EmployeeRepository) Get(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	var row models.Employee
	if err := r.DB(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	row := *employee
	if err := r.DB(ctx).Create(&row).Error; err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, id uuid.UUID, patch store.EmployeePatch) (*models.Employee, error) {
	if patch.IsEmpty() {
		return r.Get(ctx, id)
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Email != nil {
		updates["email"] = *patch.Email
	}
	if patch.Department != nil {
		updates["department"] = *patch.Department
	}
	if patch.Role != nil {
		updates["role"] = *patch.Role
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}

	res := r.DB(ctx).Model(&models.Employee{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *EmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Employee{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
