package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assetdesk-backend/internal/store"
	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
)

// AssignmentRepository persists assignment history. Rows are never deleted.
type AssignmentRepository struct {
	Base
}

func (r *AssignmentRepository) List(ctx context.Context) ([]models.Assignment, error) {
	var rows []models.Assignment
	if err := r.DB(ctx).Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (r *AssignmentRepository) Get(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	var row models.Assignment
	if err := r.DB(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) (*models.Assignment, error) {
	row := *assignment
	if err := r.DB(ctx).Create(&row).Error; err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func (r *AssignmentRepository) Update(ctx context.Context, id uuid.UUID, patch store.AssignmentPatch) (*models.Assignment, error) {
	if patch.IsEmpty() {
		return r.Get(ctx, id)
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.ReturnedDate != nil {
		updates["returned_date"] = *patch.ReturnedDate
	}

	q := r.DB(ctx).Model(&models.Assignment{}).Where("id = ?", id)
	if patch.ExpectStatus != nil {
		q = q.Where("status = ?", *patch.ExpectStatus)
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		if patch.ExpectStatus == nil {
			return nil, store.ErrNotFound
		}
		if _, err := r.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, store.ErrConflict
	}
	return r.Get(ctx, id)
}
