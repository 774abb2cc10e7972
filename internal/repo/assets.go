package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assetdesk-backend/internal/store"
	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
)

// AssetRepository persists assets.
type AssetRepository struct {
	Base
}

func (r *AssetRepository) List(ctx context.Context) ([]models.Asset, error) {
	var rows []models.Asset
	if err := r.DB(ctx).Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (r *AssetRepository) Get(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	var row models.Asset
	if err := r.DB(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func (r *AssetRepository) Create(ctx context.Context, asset *models.Asset) (*models.Asset, error) {
	row := *asset
	if err := r.DB(ctx).Create(&row).Error; err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func (r *AssetRepository) Update(ctx context.Context, id uuid.UUID, patch store.AssetPatch) (*models.Asset, error) {
	if patch.IsEmpty() {
		return r.Get(ctx, id)
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if patch.AssetName != nil {
		updates["asset_name"] = *patch.AssetName
	}
	if patch.AssetType != nil {
		updates["asset_type"] = *patch.AssetType
	}
	if patch.SerialNumber != nil {
		updates["serial_number"] = *patch.SerialNumber
	}
	if patch.PurchaseDate != nil {
		updates["purchase_date"] = *patch.PurchaseDate
	}
	if patch.ClearPurchasePrice {
		updates["purchase_price"] = nil
	} else if patch.PurchasePrice != nil {
		updates["purchase_price"] = *patch.PurchasePrice
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.ClearAssignedTo {
		updates["assigned_to"] = nil
	} else if patch.AssignedTo != nil {
		updates["assigned_to"] = *patch.AssignedTo
	}

	res := r.DB(ctx).Model(&models.Asset{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *AssetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Asset{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
