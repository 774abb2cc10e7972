package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
	"github.com/angelmondragon/assetdesk-backend/pkg/types"
)

// Asset is a tracked piece of inventory. AssignedTo is set exactly when
// Status is Assigned.
type Asset struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	AssetName     string            `gorm:"column:asset_name;not null"`
	AssetType     string            `gorm:"column:asset_type;not null"`
	SerialNumber  string            `gorm:"column:serial_number;not null;uniqueIndex"`
	PurchaseDate  types.Date        `gorm:"column:purchase_date;type:date;not null"`
	PurchasePrice *decimal.Decimal  `gorm:"column:purchase_price;type:numeric(12,2)"`
	Status        enums.AssetStatus `gorm:"column:status;type:asset_status;not null;default:'Available'"`
	AssignedTo    *uuid.UUID        `gorm:"column:assigned_to;type:uuid"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Asset) TableName() string { return "assets" }

// IsAssignedTo reports whether the asset is currently held by employeeID.
func (a Asset) IsAssignedTo(employeeID uuid.UUID) bool {
	return a.AssignedTo != nil && *a.AssignedTo == employeeID
}
