package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
	"github.com/angelmondragon/assetdesk-backend/pkg/types"
)

// Assignment records one asset being held by one employee. AssetName and
// EmployeeName are snapshots taken when the assignment was created.
type Assignment struct {
	ID           uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	AssetID      uuid.UUID              `gorm:"column:asset_id;type:uuid;not null;index"`
	EmployeeID   uuid.UUID              `gorm:"column:employee_id;type:uuid;not null;index"`
	AssetName    string                 `gorm:"column:asset_name;not null"`
	EmployeeName string                 `gorm:"column:employee_name;not null"`
	AssignedDate types.Date             `gorm:"column:assigned_date;type:date;not null"`
	ReturnedDate *types.Date            `gorm:"column:returned_date;type:date"`
	Status       enums.AssignmentStatus `gorm:"column:status;type:assignment_status;not null;default:'Active'"`
	CreatedAt    time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (Assignment) TableName() string { return "assignments" }

func (a Assignment) IsActive() bool {
	return a.Status == enums.AssignmentStatusActive
}
