package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
)

// Employee is a person that assets can be assigned to.
type Employee struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Name       string               `gorm:"column:name;not null"`
	Email      string               `gorm:"column:email;not null;uniqueIndex"`
	Department string               `gorm:"column:department;not null"`
	Role       string               `gorm:"column:role;not null"`
	Status     enums.EmployeeStatus `gorm:"column:status;type:employee_status;not null;default:'Active'"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (Employee) TableName() string { return "employees" }
