package assignments

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
	"github.com/angelmondragon/assetdesk-backend/pkg/types"
)

// AssignmentDTO is the wire shape of an assignment history row.
type AssignmentDTO struct {
	ID           uuid.UUID              `json:"id"`
	AssetID      uuid.UUID              `json:"assetId"`
	EmployeeID   uuid.UUID              `json:"employeeId"`
	AssetName    string                 `json:"assetName"`
	EmployeeName string                 `json:"employeeName"`
	AssignedDate types.Date             `json:"assignedDate"`
	ReturnedDate *types.Date            `json:"returnedDate"`
	Status       enums.AssignmentStatus `json:"status"`
	CreatedAt    time.Time              `json:"createdAt"`
}

func FromModel(a models.Assignment) AssignmentDTO {
	return AssignmentDTO{
		ID:           a.ID,
		AssetID:      a.AssetID,
		EmployeeID:   a.EmployeeID,
		AssetName:    a.AssetName,
		EmployeeName: a.EmployeeName,
		AssignedDate: a.AssignedDate,
		ReturnedDate: a.ReturnedDate,
		Status:       a.Status,
		CreatedAt:    a.CreatedAt,
	}
}

// ListParams filters the assignment history.
type ListParams struct {
	Query      string
	Status     *enums.AssignmentStatus
	AssetID    *uuid.UUID
	EmployeeID *uuid.UUID
	Limit      int
	Cursor     string
}

type ListResult struct {
	Items  []AssignmentDTO `json:"items"`
	Cursor string          `json:"cursor"`
	Total  int             `json:"total"`
}
