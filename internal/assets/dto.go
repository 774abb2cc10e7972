package assets

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/assetdesk-backend/internal/assignments"
	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
	"github.com/angelmondragon/assetdesk-backend/pkg/types"
)

// AssetDTO is the wire shape of an asset.
type AssetDTO struct {
	ID            uuid.UUID         `json:"id"`
	AssetName     string            `json:"assetName"`
	AssetType     string            `json:"assetType"`
	SerialNumber  string            `json:"serialNumber"`
	PurchaseDate  types.Date        `json:"purchaseDate"`
	PurchasePrice *decimal.Decimal  `json:"purchasePrice"`
	Status        enums.AssetStatus `json:"status"`
	AssignedTo    *uuid.UUID        `json:"assignedTo"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

func FromModel(a models.Asset) AssetDTO {
	return AssetDTO{
		ID:            a.ID,
		AssetName:     a.AssetName,
		AssetType:     a.AssetType,
		SerialNumber:  a.SerialNumber,
		PurchaseDate:  a.PurchaseDate,
		PurchasePrice: a.PurchasePrice,
		Status:        a.Status,
		AssignedTo:    a.AssignedTo,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// CreateInput holds the validated payload to create an asset. New assets are
// always Available.
type CreateInput struct {
	AssetName     string
	AssetType     string
	SerialNumber  string
	PurchaseDate  types.Date
	PurchasePrice *decimal.Decimal
}

// UpdateInput holds optional edits. Status accepts Available or Repair only.
type UpdateInput struct {
	AssetName          *string
	AssetType          *string
	SerialNumber       *string
	PurchaseDate       *types.Date
	PurchasePrice      *decimal.Decimal
	ClearPurchasePrice bool
	Status             *enums.AssetStatus
}

type ListParams struct {
	Query  string
	Status *enums.AssetStatus
	Limit  int
	Cursor string
}

type ListResult struct {
	Items  []AssetDTO `json:"items"`
	Cursor string     `json:"cursor"`
	Total  int        `json:"total"`
}

// AssignResult is returned by the assign action.
type AssignResult struct {
	Asset      AssetDTO                  `json:"asset"`
	Assignment assignments.AssignmentDTO `json:"assignment"`
}

// ReturnResult is returned by the return action.
type ReturnResult struct {
	Asset        AssetDTO                  `json:"asset"`
	ReturnedDate types.Date                `json:"returnedDate"`
	Assignment   assignments.AssignmentDTO `json:"assignment"`
}
