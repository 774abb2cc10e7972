package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/assetdesk-backend/api/responses"
	"github.com/angelmondragon/assetdesk-backend/api/validators"
	"github.com/angelmondragon/assetdesk-backend/internal/assets"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/assetdesk-backend/pkg/errors"
	"github.com/angelmondragon/assetdesk-backend/pkg/logger"
	"github.com/angelmondragon/assetdesk-backend/pkg/types"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type assetCreateRequest struct {
	AssetName     string           `json:"assetName" validate:"required,max=200"`
	AssetType     string           `json:"assetType" validate:"required,max=100"`
	SerialNumber  string           `json:"serialNumber" validate:"required,max=200"`
	PurchaseDate  types.Date       `json:"purchaseDate"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice"`
}

func (r assetCreateRequest) toInput() assets.CreateInput {
	return assets.CreateInput{
		AssetName:     r.AssetName,
		AssetType:     r.AssetType,
		SerialNumber:  r.SerialNumber,
		PurchaseDate:  r.PurchaseDate,
		PurchasePrice: r.PurchasePrice,
	}
}

// assetUpdateRequest has no assignedTo: that field only moves through assign/return.
type assetUpdateRequest struct {
	AssetName     *string                         `json:"assetName" validate:"omitempty,max=200"`
	AssetType     *string                         `json:"assetType" validate:"omitempty,max=100"`
	SerialNumber  *string                         `json:"serialNumber" validate:"omitempty,max=200"`
	PurchaseDate  *types.Date                     `json:"purchaseDate"`
	PurchasePrice types.Optional[decimal.Decimal] `json:"purchasePrice"`
	Status        *string                         `json:"status" validate:"omitempty,oneof=Available Repair"`
}

func (r assetUpdateRequest) toInput() assets.UpdateInput {
	input := assets.UpdateInput{
		AssetName:          r.AssetName,
		AssetType:          r.AssetType,
		SerialNumber:       r.SerialNumber,
		PurchaseDate:       r.PurchaseDate,
		PurchasePrice:      r.PurchasePrice.Value,
		ClearPurchasePrice: r.PurchasePrice.IsNull(),
	}
	if r.Status != nil {
		status := enums.AssetStatus(*r.Status)
		input.Status = &status
	}
	return input
}

type assignRequest struct {
	EmployeeID string `json:"employeeId" validate:"required,uuid"`
}

type returnRequest struct {
	AssignmentID string `json:"assignmentId" validate:"required,uuid"`
}

func AssetsList(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := parseListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := validators.ParseQueryEnum(r, "status", enums.ParseAssetStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), assets.ListParams{
			Query:  query.Query,
			Status: status,
			Limit:  query.Limit,
			Cursor: query.Cursor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AssetGet(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		asset, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}

func AssetCreate(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body assetCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		asset, err := svc.Create(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, asset)
	}
}

func AssetUpdate(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body assetUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		asset, err := svc.Update(r.Context(), id, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}

// AssetDelete refuses while the asset is assigned.
func AssetDelete(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func AssetAssign(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assetID, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body assignRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		employeeID, err := uuid.Parse(strings.TrimSpace(body.EmployeeID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid employeeId"))
			return
		}

		result, err := svc.Assign(r.Context(), assetID, employeeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AssetReturn(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assetID, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body returnRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		assignmentID, err := uuid.Parse(strings.TrimSpace(body.AssignmentID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid assignmentId"))
			return
		}

		result, err := svc.Return(r.Context(), assetID, assignmentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AssetsExport streams the inventory workbook. The file is built in memory
// first so a failure still produces a JSON error.
func AssetsExport(svc assets.Service, logg *logger.Logger, now func() time.Time) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := svc.Export(r.Context(), &buf); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filename := fmt.Sprintf("inventory-%s.xlsx", now().UTC().Format("2006-01-02"))
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}
