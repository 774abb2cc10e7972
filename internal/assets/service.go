package assets

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assetdesk-backend/internal/assignments"
	"github.com/angelmondragon/assetdesk-backend/internal/lifecycle"
	"github.com/angelmondragon/assetdesk-backend/internal/store"
	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/assetdesk-backend/pkg/errors"
	"github.com/angelmondragon/assetdesk-backend/pkg/pagination"
)

const (
	entity           = "asset"
	msgSerialDup     = "an asset with this serial number already exists"
	msgStatusLocked  = "Cannot change the status of an assigned asset. Please return the asset first."
	msgManualStatus  = "status can only be set to Available or Repair"
	reasonStatusLock = "asset is assigned"
)

// Service exposes inventory management and the assignment actions.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*AssetDTO, error)
	Create(ctx context.Context, input CreateInput) (*AssetDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*AssetDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Assign(ctx context.Context, assetID, employeeID uuid.UUID) (*AssignResult, error)
	Return(ctx context.Context, assetID, assignmentID uuid.UUID) (*ReturnResult, error)
	Export(ctx context.Context, w io.Writer) error
}

// Lifecycle is the subset of the lifecycle engine the asset screens drive.
type Lifecycle interface {
	Assign(ctx context.Context, assetID, employeeID uuid.UUID) (*lifecycle.AssignResult, error)
	Return(ctx context.Context, assetID, assignmentID uuid.UUID) (*lifecycle.ReturnResult, error)
	DeleteAsset(ctx context.Context, assetID uuid.UUID) error
}

type ServiceParams struct {
	Store     store.Store
	Lifecycle Lifecycle
	NewID     func() uuid.UUID
	Timeout   time.Duration
}

type service struct {
	store     store.Store
	lifecycle Lifecycle
	newID     func() uuid.UUID
	timeout   time.Duration
}

// NewService wires asset dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "asset store required")
	}
	if params.Lifecycle == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "lifecycle engine required")
	}
	svc := &service{
		store:     params.Store,
		lifecycle: params.Lifecycle,
		newID:     params.NewID,
		timeout:   params.Timeout,
	}
	if svc.newID == nil {
		svc.newID = uuid.New
	}
	return svc, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	ctx, cancel := store.Bound(ctx, s.timeout)
	defer cancel()

	rows, err := s.store.Assets().List(ctx)
	if err != nil {
		return nil, store.MapError(err, entity, "")
	}

	query := strings.ToLower(strings.TrimSpace(params.Query))
	filtered := make([]models.Asset, 0, len(rows))
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

	items := make([]AssetDTO, 0, len(page))
	for _, row := range page {
		items = append(items, FromModel(row))
	}
	return &ListResult{Items: items, Cursor: next, Total: len(filtered)}, nil
}

func matches(a models.Asset, query string) bool {
	for _, field := range []string{a.AssetName, a.AssetType, a.SerialNumber, a.Status.String()} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func cursorOf(a models.Asset) pagination.Cursor {
	return pagination.Cursor{CreatedAt: a.CreatedAt, ID: a.ID}
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*AssetDTO, error) {
	ctx, cancel := store.Bound(ctx, s.timeout)
	defer cancel()

	row, err := s.store.Assets().Get(ctx, id)
	if err != nil {
		return nil, store.MapError(err, entity, "")
	}
	dto := FromModel(*row)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*AssetDTO, error) {
	asset := models.Asset{
		ID:            s.newID(),
		AssetName:     strings.TrimSpace(input.AssetName),
		AssetType:     strings.TrimSpace(input.AssetType),
		SerialNumber:  strings.TrimSpace(input.SerialNumber),
		PurchaseDate:  input.PurchaseDate,
		PurchasePrice: input.PurchasePrice,
		Status:        enums.AssetStatusAvailable,
	}
	if err := validate(asset); err != nil {
		return nil, err
	}

	ctx, cancel := store.Bound(ctx, s.timeout)
	defer cancel()

	created, err := s.store.Assets().Create(ctx, &asset)
	if err != nil {
		return nil, store.MapError(err, entity, msgSerialDup)
	}
	dto := FromModel(*created)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*AssetDTO, error) {
	patch, err := s.buildPatch(input)
	if err != nil {
		return nil, err
	}

	ctx, cancel := store.Bound(ctx, s.timeout)
	defer cancel()

	var updated *models.Asset
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		current, err := tx.Assets().Get(ctx, id)
		if err != nil {
			return err
		}
		if patch.Status != nil && current.Status == enums.AssetStatusAssigned && *patch.Status != current.Status {
			return pkgerrors.New(pkgerrors.CodeStateConflict, msgStatusLocked).
				WithDetails(lifecycle.StateDetails{Reason: reasonStatusLock})
		}
		updated, err = tx.Assets().Update(ctx, id, patch)
		return err
	})
	if err != nil {
		return nil, store.MapError(err, entity, msgSerialDup)
	}
	dto := FromModel(*updated)
	return &dto, nil
}

func (s *service) buildPatch(input UpdateInput) (store.AssetPatch, error) {
	patch := store.AssetPatch{
		PurchaseDate:       input.PurchaseDate,
		PurchasePrice:      input.PurchasePrice,
		ClearPurchasePrice: input.ClearPurchasePrice,
		Status:             input.Status,
	}
	for _, f := range []struct {
		name string
		in   *string
		out  **string
	}{
		{"assetName", input.AssetName, &patch.AssetName},
		{"assetType", input.AssetType, &patch.AssetType},
		{"serialNumber", input.SerialNumber, &patch.SerialNumber},
	} {
		if f.in == nil {
			continue
		}
		value := strings.TrimSpace(*f.in)
		if value == "" {
			return patch, pkgerrors.New(pkgerrors.CodeValidation, f.name+" cannot be empty")
		}
		*f.out = &value
	}
	if patch.Status != nil && !patch.Status.IsManual() {
		return patch, pkgerrors.New(pkgerrors.CodeValidation, msgManualStatus)
	}
	if patch.PurchaseDate != nil && patch.PurchaseDate.IsZero() {
		return patch, pkgerrors.New(pkgerrors.CodeValidation, "purchaseDate cannot be empty")
	}
	if patch.PurchasePrice != nil && patch.PurchasePrice.IsNegative() {
		return patch, pkgerrors.New(pkgerrors.CodeValidation, "purchasePrice cannot be negative")
	}
	return patch, nil
}

// Delete refuses while the asset is assigned.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.lifecycle.DeleteAsset(ctx, id)
}

func (s *service) Assign(ctx context.Context, assetID, employeeID uuid.UUID) (*AssignResult, error) {
	res, err := s.lifecycle.Assign(ctx, assetID, employeeID)
	if err != nil {
		return nil, err
	}
	return &AssignResult{
		Asset:      FromModel(res.Asset),
		Assignment: assignments.FromModel(res.Assignment),
	}, nil
}

func (s *service) Return(ctx context.Context, assetID, assignmentID uuid.UUID) (*ReturnResult, error) {
	res, err := s.lifecycle.Return(ctx, assetID, assignmentID)
	if err != nil {
		return nil, err
	}
	return &ReturnResult{
		Asset:        FromModel(res.Asset),
		ReturnedDate: res.ReturnedDate,
		Assignment:   assignments.FromModel(res.Assignment),
	}, nil
}

func validate(a models.Asset) error {
	switch {
	case a.AssetName == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "assetName is required")
	case a.AssetType == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "assetType is required")
	case a.SerialNumber == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "serialNumber is required")
	case a.PurchaseDate.IsZero():
		return pkgerrors.New(pkgerrors.CodeValidation, "purchaseDate is required")
	case a.PurchasePrice != nil && a.PurchasePrice.IsNegative():
		return pkgerrors.New(pkgerrors.CodeValidation, "purchasePrice cannot be negative")
	}
	return nil
}
