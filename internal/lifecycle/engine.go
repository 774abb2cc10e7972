// Package lifecycle owns the asset assignment state machine and the
// referential guards that protect deletes.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assetdesk-backend/internal/store"
	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/assetdesk-backend/pkg/errors"
	"github.com/angelmondragon/assetdesk-backend/pkg/logger"
	"github.com/angelmondragon/assetdesk-backend/pkg/metrics"
	"github.com/angelmondragon/assetdesk-backend/pkg/types"
)

const (
	opAssign         = "assign"
	opReturn         = "return"
	opDeleteAsset    = "delete_asset"
	opDeleteEmployee = "delete_employee"
)

// EngineParams wires the engine's collaborators.
type EngineParams struct {
	Store   store.Store
	Now     func() time.Time
	NewID   func() uuid.UUID
	Timeout time.Duration
	Logger  *logger.Logger
	Metrics *metrics.LifecycleMetrics
}

// Engine is the only writer of an asset's Assigned status and assignee.
type Engine struct {
	store   store.Store
	now     func() time.Time
	newID   func() uuid.UUID
	timeout time.Duration
	logg    *logger.Logger
	metrics *metrics.LifecycleMetrics
}

// AssignResult is the state after a successful assign.
type AssignResult struct {
	Asset      models.Asset      `json:"asset"`
	Assignment models.Assignment `json:"assignment"`
}

// ReturnResult is the state after a successful return.
type ReturnResult struct {
	Asset        models.Asset      `json:"asset"`
	ReturnedDate types.Date        `json:"returnedDate"`
	Assignment   models.Assignment `json:"assignment"`
}

func NewEngine(params EngineParams) (*Engine, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "lifecycle store required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	newID := params.NewID
	if newID == nil {
		newID = uuid.New
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Engine{
		store:   params.Store,
		now:     now,
		newID:   newID,
		timeout: params.Timeout,
		logg:    logg,
		metrics: params.Metrics,
	}, nil
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

func (e *Engine) today() types.Date {
	return types.Today(e.now)
}

// Assign hands an Available asset to an Active employee. The asset update and
// the new Active assignment commit together.
func (e *Engine) Assign(ctx context.Context, assetID, employeeID uuid.UUID) (*AssignResult, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	var result *AssignResult
	err := e.store.WithTx(ctx, func(tx store.Store) error {
		asset, err := tx.Assets().Get(ctx, assetID)
		if err != nil {
			return lookupError(err, EntityAsset)
		}
		if err := checkAssignable(*asset); err != nil {
			return err
		}

		employee, err := tx.Employees().Get(ctx, employeeID)
		if err != nil {
			return lookupError(err, EntityEmployee)
		}
		if employee.Status != enums.EmployeeStatusActive {
			return invalidState(ReasonEmployeeInactive, msgEmployeeInactive)
		}

		status := enums.AssetStatusAssigned
		updated, err := tx.Assets().Update(ctx, assetID, store.AssetPatch{
			Status:     &status,
			AssignedTo: &employeeID,
		})
		if err != nil {
			return mutationError(err, EntityAsset, "update asset")
		}

		created, err := tx.Assignments().Create(ctx, &models.Assignment{
			ID:           e.newID(),
			AssetID:      asset.ID,
			EmployeeID:   employee.ID,
			AssetName:    asset.AssetName,
			EmployeeName: employee.Name,
			AssignedDate: e.today(),
			Status:       enums.AssignmentStatusActive,
		})
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				return invalidState(ReasonAlreadyAssigned, msgAlreadyAssigned)
			}
			return storeError(err, "create assignment")
		}

		result = &AssignResult{Asset: *updated, Assignment: *created}
		return nil
	})
	if err != nil {
		err = storeError(err, "assign asset")
		e.record(ctx, opAssign, assetID, err)
		return nil, err
	}

	e.record(ctx, opAssign, assetID, nil)
	return result, nil
}

func checkAssignable(asset models.Asset) error {
	switch asset.Status {
	case enums.AssetStatusAvailable:
		return nil
	case enums.AssetStatusAssigned:
		return invalidState(ReasonAlreadyAssigned, msgAlreadyAssigned)
	case enums.AssetStatusRepair:
		return invalidState(ReasonUnderRepair, msgUnderRepair)
	default:
		return invalidState(ReasonUnknownStatus, fmt.Sprintf("Asset status %q does not allow assignment", asset.Status))
	}
}

// Return closes an Active assignment and makes its asset Available again.
func (e *Engine) Return(ctx context.Context, assetID, assignmentID uuid.UUID) (*ReturnResult, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	var result *ReturnResult
	err := e.store.WithTx(ctx, func(tx store.Store) error {
		if _, err := tx.Assets().Get(ctx, assetID); err != nil {
			return lookupError(err, EntityAsset)
		}
		assignment, err := tx.Assignments().Get(ctx, assignmentID)
		if err != nil {
			return lookupError(err, EntityAssignment)
		}
		if assignment.AssetID != assetID {
			return invalidState(ReasonAssignmentMismatch, msgAssignmentMismatch)
		}
		if !assignment.IsActive() {
			return invalidState(ReasonAlreadyReturned, msgAlreadyReturned)
		}

		available := enums.AssetStatusAvailable
		updatedAsset, err := tx.Assets().Update(ctx, assetID, store.AssetPatch{
			Status:          &available,
			ClearAssignedTo: true,
		})
		if err != nil {
			return mutationError(err, EntityAsset, "update asset")
		}

		today := e.today()
		active := enums.AssignmentStatusActive
		returned := enums.AssignmentStatusReturned
		updatedAssignment, err := tx.Assignments().Update(ctx, assignmentID, store.AssignmentPatch{
			Status:       &returned,
			ReturnedDate: &today,
			ExpectStatus: &active,
		})
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				return invalidState(ReasonAlreadyReturned, msgAlreadyReturned)
			}
			return mutationError(err, EntityAssignment, "close assignment")
		}

		result = &ReturnResult{
			Asset:        *updatedAsset,
			ReturnedDate: today,
			Assignment:   *updatedAssignment,
		}
		return nil
	})
	if err != nil {
		err = storeError(err, "return asset")
		e.record(ctx, opReturn, assetID, err)
		return nil, err
	}

	e.record(ctx, opReturn, assetID, nil)
	return result, nil
}

func mutationError(err error, entity, op string) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound(entity)
	}
	return storeError(err, op)
}

func (e *Engine) record(ctx context.Context, operation string, id uuid.UUID, err error) {
	logCtx := e.logg.WithFields(ctx, map[string]any{
		"operation": operation,
		"entity_id": id.String(),
	})
	switch {
	case err == nil:
		e.metrics.Observe(operation, metrics.OutcomeSuccess)
		e.logg.Info(logCtx, "lifecycle."+operation+".ok")
	case IsStoreError(err):
		e.metrics.Observe(operation, metrics.OutcomeFailure)
		e.logg.Error(logCtx, "lifecycle."+operation+".failed", err)
	default:
		e.metrics.Observe(operation, metrics.OutcomeRejected)
		e.logg.Warn(e.logg.WithField(logCtx, "reason", err.Error()), "lifecycle."+operation+".rejected")
	}
}
