package lifecycle

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/assetdesk-backend/internal/store"
	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
)

// GuardResult is the outcome of a delete check.
type GuardResult struct {
	Allowed   bool
	Reason    string
	AssetName string
}

func guardAssetDeletion(asset models.Asset) GuardResult {
	if asset.Status == enums.AssetStatusAssigned {
		return GuardResult{Reason: ReasonAssetAssigned, AssetName: asset.AssetName}
	}
	return GuardResult{Allowed: true}
}

// guardEmployeeDeletion scans every asset; the inventory is bounded by
// headcount so there is no reverse index.
func guardEmployeeDeletion(employeeID uuid.UUID, assets []models.Asset) GuardResult {
	for _, asset := range assets {
		if asset.IsAssignedTo(employeeID) {
			return GuardResult{Reason: ReasonEmployeeHasAsset, AssetName: asset.AssetName}
		}
	}
	return GuardResult{Allowed: true}
}

func employeeBlockedMessage(assetName string) string {
	return fmt.Sprintf("Cannot delete employee: Asset \"%s\" is currently assigned to them. Please return the asset first.", assetName)
}

// CanDeleteAsset returns nil when the asset may be deleted.
func (e *Engine) CanDeleteAsset(ctx context.Context, assetID uuid.UUID) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return storeErrorOrNil(checkAssetDeletion(ctx, e.store, assetID), "check asset deletion")
}

// CanDeleteEmployee returns nil when no asset is assigned to the employee.
func (e *Engine) CanDeleteEmployee(ctx context.Context, employeeID uuid.UUID) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return storeErrorOrNil(checkEmployeeDeletion(ctx, e.store, employeeID), "check employee deletion")
}

// DeleteAsset runs the asset guard and the delete in one transaction.
func (e *Engine) DeleteAsset(ctx context.Context, assetID uuid.UUID) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	err := e.store.WithTx(ctx, func(tx store.Store) error {
		if err := checkAssetDeletion(ctx, tx, assetID); err != nil {
			return err
		}
		if err := tx.Assets().Delete(ctx, assetID); err != nil {
			return mutationError(err, EntityAsset, "delete asset")
		}
		return nil
	})
	err = storeErrorOrNil(err, "delete asset")
	e.record(ctx, opDeleteAsset, assetID, err)
	return err
}

// DeleteEmployee runs the employee guard and the delete in one transaction.
func (e *Engine) DeleteEmployee(ctx context.Context, employeeID uuid.UUID) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	err := e.store.WithTx(ctx, func(tx store.Store) error {
		if err := checkEmployeeDeletion(ctx, tx, employeeID); err != nil {
			return err
		}
		if err := tx.Employees().Delete(ctx, employeeID); err != nil {
			return mutationError(err, EntityEmployee, "delete employee")
		}
		return nil
	})
	err = storeErrorOrNil(err, "delete employee")
	e.record(ctx, opDeleteEmployee, employeeID, err)
	return err
}

func checkAssetDeletion(ctx context.Context, s store.Store, assetID uuid.UUID) error {
	asset, err := s.Assets().Get(ctx, assetID)
	if err != nil {
		return lookupError(err, EntityAsset)
	}
	if res := guardAssetDeletion(*asset); !res.Allowed {
		return blocked(res.Reason, res.AssetName, msgAssetAssigned)
	}
	return nil
}

func checkEmployeeDeletion(ctx context.Context, s store.Store, employeeID uuid.UUID) error {
	if _, err := s.Employees().Get(ctx, employeeID); err != nil {
		return lookupError(err, EntityEmployee)
	}
	assets, err := s.Assets().List(ctx)
	if err != nil {
		return storeError(err, "list assets")
	}
	if res := guardEmployeeDeletion(employeeID, assets); !res.Allowed {
		return blocked(res.Reason, res.AssetName, employeeBlockedMessage(res.AssetName))
	}
	return nil
}

func storeErrorOrNil(err error, op string) error {
	if err == nil {
		return nil
	}
	return storeError(err, op)
}
