package lifecycle

import (
	"context"
	"errors"

	"github.com/angelmondragon/assetdesk-backend/internal/store"
	pkgerrors "github.com/angelmondragon/assetdesk-backend/pkg/errors"
)

const (
	EntityAsset      = "asset"
	EntityEmployee   = "employee"
	EntityAssignment = "assignment"
)

// Reasons attached to InvalidState and Blocked failures.
const (
	ReasonAlreadyAssigned    = "already assigned"
	ReasonUnderRepair        = "under repair"
	ReasonEmployeeInactive   = "employee inactive"
	ReasonAssignmentMismatch = "assignment mismatch"
	ReasonAlreadyReturned    = "already returned"
	ReasonUnknownStatus      = "unknown status"
	ReasonAssetAssigned      = "asset is assigned"
	ReasonEmployeeHasAsset   = "employee has an assigned asset"
)

const (
	msgAlreadyAssigned    = "Asset is already assigned to another employee"
	msgUnderRepair        = "Cannot assign an asset that is under repair"
	msgEmployeeInactive   = "Cannot assign an asset to an inactive employee"
	msgAssignmentMismatch = "Assignment does not belong to this asset"
	msgAlreadyReturned    = "Assignment has already been returned"
	msgAssetAssigned      = "Cannot delete an assigned asset. Please return the asset first."
	msgStoreTimeout       = "store timed out"
)

// StateDetails is attached to InvalidState errors.
type StateDetails struct {
	Reason string `json:"reason"`
}

// BlockedDetails is attached to Blocked errors.
type BlockedDetails struct {
	Reason    string `json:"reason"`
	AssetName string `json:"asset_name,omitempty"`
}

// NotFoundDetails names the missing entity.
type NotFoundDetails struct {
	Entity string `json:"entity"`
}

func notFound(entity string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found").
		WithDetails(NotFoundDetails{Entity: entity})
}

func invalidState(reason, message string) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, message).
		WithDetails(StateDetails{Reason: reason})
}

func blocked(reason, assetName, message string) error {
	return pkgerrors.New(pkgerrors.CodeBlocked, message).
		WithDetails(BlockedDetails{Reason: reason, AssetName: assetName})
}

// storeError wraps a persistence failure. Deadline overruns get a fixed
// message so callers can tell a stalled store from a failing one.
func storeError(err error, op string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgStoreTimeout)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

// lookupError maps a Get failure for entity.
func lookupError(err error, entity string) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound(entity)
	}
	return storeError(err, "load "+entity)
}

func IsNotFound(err error) bool     { return pkgerrors.IsCode(err, pkgerrors.CodeNotFound) }
func IsInvalidState(err error) bool { return pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) }
func IsBlocked(err error) bool      { return pkgerrors.IsCode(err, pkgerrors.CodeBlocked) }
func IsStoreError(err error) bool   { return pkgerrors.IsCode(err, pkgerrors.CodeDependency) }

// ReasonOf returns the reason carried by an InvalidState or Blocked error.
func ReasonOf(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return ""
	}
	switch d := typed.Details().(type) {
	case StateDetails:
		return d.Reason
	case BlockedDetails:
		return d.Reason
	}
	return ""
}
