package enums

import "fmt"

// AssetStatus maps to the asset_status enum in Postgres. Assigned is owned by
// the lifecycle engine; every other write path is limited to Available and Repair.
type AssetStatus string

const (
	AssetStatusAvailable AssetStatus = "Available"
	AssetStatusAssigned  AssetStatus = "Assigned"
	AssetStatusRepair    AssetStatus = "Repair"
)

var validAssetStatuses = []AssetStatus{
	AssetStatusAvailable,
	AssetStatusAssigned,
	AssetStatusRepair,
}

// String implements fmt.Stringer.
func (s AssetStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches the canonical asset_status enum.
func (s AssetStatus) IsValid() bool {
	for _, candidate := range validAssetStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsManual reports whether an admin may set the status directly through an edit.
func (s AssetStatus) IsManual() bool {
	return s == AssetStatusAvailable || s == AssetStatusRepair
}

// ParseAssetStatus converts raw input into AssetStatus.
func ParseAssetStatus(value string) (AssetStatus, error) {
	for _, candidate := range validAssetStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid asset status %q", value)
}
