package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/assetdesk-backend/internal/assignments"
	"github.com/angelmondragon/assetdesk-backend/internal/store"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/assetdesk-backend/pkg/errors"
)

// RecentLimit is how many assignments the summary lists.
const RecentLimit = 5

// Summary is the console landing page payload.
type Summary struct {
	TotalEmployees        int                         `json:"totalEmployees"`
	ActiveEmployees       int                         `json:"activeEmployees"`
	EmployeesByDepartment map[string]int              `json:"employeesByDepartment"`
	TotalAssets           int                         `json:"totalAssets"`
	AssignedAssets        int                         `json:"assignedAssets"`
	AvailableAssets       int                         `json:"availableAssets"`
	RepairAssets          int                         `json:"repairAssets"`
	InventoryValue        decimal.Decimal             `json:"inventoryValue"`
	RecentAssignments     []assignments.AssignmentDTO `json:"recentAssignments"`
}

type Service interface {
	Summary(ctx context.Context) (*Summary, error)
}

type service struct {
	store   store.Store
	timeout time.Duration
}

func NewService(s store.Store, timeout time.Duration) (Service, error) {
	if s == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "dashboard store required")
	}
	return &service{store: s, timeout: timeout}, nil
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	ctx, cancel := store.Bound(ctx, s.timeout)
	defer cancel()

	employees, err := s.store.Employees().List(ctx)
	if err != nil {
		return nil, store.MapError(err, "employee", "")
	}
	assets, err := s.store.Assets().List(ctx)
	if err != nil {
		return nil, store.MapError(err, "asset", "")
	}
	history, err := s.store.Assignments().List(ctx)
	if err != nil {
		return nil, store.MapError(err, "assignment", "")
	}

	out := &Summary{
		TotalEmployees:        len(employees),
		EmployeesByDepartment: make(map[string]int),
		TotalAssets:           len(assets),
		InventoryValue:        decimal.Zero,
		RecentAssignments:     []assignments.AssignmentDTO{},
	}
	for _, e := range employees {
		if e.Status == enums.EmployeeStatusActive {
			out.ActiveEmployees++
		}
		out.EmployeesByDepartment[e.Department]++
	}
	for _, a := range assets {
		switch a.Status {
		case enums.AssetStatusAssigned:
			out.AssignedAssets++
		case enums.AssetStatusAvailable:
			out.AvailableAssets++
		case enums.AssetStatusRepair:
			out.RepairAssets++
		}
		if a.PurchasePrice != nil {
			out.InventoryValue = out.InventoryValue.Add(*a.PurchasePrice)
		}
	}

	assignments.SortRecent(history)
	if len(history) > RecentLimit {
		history = history[:RecentLimit]
	}
	for _, row := range history {
		out.RecentAssignments = append(out.RecentAssignments, assignments.FromModel(row))
	}
	return out, nil
}
