package assignments

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assetdesk-backend/internal/store"
	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/assetdesk-backend/pkg/errors"
	"github.com/angelmondragon/assetdesk-backend/pkg/pagination"
)

// Service is read-only: assignments change only through the lifecycle engine.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*AssignmentDTO, error)
}

type service struct {
	store   store.Store
	timeout time.Duration
}

func NewService(s store.Store, timeout time.Duration) (Service, error) {
	if s == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "assignment store required")
	}
	return &service{store: s, timeout: timeout}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	ctx, cancel := store.Bound(ctx, s.timeout)
	defer cancel()

	rows, err := s.store.Assignments().List(ctx)
	if err != nil {
		return nil, store.MapError(err, "assignment", "")
	}

	query := strings.ToLower(strings.TrimSpace(params.Query))
	filtered := make([]models.Assignment, 0, len(rows))
	for _, row := range rows {
		if params.Status != nil && row.Status != *params.Status {
			continue
		}
		if params.AssetID != nil && row.AssetID != *params.AssetID {
			continue
		}
		if params.EmployeeID != nil && row.EmployeeID != *params.EmployeeID {
			continue
		}
		if query != "" && !matches(row, query) {
			continue
		}
		filtered = append(filtered, row)
	}

	SortRecent(filtered)
	page, next, err := pagination.Page(filtered, pagination.Params{Limit: params.Limit, Cursor: params.Cursor}, CursorOf)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	items := make([]AssignmentDTO, 0, len(page))
	for _, row := range page {
		items = append(items, FromModel(row))
	}
	return &ListResult{Items: items, Cursor: next, Total: len(filtered)}, nil
}

func matches(a models.Assignment, query string) bool {
	for _, field := range []string{a.AssetName, a.EmployeeName, a.Status.String()} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*AssignmentDTO, error) {
	ctx, cancel := store.Bound(ctx, s.timeout)
	defer cancel()

	row, err := s.store.Assignments().Get(ctx, id)
	if err != nil {
		return nil, store.MapError(err, "assignment", "")
	}
	dto := FromModel(*row)
	return &dto, nil
}

// CursorOf orders assignments by assigned date, then creation time.
func CursorOf(a models.Assignment) pagination.Cursor {
	return pagination.Cursor{SortAt: a.AssignedDate.Time(), CreatedAt: a.CreatedAt, ID: a.ID}
}

// SortRecent orders rows most recent first.
func SortRecent(rows []models.Assignment) {
	pagination.SortNewestFirst(rows, CursorOf)
}
