package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/angelmondragon/assetdesk-backend/internal/store"
	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
	"github.com/angelmondragon/assetdesk-backend/pkg/metrics"
)

func TestReconcileCleanAfterLifecycleOperations(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore()
	engine := newTestEngine(t, s)
	e1 := seedEmployee(t, s, "E1", enums.EmployeeStatusActive)
	a1 := seedAsset(t, s, "A1", enums.AssetStatusAvailable)
	a2 := seedAsset(t, s, "A2", enums.AssetStatusAvailable)

	res, err := engine.Assign(ctx, a1.ID, e1.ID)
	require.NoError(t, err)
	_, err = engine.Assign(ctx, a2.ID, e1.ID)
	require.NoError(t, err)
	_, err = engine.Return(ctx, a1.ID, res.Assignment.ID)
	require.NoError(t, err)

	report, err := engine.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.NoError(t, report.Err())
	assert.Equal(t, 2, report.AssetsChecked)
	assert.Equal(t, 2, report.AssignmentsChecked)
}

func TestReconcileFlagsInconsistencies(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore()
	reg := prometheus.NewRegistry()
	engine, err := NewEngine(EngineParams{Store: s, Now: fixedClock, Metrics: metrics.NewLifecycleMetrics(reg)})
	require.NoError(t, err)

	e1 := seedEmployee(t, s, "E1", enums.EmployeeStatusActive)

	orphaned := seedAsset(t, s, "Orphaned", enums.AssetStatusAvailable)
	assigned := enums.AssetStatusAssigned
	_, err = s.Assets().Update(ctx, orphaned.ID, store.AssetPatch{Status: &assigned, AssignedTo: &e1.ID})
	require.NoError(t, err)

	dangling := seedAsset(t, s, "Dangling", enums.AssetStatusAvailable)
	_, err = s.Assets().Update(ctx, dangling.ID, store.AssetPatch{AssignedTo: &e1.ID})
	require.NoError(t, err)

	stale := seedAsset(t, s, "Stale", enums.AssetStatusAvailable)
	_, err = s.Assignments().Create(ctx, &models.Assignment{
		ID:           uuid.New(),
		AssetID:      stale.ID,
		EmployeeID:   e1.ID,
		AssetName:    stale.AssetName,
		EmployeeName: e1.Name,
		AssignedDate: today(),
		Status:       enums.AssignmentStatusActive,
	})
	require.NoError(t, err)

	report, err := engine.Reconcile(ctx)
	require.NoError(t, err)
	require.False(t, report.OK())

	kinds := report.CountByKind()
	assert.Equal(t, 1, kinds[string(IssueAssignedWithoutActive)])
	assert.Equal(t, 1, kinds[string(IssueAssignedToMismatch)])
	assert.Equal(t, 1, kinds[string(IssueActiveAssetNotAssigned)])
	assert.Len(t, multierr.Errors(report.Err()), 3)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var series int
	for _, mf := range mfs {
		if mf.GetName() == "assetdesk_reconcile_issues" {
			series = len(mf.GetMetric())
		}
	}
	assert.Equal(t, 3, series)
}

func TestInspectDetectsMultipleActiveAndMissingAssets(t *testing.T) {
	employee := uuid.New()
	other := uuid.New()
	asset := models.Asset{ID: uuid.New(), AssetName: "Shared", Status: enums.AssetStatusAssigned, AssignedTo: &employee}
	missing := uuid.New()

	report := inspect([]models.Asset{asset}, []models.Assignment{
		{ID: uuid.New(), AssetID: asset.ID, EmployeeID: employee, Status: enums.AssignmentStatusActive},
		{ID: uuid.New(), AssetID: asset.ID, EmployeeID: other, Status: enums.AssignmentStatusActive},
		{ID: uuid.New(), AssetID: missing, EmployeeID: employee, Status: enums.AssignmentStatusActive},
		{ID: uuid.New(), AssetID: missing, EmployeeID: employee, Status: enums.AssignmentStatusReturned},
	})

	kinds := report.CountByKind()
	assert.Equal(t, 1, kinds[string(IssueMultipleActive)])
	// one for the other employee's assignment, one for the missing asset.
	assert.Equal(t, 2, kinds[string(IssueActiveAssetNotAssigned)])
	assert.Zero(t, kinds[string(IssueAssignedWithoutActive)])
}

func TestReconcileStoreFailure(t *testing.T) {
	engine, err := NewEngine(EngineParams{Store: stallingStore{Store: newMemoryStore()}, Timeout: 10 * time.Millisecond})
	require.NoError(t, err)
	_, err = engine.Reconcile(context.Background())
	require.True(t, IsStoreError(err))
}
