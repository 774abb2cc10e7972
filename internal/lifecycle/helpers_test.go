package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/assetdesk-backend/internal/store"
	"github.com/angelmondragon/assetdesk-backend/internal/store/memory"
	"github.com/angelmondragon/assetdesk-backend/internal/store/storetest"
	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
	"github.com/angelmondragon/assetdesk-backend/pkg/types"
)

var fixedNow = time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newTestEngine(t *testing.T, s store.Store) *Engine {
	t.Helper()
	engine, err := NewEngine(EngineParams{Store: s, Now: fixedClock, Timeout: time.Second})
	require.NoError(t, err)
	return engine
}

func seedEmployee(t *testing.T, s store.Store, name string, status enums.EmployeeStatus) models.Employee {
	t.Helper()
	e := storetest.NewEmployee(name, uuid.NewString()+"@example.com")
	e.Status = status
	created, err := s.Employees().Create(context.Background(), e)
	require.NoError(t, err)
	return *created
}

func seedAsset(t *testing.T, s store.Store, name string, status enums.AssetStatus) models.Asset {
	t.Helper()
	a := storetest.NewAsset(name, uuid.NewString())
	a.Status = status
	created, err := s.Assets().Create(context.Background(), a)
	require.NoError(t, err)
	return *created
}

func getAsset(t *testing.T, s store.Store, id uuid.UUID) models.Asset {
	t.Helper()
	a, err := s.Assets().Get(context.Background(), id)
	require.NoError(t, err)
	return *a
}

func listAssignments(t *testing.T, s store.Store) []models.Assignment {
	t.Helper()
	rows, err := s.Assignments().List(context.Background())
	require.NoError(t, err)
	return rows
}

func activeFor(rows []models.Assignment, assetID uuid.UUID) int {
	n := 0
	for _, row := range rows {
		if row.AssetID == assetID && row.IsActive() {
			n++
		}
	}
	return n
}

// requireConsistent checks the assignee/status pairing and the single Active
// assignment rule for every asset.
func requireConsistent(t *testing.T, s store.Store) {
	t.Helper()
	assets, err := s.Assets().List(context.Background())
	require.NoError(t, err)
	rows := listAssignments(t, s)
	for _, a := range assets {
		require.Equal(t, a.Status == enums.AssetStatusAssigned, a.AssignedTo != nil, "asset %s", a.AssetName)
		require.LessOrEqual(t, activeFor(rows, a.ID), 1, "asset %s", a.AssetName)
	}
}

func newMemoryStore() *memory.Store {
	return memory.New(memory.WithClock(fixedClock))
}

// failingStore makes every assignment create fail.
type failingStore struct {
	store.Store
	err error
}

func (f failingStore) Assignments() store.Assignments {
	return failingAssignments{Assignments: f.Store.Assignments(), err: f.err}
}

func (f failingStore) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	return f.Store.WithTx(ctx, func(tx store.Store) error {
		return fn(failingStore{Store: tx, err: f.err})
	})
}

type failingAssignments struct {
	store.Assignments
	err error
}

func (f failingAssignments) Create(context.Context, *models.Assignment) (*models.Assignment, error) {
	return nil, f.err
}

// stallingStore blocks asset reads until the context gives up.
type stallingStore struct {
	store.Store
}

func (s stallingStore) Assets() store.Assets {
	return stallingAssets{Assets: s.Store.Assets()}
}

func (s stallingStore) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

type stallingAssets struct {
	store.Assets
}

func (s stallingAssets) Get(ctx context.Context, _ uuid.UUID) (*models.Asset, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (s stallingAssets) List(ctx context.Context) ([]models.Asset, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// staleStore reports every assignment as Active, like a read taken before a
// concurrent return committed.
type staleStore struct {
	store.Store
}

func (s staleStore) Assignments() store.Assignments {
	return staleAssignments{Assignments: s.Store.Assignments()}
}

func (s staleStore) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	return s.Store.WithTx(ctx, func(tx store.Store) error {
		return fn(staleStore{Store: tx})
	})
}

type staleAssignments struct {
	store.Assignments
}

func (s staleAssignments) Get(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	row, err := s.Assignments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	row.Status = enums.AssignmentStatusActive
	row.ReturnedDate = nil
	return row, nil
}

func today() types.Date {
	return types.DateOf(fixedNow)
}
