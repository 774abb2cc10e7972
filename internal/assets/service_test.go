package assets

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/angelmondragon/assetdesk-backend/internal/lifecycle"
	"github.com/angelmondragon/assetdesk-backend/internal/store/memory"
	"github.com/angelmondragon/assetdesk-backend/internal/store/storetest"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/assetdesk-backend/pkg/errors"
	"github.com/angelmondragon/assetdesk-backend/pkg/types"
)

type fixture struct {
	svc   Service
	store *memory.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	tick := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	s := memory.New(memory.WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}))
	engine, err := lifecycle.NewEngine(lifecycle.EngineParams{Store: s, Now: func() time.Time { return tick }})
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{Store: s, Lifecycle: engine, Timeout: time.Second})
	require.NoError(t, err)
	return fixture{svc: svc, store: s}
}

func laptopInput(serial string) CreateInput {
	price := decimal.RequireFromString("1999.99")
	return CreateInput{
		AssetName:     "MacBook Pro",
		AssetType:     "Laptop",
		SerialNumber:  serial,
		PurchaseDate:  types.MustParseDate("2025-06-30"),
		PurchasePrice: &price,
	}
}

func (f fixture) employee(t *testing.T, name string) uuid.UUID {
	t.Helper()
	e, err := f.store.Employees().Create(context.Background(), storetest.NewEmployee(name, uuid.NewString()+"@example.com"))
	require.NoError(t, err)
	return e.ID
}

func TestCreateIsAlwaysAvailable(t *testing.T) {
	f := newFixture(t)
	got, err := f.svc.Create(context.Background(), laptopInput("SN-1"))
	require.NoError(t, err)
	assert.Equal(t, enums.AssetStatusAvailable, got.Status)
	assert.Nil(t, got.AssignedTo)
	assert.Equal(t, "1999.99", got.PurchasePrice.StringFixed(2))
	assert.Equal(t, "2025-06-30", got.PurchaseDate.String())
}

func TestCreateValidationAndDuplicates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	input := laptopInput("SN-1")
	input.PurchaseDate = types.Date{}
	_, err := f.svc.Create(ctx, input)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	negative := decimal.NewFromInt(-1)
	input = laptopInput("SN-1")
	input.PurchasePrice = &negative
	_, err = f.svc.Create(ctx, input)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, laptopInput("SN-1"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, laptopInput("SN-1"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestUpdateStatusRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	asset, err := f.svc.Create(ctx, laptopInput("SN-1"))
	require.NoError(t, err)

	repair := enums.AssetStatusRepair
	updated, err := f.svc.Update(ctx, asset.ID, UpdateInput{Status: &repair})
	require.NoError(t, err)
	assert.Equal(t, enums.AssetStatusRepair, updated.Status)

	assigned := enums.AssetStatusAssigned
	_, err = f.svc.Update(ctx, asset.ID, UpdateInput{Status: &assigned})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	available := enums.AssetStatusAvailable
	_, err = f.svc.Update(ctx, asset.ID, UpdateInput{Status: &available})
	require.NoError(t, err)

	_, err = f.svc.Assign(ctx, asset.ID, f.employee(t, "Ada"))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, asset.ID, UpdateInput{Status: &repair})
	require.True(t, lifecycle.IsInvalidState(err))

	name := "MacBook Pro 16"
	renamed, err := f.svc.Update(ctx, asset.ID, UpdateInput{AssetName: &name, ClearPurchasePrice: true})
	require.NoError(t, err)
	assert.Equal(t, name, renamed.AssetName)
	assert.Nil(t, renamed.PurchasePrice)
	assert.Equal(t, enums.AssetStatusAssigned, renamed.Status)
	require.NotNil(t, renamed.AssignedTo)
}

func TestAssignAndReturnSnapshotsNames(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	asset, err := f.svc.Create(ctx, laptopInput("SN-1"))
	require.NoError(t, err)
	employee := f.employee(t, "Grace Hopper")

	assigned, err := f.svc.Assign(ctx, asset.ID, employee)
	require.NoError(t, err)
	assert.Equal(t, "MacBook Pro", assigned.Assignment.AssetName)
	assert.Equal(t, "Grace Hopper", assigned.Assignment.EmployeeName)

	name := "Renamed"
	_, err = f.svc.Update(ctx, asset.ID, UpdateInput{AssetName: &name})
	require.NoError(t, err)

	require.True(t, lifecycle.IsBlocked(f.svc.Delete(ctx, asset.ID)))

	returned, err := f.svc.Return(ctx, asset.ID, assigned.Assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.AssetStatusAvailable, returned.Asset.Status)
	assert.Equal(t, "MacBook Pro", returned.Assignment.AssetName)
	assert.False(t, returned.ReturnedDate.IsZero())

	require.NoError(t, f.svc.Delete(ctx, asset.ID))
	_, err = f.svc.Get(ctx, asset.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListSearchAndStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.Create(ctx, laptopInput("SN-LAP"))
	require.NoError(t, err)
	monitor := laptopInput("SN-MON")
	monitor.AssetName = "Dell U2723"
	monitor.AssetType = "Monitor"
	created, err := f.svc.Create(ctx, monitor)
	require.NoError(t, err)
	repair := enums.AssetStatusRepair
	_, err = f.svc.Update(ctx, created.ID, UpdateInput{Status: &repair})
	require.NoError(t, err)

	res, err := f.svc.List(ctx, ListParams{Query: "monitor"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	res, err = f.svc.List(ctx, ListParams{Query: "sn-"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)

	res, err = f.svc.List(ctx, ListParams{Status: &repair})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Dell U2723", res.Items[0].AssetName)
}

func TestListSearchMatchesStatusText(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.Create(ctx, laptopInput("SN-AV"))
	require.NoError(t, err)
	broken, err := f.svc.Create(ctx, laptopInput("SN-RP"))
	require.NoError(t, err)
	repair := enums.AssetStatusRepair
	_, err = f.svc.Update(ctx, broken.ID, UpdateInput{Status: &repair})
	require.NoError(t, err)

	res, err := f.svc.List(ctx, ListParams{Query: "avail"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "SN-AV", res.Items[0].SerialNumber)

	res, err = f.svc.List(ctx, ListParams{Query: "REPAIR"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, broken.ID, res.Items[0].ID)
}

func TestExportWritesWorkbook(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	asset, err := f.svc.Create(ctx, laptopInput("SN-1"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, CreateInput{
		AssetName:    "Cable",
		AssetType:    "Accessory",
		SerialNumber: "SN-2",
		PurchaseDate: types.MustParseDate("2025-01-01"),
	})
	require.NoError(t, err)
	_, err = f.svc.Assign(ctx, asset.ID, f.employee(t, "Ada Lovelace"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.svc.Export(ctx, &buf))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(ExportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Asset Name", rows[0][0])
	assert.Equal(t, []string{"MacBook Pro", "Laptop", "SN-1", "2025-06-30", "1999.99", "Assigned", "Ada Lovelace"}, rows[1])
	assert.Equal(t, "Cable", rows[2][0])
	assert.Equal(t, "Available", rows[2][5])
}
