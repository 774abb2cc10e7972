// Package storetest holds behaviour checks shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/assetdesk-backend/internal/store"
	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
	"github.com/angelmondragon/assetdesk-backend/pkg/types"
)

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) store.Store

// Run exercises the full store contract against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("EmployeeCRUD", func(t *testing.T) { testEmployeeCRUD(t, newStore(t)) })
	t.Run("EmployeeEmailUnique", func(t *testing.T) { testEmployeeEmailUnique(t, newStore(t)) })
	t.Run("AssetCRUD", func(t *testing.T) { testAssetCRUD(t, newStore(t)) })
	t.Run("AssetSerialUnique", func(t *testing.T) { testAssetSerialUnique(t, newStore(t)) })
	t.Run("AssignmentCreateAndClose", func(t *testing.T) { testAssignmentCreateAndClose(t, newStore(t)) })
	t.Run("ConditionalAssignmentClose", func(t *testing.T) { testConditionalAssignmentClose(t, newStore(t)) })
	t.Run("OneActiveAssignmentPerAsset", func(t *testing.T) { testOneActiveAssignmentPerAsset(t, newStore(t)) })
	t.Run("TxCommits", func(t *testing.T) { testTxCommits(t, newStore(t)) })
	t.Run("TxRollsBack", func(t *testing.T) { testTxRollsBack(t, newStore(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newStore(t)) })
}

// NewEmployee builds a valid Active employee.
func NewEmployee(name, email string) *models.Employee {
	return &models.Employee{
		ID:         uuid.New(),
		Name:       name,
		Email:      email,
		Department: "Engineering",
		Role:       "Developer",
		Status:     enums.EmployeeStatusActive,
	}
}

// NewAsset builds a valid Available asset.
func NewAsset(name, serial string) *models.Asset {
	return &models.Asset{
		ID:           uuid.New(),
		AssetName:    name,
		AssetType:    "Laptop",
		SerialNumber: serial,
		PurchaseDate: types.MustParseDate("2024-01-15"),
		Status:       enums.AssetStatusAvailable,
	}
}

func testEmployeeCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()
	created, err := s.Employees().Create(ctx, NewEmployee("Ada Lovelace", "ada@company.com"))
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.Employees().Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)

	name := "Ada King"
	inactive := enums.EmployeeStatusInactive
	updated, err := s.Employees().Update(ctx, created.ID, store.EmployeePatch{Name: &name, Status: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Ada King", updated.Name)
	assert.Equal(t, enums.EmployeeStatusInactive, updated.Status)
	assert.Equal(t, "ada@company.com", updated.Email)

	list, err := s.Employees().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.Employees().Delete(ctx, created.ID))
	_, err = s.Employees().Get(ctx, created.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func testEmployeeEmailUnique(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.Employees().Create(ctx, NewEmployee("One", "same@company.com"))
	require.NoError(t, err)
	_, err = s.Employees().Create(ctx, NewEmployee("Two", "same@company.com"))
	assert.True(t, errors.Is(err, store.ErrConflict), "got %v", err)
}

func testAssetCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()
	asset := NewAsset("MacBook Pro", "SN-001")
	price := decimal.RequireFromString("1999.99")
	asset.PurchasePrice = &price

	created, err := s.Assets().Create(ctx, asset)
	require.NoError(t, err)
	assert.Equal(t, enums.AssetStatusAvailable, created.Status)
	assert.Nil(t, created.AssignedTo)

	got, err := s.Assets().Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PurchasePrice)
	assert.True(t, got.PurchasePrice.Equal(price))
	assert.Equal(t, "2024-01-15", got.PurchaseDate.String())

	employeeID := uuid.New()
	assigned := enums.AssetStatusAssigned
	updated, err := s.Assets().Update(ctx, created.ID, store.AssetPatch{Status: &assigned, AssignedTo: &employeeID})
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, employeeID, *updated.AssignedTo)

	available := enums.AssetStatusAvailable
	cleared, err := s.Assets().Update(ctx, created.ID, store.AssetPatch{Status: &available, ClearAssignedTo: true, ClearPurchasePrice: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.AssignedTo)
	assert.Nil(t, cleared.PurchasePrice)
	assert.Equal(t, enums.AssetStatusAvailable, cleared.Status)

	require.NoError(t, s.Assets().Delete(ctx, created.ID))
	assert.True(t, errors.Is(s.Assets().Delete(ctx, created.ID), store.ErrNotFound))
}

func testAssetSerialUnique(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.Assets().Create(ctx, NewAsset("One", "SN-DUP"))
	require.NoError(t, err)
	_, err = s.Assets().Create(ctx, NewAsset("Two", "SN-DUP"))
	assert.True(t, errors.Is(err, store.ErrConflict), "got %v", err)
}

func testAssignmentCreateAndClose(t *testing.T, s store.Store) {
	ctx := context.Background()
	assignment := &models.Assignment{
		ID:           uuid.New(),
		AssetID:      uuid.New(),
		EmployeeID:   uuid.New(),
		AssetName:    "ThinkPad",
		EmployeeName: "Grace Hopper",
		AssignedDate: types.MustParseDate("2024-02-01"),
		Status:       enums.AssignmentStatusActive,
	}
	created, err := s.Assignments().Create(ctx, assignment)
	require.NoError(t, err)
	assert.Nil(t, created.ReturnedDate)

	returned := enums.AssignmentStatusReturned
	date := types.MustParseDate("2024-03-01")
	closed, err := s.Assignments().Update(ctx, created.ID, store.AssignmentPatch{Status: &returned, ReturnedDate: &date})
	require.NoError(t, err)
	assert.Equal(t, enums.AssignmentStatusReturned, closed.Status)
	require.NotNil(t, closed.ReturnedDate)
	assert.Equal(t, "2024-03-01", closed.ReturnedDate.String())
	assert.Equal(t, "2024-02-01", closed.AssignedDate.String())

	list, err := s.Assignments().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func testConditionalAssignmentClose(t *testing.T, s store.Store) {
	ctx := context.Background()
	created, err := s.Assignments().Create(ctx, &models.Assignment{
		ID: uuid.New(), AssetID: uuid.New(), EmployeeID: uuid.New(),
		AssetName: "MacBook", EmployeeName: "Linus", AssignedDate: types.MustParseDate("2024-02-01"),
		Status: enums.AssignmentStatusActive,
	})
	require.NoError(t, err)

	active := enums.AssignmentStatusActive
	returned := enums.AssignmentStatusReturned
	first := types.MustParseDate("2024-03-01")
	closed, err := s.Assignments().Update(ctx, created.ID, store.AssignmentPatch{
		Status: &returned, ReturnedDate: &first, ExpectStatus: &active,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.AssignmentStatusReturned, closed.Status)

	second := types.MustParseDate("2024-04-01")
	_, err = s.Assignments().Update(ctx, created.ID, store.AssignmentPatch{
		Status: &returned, ReturnedDate: &second, ExpectStatus: &active,
	})
	require.ErrorIs(t, err, store.ErrConflict)

	got, err := s.Assignments().Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReturnedDate)
	assert.Equal(t, "2024-03-01", got.ReturnedDate.String())

	_, err = s.Assignments().Update(ctx, uuid.New(), store.AssignmentPatch{
		Status: &returned, ReturnedDate: &second, ExpectStatus: &active,
	})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testOneActiveAssignmentPerAsset(t *testing.T, s store.Store) {
	ctx := context.Background()
	assetID := uuid.New()
	first := &models.Assignment{
		ID: uuid.New(), AssetID: assetID, EmployeeID: uuid.New(),
		AssetName: "Dell", EmployeeName: "A", AssignedDate: types.MustParseDate("2024-02-01"),
		Status: enums.AssignmentStatusActive,
	}
	_, err := s.Assignments().Create(ctx, first)
	require.NoError(t, err)

	second := *first
	second.ID = uuid.New()
	_, err = s.Assignments().Create(ctx, &second)
	assert.True(t, errors.Is(err, store.ErrConflict), "got %v", err)
}

func testTxCommits(t *testing.T, s store.Store) {
	ctx := context.Background()
	asset := NewAsset("Monitor", "SN-TX-1")
	err := s.WithTx(ctx, func(tx store.Store) error {
		if _, err := tx.Assets().Create(ctx, asset); err != nil {
			return err
		}
		// nested calls run inline
		return tx.WithTx(ctx, func(inner store.Store) error {
			_, err := inner.Employees().Create(ctx, NewEmployee("Tx", "tx@company.com"))
			return err
		})
	})
	require.NoError(t, err)

	_, err = s.Assets().Get(ctx, asset.ID)
	require.NoError(t, err)
	list, err := s.Employees().List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testTxRollsBack(t *testing.T, s store.Store) {
	ctx := context.Background()
	asset := NewAsset("Keyboard", "SN-TX-2")
	created, err := s.Assets().Create(ctx, asset)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.WithTx(ctx, func(tx store.Store) error {
		assigned := enums.AssetStatusAssigned
		employeeID := uuid.New()
		if _, err := tx.Assets().Update(ctx, created.ID, store.AssetPatch{Status: &assigned, AssignedTo: &employeeID}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Assets().Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.AssetStatusAvailable, got.Status)
	assert.Nil(t, got.AssignedTo)
}

func testNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	missing := uuid.New()

	_, err := s.Employees().Get(ctx, missing)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	_, err = s.Assets().Get(ctx, missing)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	_, err = s.Assignments().Get(ctx, missing)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	name := "x"
	_, err = s.Employees().Update(ctx, missing, store.EmployeePatch{Name: &name})
	assert.True(t, errors.Is(err, store.ErrNotFound))
	_, err = s.Assets().Update(ctx, missing, store.AssetPatch{AssetName: &name})
	assert.True(t, errors.Is(err, store.ErrNotFound))
	returned := enums.AssignmentStatusReturned
	_, err = s.Assignments().Update(ctx, missing, store.AssignmentPatch{Status: &returned})
	assert.True(t, errors.Is(err, store.ErrNotFound))
	assert.True(t, errors.Is(s.Employees().Delete(ctx, missing), store.ErrNotFound))
}
