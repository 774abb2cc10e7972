package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/assetdesk-backend/internal/lifecycle"
	"github.com/angelmondragon/assetdesk-backend/internal/store/memory"
	"github.com/angelmondragon/assetdesk-backend/internal/store/storetest"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
	"github.com/angelmondragon/assetdesk-backend/pkg/logger"
)

func newReconcileJob(t *testing.T, s *memory.Store) *ReconcileJob {
	t.Helper()
	engine, err := lifecycle.NewEngine(lifecycle.EngineParams{Store: s, Timeout: time.Second})
	require.NoError(t, err)
	job, err := NewReconcileJob(logger.Nop(), engine)
	require.NoError(t, err)
	return job
}

func TestReconcileJobCleanStore(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_, err := s.Assets().Create(ctx, storetest.NewAsset("Dell XPS", "SN-1"))
	require.NoError(t, err)

	job := newReconcileJob(t, s)
	assert.Equal(t, ReconcileJobName, job.Name())
	assert.NoError(t, job.Run(ctx))
}

func TestReconcileJobFailsOnDrift(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	drifted := storetest.NewAsset("ThinkPad", "SN-2")
	drifted.Status = enums.AssetStatusAssigned
	holder := uuid.New()
	drifted.AssignedTo = &holder
	_, err := s.Assets().Create(ctx, drifted)
	require.NoError(t, err)

	err = newReconcileJob(t, s).Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(lifecycle.IssueAssignedWithoutActive))
}

type failingReconciler struct{}

func (failingReconciler) Reconcile(context.Context) (*lifecycle.Report, error) {
	return nil, errors.New("store offline")
}

func TestReconcileJobSurfacesStoreError(t *testing.T) {
	job, err := NewReconcileJob(logger.Nop(), failingReconciler{})
	require.NoError(t, err)
	assert.ErrorContains(t, job.Run(context.Background()), "store offline")

	_, err = NewReconcileJob(logger.Nop(), nil)
	assert.Error(t, err)
}
