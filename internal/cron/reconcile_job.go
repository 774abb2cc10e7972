package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/assetdesk-backend/internal/lifecycle"
	"github.com/angelmondragon/assetdesk-backend/pkg/logger"
)

// ReconcileJobName labels the reconciliation job in logs and metrics.
const ReconcileJobName = "asset-reconciliation"

type reconciler interface {
	Reconcile(ctx context.Context) (*lifecycle.Report, error)
}

// ReconcileJob checks that asset status, assignee and Active assignments
// still agree. Findings are logged one per line and fail the run so the
// failure counter alerts; the data itself is never touched.
type ReconcileJob struct {
	logg   *logger.Logger
	engine reconciler
}

func NewReconcileJob(logg *logger.Logger, engine reconciler) (*ReconcileJob, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if engine == nil {
		return nil, fmt.Errorf("lifecycle engine required")
	}
	return &ReconcileJob{logg: logg, engine: engine}, nil
}

func (j *ReconcileJob) Name() string { return ReconcileJobName }

func (j *ReconcileJob) Run(ctx context.Context) error {
	report, err := j.engine.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	ctx = j.logg.WithFields(ctx, map[string]any{
		"assets_checked":      report.AssetsChecked,
		"assignments_checked": report.AssignmentsChecked,
		"issues":              len(report.Issues),
	})
	if report.OK() {
		j.logg.Info(ctx, "reconcile.clean")
		return nil
	}

	for _, issue := range report.Issues {
		fields := map[string]any{"kind": string(issue.Kind), "detail": issue.Detail}
		if issue.AssignmentID != nil {
			fields["assignment_id"] = issue.AssignmentID.String()
		}
		issueCtx := j.logg.WithAssetID(j.logg.WithFields(ctx, fields), issue.AssetID.String())
		j.logg.Warn(issueCtx, "reconcile.issue")
	}
	return report.Err()
}
