package lifecycle

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
)

// IssueKind classifies a reconciliation finding.
type IssueKind string

const (
	IssueAssignedWithoutActive  IssueKind = "asset_assigned_without_active_assignment"
	IssueActiveAssetNotAssigned IssueKind = "active_assignment_asset_not_assigned"
	IssueAssignedToMismatch     IssueKind = "assigned_to_mismatch"
	IssueMultipleActive         IssueKind = "multiple_active_assignments"
)

// Issue is one inconsistency between assets and assignments.
type Issue struct {
	Kind         IssueKind  `json:"kind"`
	AssetID      uuid.UUID  `json:"assetId"`
	AssignmentID *uuid.UUID `json:"assignmentId,omitempty"`
	Detail       string     `json:"detail"`
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s: asset %s: %s", i.Kind, i.AssetID, i.Detail)
}

// Report lists every finding of a reconciliation pass.
type Report struct {
	AssetsChecked      int     `json:"assetsChecked"`
	AssignmentsChecked int     `json:"assignmentsChecked"`
	Issues             []Issue `json:"issues"`
}

func (r *Report) OK() bool {
	return r == nil || len(r.Issues) == 0
}

// Err combines the issues into one error, or nil when the data is consistent.
func (r *Report) Err() error {
	if r == nil {
		return nil
	}
	var err error
	for _, issue := range r.Issues {
		err = multierr.Append(err, issue)
	}
	return err
}

// CountByKind groups the issues for the reconcile gauge.
func (r *Report) CountByKind() map[string]int {
	counts := map[string]int{}
	if r == nil {
		return counts
	}
	for _, issue := range r.Issues {
		counts[string(issue.Kind)]++
	}
	return counts
}

// Reconcile checks that asset status, assignee and Active assignments agree.
// It only reports; nothing is repaired.
func (e *Engine) Reconcile(ctx context.Context) (*Report, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	assets, err := e.store.Assets().List(ctx)
	if err != nil {
		return nil, storeError(err, "list assets")
	}
	assignments, err := e.store.Assignments().List(ctx)
	if err != nil {
		return nil, storeError(err, "list assignments")
	}

	report := inspect(assets, assignments)
	e.metrics.SetIssues(report.CountByKind())
	if !report.OK() {
		e.logg.Warn(e.logg.WithField(ctx, "issues", len(report.Issues)), "lifecycle.reconcile.issues")
	}
	return report, nil
}

func inspect(assets []models.Asset, assignments []models.Assignment) *Report {
	report := &Report{AssetsChecked: len(assets), AssignmentsChecked: len(assignments)}

	active := map[uuid.UUID][]models.Assignment{}
	for _, a := range assignments {
		if a.IsActive() {
			active[a.AssetID] = append(active[a.AssetID], a)
		}
	}
	byID := make(map[uuid.UUID]models.Asset, len(assets))

	for _, asset := range assets {
		byID[asset.ID] = asset
		assigned := asset.Status == enums.AssetStatusAssigned

		if assigned != (asset.AssignedTo != nil) {
			report.add(Issue{
				Kind:    IssueAssignedToMismatch,
				AssetID: asset.ID,
				Detail:  fmt.Sprintf("status %s with assignee set=%t", asset.Status, asset.AssignedTo != nil),
			})
		}
		open := active[asset.ID]
		if assigned && len(open) == 0 {
			report.add(Issue{
				Kind:    IssueAssignedWithoutActive,
				AssetID: asset.ID,
				Detail:  "asset is Assigned but has no Active assignment",
			})
		}
		if len(open) > 1 {
			report.add(Issue{
				Kind:    IssueMultipleActive,
				AssetID: asset.ID,
				Detail:  fmt.Sprintf("%d Active assignments", len(open)),
			})
		}
	}

	for assetID, open := range active {
		asset, ok := byID[assetID]
		for _, a := range open {
			id := a.ID
			switch {
			case !ok:
				report.add(Issue{Kind: IssueActiveAssetNotAssigned, AssetID: assetID, AssignmentID: &id, Detail: "asset no longer exists"})
			case asset.Status != enums.AssetStatusAssigned:
				report.add(Issue{Kind: IssueActiveAssetNotAssigned, AssetID: assetID, AssignmentID: &id, Detail: "asset status is " + asset.Status.String()})
			case !asset.IsAssignedTo(a.EmployeeID):
				report.add(Issue{Kind: IssueActiveAssetNotAssigned, AssetID: assetID, AssignmentID: &id, Detail: "asset is assigned to a different employee"})
			}
		}
	}

	sort.SliceStable(report.Issues, func(i, j int) bool {
		if report.Issues[i].Kind != report.Issues[j].Kind {
			return report.Issues[i].Kind < report.Issues[j].Kind
		}
		return report.Issues[i].AssetID.String() < report.Issues[j].AssetID.String()
	})
	return report
}

func (r *Report) add(issue Issue) {
	r.Issues = append(r.Issues, issue)
}
