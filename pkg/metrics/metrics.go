// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

const namespace = "assetdesk"

const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeSkipped  = "skipped"
	OutcomeRejected = "rejected"
)
