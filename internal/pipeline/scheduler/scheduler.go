// Package scheduler defines the contract to an external compute backend
// (§4.5) and ships an in-process backend suitable for tests and
// single-process deployments.
package scheduler

import (
	"context"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/future"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
)

// Scheduler is the abstract contract to an external task backend.
type Scheduler interface {
	// ScheduleDataGenerationTask submits a job for versionData and returns a
	// Future for its result plus an opaque event id, meaningful only as a
	// key back into GetScheduleEventFuture. params arrives already
	// augmented: Store.ScheduleDataComputation adds asset_version_id,
	// asset_id, version and locked_asset_versions to a clone of the stored
	// params before calling; InProcess passes params to Compute unchanged.
	ScheduleDataGenerationTask(ctx context.Context, versionData pipelinepb.AssetVersionData, params pipelinepb.GenerationTaskParameters) (future.Future, string, error)

	// GetScheduleEventFuture reconstructs a Future for an already-scheduled
	// job. Returns pipelinepb.ErrNotFound if eventID is unknown.
	GetScheduleEventFuture(ctx context.Context, eventID string) (future.Future, error)

	// AddTaskCompletionCallbackReceiver registers a sink invoked by the
	// backend upon job completion. The Store registers itself as a receiver
	// at startup.
	AddTaskCompletionCallbackReceiver(rcv CompletionReceiver)
}

// CompletionReceiver is notified when a scheduled job finishes. The
// dependency-checker/finalizer plugin pair in the reference implementation
// motivates this as a registrable interface rather than one hardcoded
// callback function.
type CompletionReceiver interface {
	DataComputationCompletedCallback(ctx context.Context, pathID string, data map[string]any) error
}
