package registry

import (
	"context"
	"fmt"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/future"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
)

// AssetVersion is a cheap, value-typed reference to a version identity. Per
// the design notes it holds no mutable state beyond identity and a shared
// Registry reference; every accessor fetches a fresh record.
type AssetVersion struct {
	reg    *Registry
	pathID string
}

func (v AssetVersion) PathID() string { return v.pathID }

func (v AssetVersion) Data(ctx context.Context) (pipelinepb.AssetVersionData, error) {
	datas, err := v.reg.store.GetAssetVersionDatasFromPathIDs(ctx, []string{v.pathID})
	if err != nil {
		return pipelinepb.AssetVersionData{}, err
	}
	if len(datas) == 0 {
		return pipelinepb.AssetVersionData{}, fmt.Errorf("asset version %s: %w", v.pathID, pipelinepb.ErrNotFound)
	}
	return datas[0], nil
}

func (v AssetVersion) IsDataAvailable(ctx context.Context) (bool, error) {
	d, err := v.Data(ctx)
	if err != nil {
		return false, err
	}
	return d.DataAvailability == pipelinepb.Available, nil
}

// GetData returns the full computed payload, failing with
// ErrDataNotYetAvailable if the version hasn't reached AVAILABLE.
func (v AssetVersion) GetData(ctx context.Context) (map[string]any, error) {
	d, err := v.Data(ctx)
	if err != nil {
		return nil, err
	}
	if d.DataAvailability != pipelinepb.Available {
		return nil, fmt.Errorf("%s: %w", v.pathID, pipelinepb.ErrDataNotYetAvailable)
	}
	return d.Data, nil
}

// HasField reports whether key is present in the computed payload.
func (v AssetVersion) HasField(ctx context.Context, key string) (bool, error) {
	data, err := v.GetData(ctx)
	if err != nil {
		return false, err
	}
	_, ok := data[key]
	return ok, nil
}

// GetField returns a single field of the computed payload.
func (v AssetVersion) GetField(ctx context.Context, key string) (any, error) {
	data, err := v.GetData(ctx)
	if err != nil {
		return nil, err
	}
	return data[key], nil
}

func (v AssetVersion) GetDependencies(ctx context.Context) ([]AssetVersion, error) {
	ids, err := v.reg.store.GetDependencies(ctx, v.pathID)
	if err != nil {
		return nil, err
	}
	return v.reg.versionsFor(ids), nil
}

func (v AssetVersion) GetDependants(ctx context.Context) ([]AssetVersion, error) {
	ids, err := v.reg.store.GetDependants(ctx, v.pathID)
	if err != nil {
		return nil, err
	}
	return v.reg.versionsFor(ids), nil
}

func (v AssetVersion) AddDependencies(ctx context.Context, deps []AssetVersion) error {
	ids := make([]string, len(deps))
	for i, d := range deps {
		ids[i] = d.pathID
	}
	return v.reg.store.AddDependencies(ctx, v.pathID, ids)
}

// ScheduleDataCalculationIfNeeded returns a Future that is already complete
// if data is AVAILABLE, otherwise delegates to the Store's scheduling
// state machine.
func (v AssetVersion) ScheduleDataCalculationIfNeeded(ctx context.Context) (future.Future, error) {
	available, err := v.IsDataAvailable(ctx)
	if err != nil {
		return nil, err
	}
	if available {
		return future.NewCompleted(true), nil
	}
	return v.reg.store.ScheduleDataComputation(ctx, v.pathID)
}

func (r *Registry) versionsFor(pathIDs []string) []AssetVersion {
	out := make([]AssetVersion, len(pathIDs))
	for i, id := range pathIDs {
		out[i] = r.AssetVersion(id)
	}
	return out
}
