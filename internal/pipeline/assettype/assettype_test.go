package assettype

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/registry"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/scheduler"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/store"
)

func TestGetAssetDispatchesByType(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "pipeline.db")
	sched := scheduler.New(func(ctx context.Context, vd pipelinepb.AssetVersionData, params pipelinepb.GenerationTaskParameters) (map[string]any, error) {
		return map[string]any{}, nil
	}, nil, nil)
	st, err := store.Open(ctx, dbPath, sched, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	reg := registry.New(st, nil)
	types := New()

	a, err := types.NewAsset(ctx, reg, "generic", pipelinepb.AssetData{Name: "Foo"})
	require.NoError(t, err)
	require.Equal(t, "Foo", a.PathID())

	got, err := types.GetAsset(ctx, reg, "Foo")
	require.NoError(t, err)
	require.Equal(t, "Foo", got.PathID())
}

func TestGetAssetUnknownType(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "pipeline.db")
	sched := scheduler.New(func(ctx context.Context, vd pipelinepb.AssetVersionData, params pipelinepb.GenerationTaskParameters) (map[string]any, error) {
		return map[string]any{}, nil
	}, nil, nil)
	st, err := store.Open(ctx, dbPath, sched, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	_, err = st.CreateNewAsset(ctx, "weird_unregistered_type", pipelinepb.AssetData{Name: "Bar"})
	require.NoError(t, err)

	reg := registry.New(st, nil)
	types := New()
	_, err = types.GetAsset(ctx, reg, "Bar")
	require.ErrorIs(t, err, pipelinepb.ErrNotFound)
}
