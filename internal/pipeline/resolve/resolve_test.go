package resolve

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/registry"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/scheduler"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/store"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/uri"
)

type staticURILocks map[string]string

func (s staticURILocks) LocksByURI() (map[string]string, error) { return s, nil }

func setup(t *testing.T) (*registry.Registry, store.Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "pipeline.db")
	sched := scheduler.New(func(ctx context.Context, vd pipelinepb.AssetVersionData, params pipelinepb.GenerationTaskParameters) (map[string]any, error) {
		return map[string]any{}, nil
	}, nil, nil)
	st, err := store.Open(context.Background(), dbPath, sched, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return registry.New(st, nil), st
}

func TestResolveAssetVerWithLock(t *testing.T) {
	ctx := context.Background()
	reg, st := setup(t)

	_, err := st.CreateNewAsset(ctx, "generic", pipelinepb.AssetData{Name: "Foo"})
	require.NoError(t, err)
	v1, err := st.PublishNewAssetVersion(ctx, "Foo", nil, "", pipelinepb.NewGenerationTaskParameters(), nil)
	require.NoError(t, err)
	v2, err := st.PublishNewAssetVersion(ctx, "Foo", nil, "", pipelinepb.NewGenerationTaskParameters(), nil)
	require.NoError(t, err)

	u, err := uri.Parse("assetver:Foo")
	require.NoError(t, err)

	locked := AssetVerHandler{Registry: reg, Locks: staticURILocks{"assetver:Foo": v1.PathID}}
	r := New()
	r.Register(locked)

	dynamic, err := r.IsDynamic(ctx, u)
	require.NoError(t, err)
	require.True(t, dynamic)

	got, err := r.Fetch(ctx, u)
	require.NoError(t, err)
	ver, ok := got.(registry.AssetVersion)
	require.True(t, ok)
	require.Equal(t, v1.PathID, ver.PathID())

	unlocked := AssetVerHandler{Registry: reg}
	r2 := New()
	r2.Register(unlocked)
	got2, err := r2.Fetch(ctx, u)
	require.NoError(t, err)
	ver2 := got2.(registry.AssetVersion)
	require.Equal(t, v2.PathID, ver2.PathID())
}

func TestResolveAssetAttribute(t *testing.T) {
	ctx := context.Background()
	reg, st := setup(t)
	_, err := st.CreateNewAsset(ctx, "generic", pipelinepb.AssetData{Name: "Foo", Description: "a thing"})
	require.NoError(t, err)

	u, err := uri.Parse("asset:Foo?description")
	require.NoError(t, err)

	r := New()
	r.Register(AssetHandler{Registry: reg})
	got, err := r.Fetch(ctx, u)
	require.NoError(t, err)
	require.Equal(t, "a thing", got)
}

func TestResolveUnsupportedProtocol(t *testing.T) {
	ctx := context.Background()
	reg, _ := setup(t)
	r := New()
	r.Register(AssetHandler{Registry: reg})

	u, err := uri.Parse("render:Foo/1")
	require.NoError(t, err)
	_, err = r.Fetch(ctx, u)
	require.ErrorIs(t, err, pipelinepb.ErrUriNotSupported)
}
