package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/scheduler"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/store"
)

func newTestRegistry(t *testing.T, locks LockLookup) (*Registry, store.Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "pipeline.db")
	sched := scheduler.New(func(ctx context.Context, vd pipelinepb.AssetVersionData, params pipelinepb.GenerationTaskParameters) (map[string]any, error) {
		return map[string]any{}, nil
	}, nil, nil)
	st, err := store.Open(context.Background(), dbPath, sched, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(st, locks), st
}

func TestTemplateCascadeOnPublish(t *testing.T) {
	ctx := context.Background()
	reg, st := newTestRegistry(t, nil)

	_, err := st.CreateNewAsset(ctx, "generic", pipelinepb.AssetData{Name: "A"})
	require.NoError(t, err)
	_, err = st.CreateNewAsset(ctx, "generic", pipelinepb.AssetData{Name: "B"})
	require.NoError(t, err)

	_, err = st.CreateAssetTemplate(ctx, pipelinepb.AssetTemplateData{
		AssetPathID:        "B",
		DataProducerParams: pipelinepb.NewGenerationTaskParameters(),
		TriggerInputs:      []string{"A"},
	})
	require.NoError(t, err)

	a := reg.Asset("A")
	newVer, triggered, err := a.CreateNewGenericVersion(ctx, nil, nil, nil, false)
	require.NoError(t, err)
	require.Len(t, triggered, 1)

	bVerData, err := triggered[0].Data(ctx)
	require.NoError(t, err)
	require.Equal(t, "B", bVerData.AssetPathID)
	require.Equal(t, newVer.pathID, bVerData.DataProducerParams.VersionLockMapping["A"])

	deps, err := triggered[0].GetDependencies(ctx)
	require.NoError(t, err)
	depIDs := make([]string, len(deps))
	for i, d := range deps {
		depIDs[i] = d.pathID
	}
	require.Contains(t, depIDs, newVer.pathID)
}

func TestCreateTemplateFromLocks(t *testing.T) {
	ctx := context.Background()
	reg, st := newTestRegistry(t, nil)

	_, err := st.CreateNewAsset(ctx, "generic", pipelinepb.AssetData{Name: "A"})
	require.NoError(t, err)
	_, err = st.CreateNewAsset(ctx, "generic", pipelinepb.AssetData{Name: "B"})
	require.NoError(t, err)

	aVer, _, err := reg.Asset("A").CreateNewGenericVersion(ctx, nil, nil, nil, false)
	require.NoError(t, err)

	params := pipelinepb.NewGenerationTaskParameters()
	params.VersionLockMapping["A"] = aVer.pathID

	_, _, err = reg.Asset("B").CreateNewGenericVersion(ctx, nil, &params, []AssetVersion{aVer}, true)
	require.NoError(t, err)

	tmpl, err := st.GetAssetTemplate(ctx, "B")
	require.NoError(t, err)
	require.Equal(t, []string{"A"}, tmpl.TriggerInputs)
	require.Empty(t, tmpl.FixedDependencies)
}

type staticLocks map[string]string

func (s staticLocks) Locks() (map[string]string, error) { return s, nil }

func TestGetDefaultVersionHonorsLock(t *testing.T) {
	ctx := context.Background()
	reg, st := newTestRegistry(t, nil)
	_, err := st.CreateNewAsset(ctx, "generic", pipelinepb.AssetData{Name: "Foo"})
	require.NoError(t, err)

	v1, _, err := reg.Asset("Foo").CreateNewGenericVersion(ctx, nil, nil, nil, false)
	require.NoError(t, err)
	_, _, err = reg.Asset("Foo").CreateNewGenericVersion(ctx, nil, nil, nil, false)
	require.NoError(t, err)

	reg.locks = staticLocks{"Foo": v1.pathID}
	def, err := reg.Asset("Foo").GetDefaultVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, v1.pathID, def.pathID)

	reg.locks = nil
	def, err = reg.Asset("Foo").GetDefaultVersion(ctx)
	require.NoError(t, err)
	require.NotEqual(t, v1.pathID, def.pathID)
}
