package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/scheduler"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/version"
)

func newTestStore(t *testing.T) (*SQLite, *scheduler.InProcess) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "pipeline.db")
	sched := scheduler.New(func(ctx context.Context, vd pipelinepb.AssetVersionData, params pipelinepb.GenerationTaskParameters) (map[string]any, error) {
		return map[string]any{"ok": true}, nil
	}, nil, nil)
	s, err := Open(context.Background(), dbPath, sched, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, sched
}

// newGatedTestStore is newTestStore with a compute function that blocks until
// the returned release func is called, so a test can act on a version while
// it is still IS_COMPUTING without the scheduler's own completion callback
// racing it.
func newGatedTestStore(t *testing.T) (*SQLite, func()) {
	t.Helper()
	gate := make(chan struct{})
	var once sync.Once
	release := func() { once.Do(func() { close(gate) }) }
	t.Cleanup(release)
	dbPath := filepath.Join(t.TempDir(), "pipeline.db")
	sched := scheduler.New(func(ctx context.Context, vd pipelinepb.AssetVersionData, params pipelinepb.GenerationTaskParameters) (map[string]any, error) {
		<-gate
		return map[string]any{"ok": true}, nil
	}, nil, nil)
	s, err := Open(context.Background(), dbPath, sched, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, release
}

func TestPublishAllocatesVersions(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.CreateNewAsset(ctx, "generic", pipelinepb.AssetData{Name: "Foo"})
	require.NoError(t, err)

	v1, err := s.PublishNewAssetVersion(ctx, "Foo", nil, "", pipelinepb.NewGenerationTaskParameters(), nil)
	require.NoError(t, err)
	require.Equal(t, version.Triple{1, -1, -1}, v1.VersionID)
	require.Equal(t, "Foo/1", v1.PathID)
	require.Equal(t, pipelinepb.NotComputed, v1.DataAvailability)

	v2, err := s.PublishNewAssetVersion(ctx, "Foo", nil, "", pipelinepb.NewGenerationTaskParameters(), nil)
	require.NoError(t, err)
	require.Equal(t, version.Triple{2, -1, -1}, v2.VersionID)
}

func TestPublishExplicitPrecision(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	_, err := s.CreateNewAsset(ctx, "generic", pipelinepb.AssetData{Name: "A"})
	require.NoError(t, err)

	v3 := version.Normalize(3)
	_, err = s.PublishNewAssetVersion(ctx, "A", &v3, "", pipelinepb.NewGenerationTaskParameters(), nil)
	require.NoError(t, err)

	v31 := version.Normalize(3, 1)
	_, err = s.PublishNewAssetVersion(ctx, "A", &v31, "", pipelinepb.NewGenerationTaskParameters(), nil)
	require.NoError(t, err)

	v312 := version.Normalize(3, 1, 2)
	got, err := s.PublishNewAssetVersion(ctx, "A", &v312, "", pipelinepb.NewGenerationTaskParameters(), nil)
	require.NoError(t, err)
	require.Equal(t, []int{3, 1, 2}, version.Denormalize(got.VersionID))
}

func TestDuplicateExplicitVersionConflicts(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	_, err := s.CreateNewAsset(ctx, "generic", pipelinepb.AssetData{Name: "A"})
	require.NoError(t, err)

	v1 := version.Normalize(1)
	_, err = s.PublishNewAssetVersion(ctx, "A", &v1, "", pipelinepb.NewGenerationTaskParameters(), nil)
	require.NoError(t, err)

	_, err = s.PublishNewAssetVersion(ctx, "A", &v1, "", pipelinepb.NewGenerationTaskParameters(), nil)
	require.ErrorIs(t, err, pipelinepb.ErrConflict)
}

func TestScheduleDataComputationDedupAndComplete(t *testing.T) {
	ctx := context.Background()
	s, release := newGatedTestStore(t)
	_, err := s.CreateNewAsset(ctx, "generic", pipelinepb.AssetData{Name: "A"})
	require.NoError(t, err)
	ver, err := s.PublishNewAssetVersion(ctx, "A", nil, "", pipelinepb.NewGenerationTaskParameters(), nil)
	require.NoError(t, err)

	f1, err := s.ScheduleDataComputation(ctx, ver.PathID)
	require.NoError(t, err)
	f2, err := s.ScheduleDataComputation(ctx, ver.PathID)
	require.NoError(t, err)

	require.False(t, f1.IsResultReady() && f2.IsResultReady())

	release()
	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	_, err = f1.WaitForResult(waitCtx)
	require.NoError(t, err)

	got, err := s.GetAssetVersionDatasFromPathIDs(ctx, []string{ver.PathID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, pipelinepb.Available, got[0].DataAvailability)
}

func TestOnDataComputationCompletedTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	s, _ := newGatedTestStore(t)
	_, err := s.CreateNewAsset(ctx, "generic", pipelinepb.AssetData{Name: "A"})
	require.NoError(t, err)
	ver, err := s.PublishNewAssetVersion(ctx, "A", nil, "", pipelinepb.NewGenerationTaskParameters(), nil)
	require.NoError(t, err)

	_, err = s.ScheduleDataComputation(ctx, ver.PathID)
	require.NoError(t, err)

	require.NoError(t, s.OnDataComputationCompleted(ctx, ver.PathID, map[string]any{"x": 1}))
	err = s.OnDataComputationCompleted(ctx, ver.PathID, map[string]any{"x": 2})
	require.ErrorIs(t, err, pipelinepb.ErrConflict)
}

func TestLeafDetection(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	for _, name := range []string{"X", "Y", "Z"} {
		_, err := s.CreateNewAsset(ctx, "generic", pipelinepb.AssetData{Name: name})
		require.NoError(t, err)
	}
	z, err := s.PublishNewAssetVersion(ctx, "Z", nil, "", pipelinepb.NewGenerationTaskParameters(), nil)
	require.NoError(t, err)
	y, err := s.PublishNewAssetVersion(ctx, "Y", nil, "", pipelinepb.NewGenerationTaskParameters(), []string{z.PathID})
	require.NoError(t, err)
	x, err := s.PublishNewAssetVersion(ctx, "X", nil, "", pipelinepb.NewGenerationTaskParameters(), []string{y.PathID})
	require.NoError(t, err)

	leaves, err := s.GetLeafAssetVersionPathIDs(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{x.PathID}, leaves)
}
