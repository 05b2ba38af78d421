package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLockOverridesFromEnv(t *testing.T) {
	t.Setenv(EnvLockedVersions, `{"Foo":"Foo/1.0.0"}`)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l, err := NewLockOverrides(ctx, "", nil)
	require.NoError(t, err)
	locks, err := l.Locks()
	require.NoError(t, err)
	require.Equal(t, "Foo/1.0.0", locks["Foo"])
}

func TestLockOverridesFileReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "locks.json")
	write := func(m map[string]string) {
		data, err := json.Marshal(m)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, data, 0o644))
	}
	write(map[string]string{"assetver:Foo": "Foo/1.0.0"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l, err := NewLockOverrides(ctx, path, nil)
	require.NoError(t, err)
	defer l.Close()

	locks, err := l.LocksByURI()
	require.NoError(t, err)
	require.Equal(t, "Foo/1.0.0", locks["assetver:Foo"])

	write(map[string]string{"assetver:Foo": "Foo/2.0.0"})

	require.Eventually(t, func() bool {
		locks, err := l.LocksByURI()
		require.NoError(t, err)
		return locks["assetver:Foo"] == "Foo/2.0.0"
	}, 2*time.Second, 20*time.Millisecond)
}
