package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// LockOverrides is the single LBATTR_locked_asset_versions source: one flat
// map merging the env var and an optional on-disk locks.json, hot-reloaded
// via fsnotify. The map holds both keying schemes the rest of the system
// needs (bare asset_path_id for registry.LockLookup, full URI strings like
// "assetver:Foo" for resolve.URILockLookup) side by side; each consumer
// looks its own key format up against the same data.
type LockOverrides struct {
	mu       sync.RWMutex
	locks    map[string]string
	filePath string
	log      *slog.Logger
	watcher  *fsnotify.Watcher
}

// NewLockOverrides loads the initial mapping from LBATTR_locked_asset_versions
// and, if filePath is non-empty, merges locks.json and watches it for
// changes until ctx is cancelled or Close is called. filePath may be empty,
// in which case only the env var is consulted and no watcher is started.
func NewLockOverrides(ctx context.Context, filePath string, log *slog.Logger) (*LockOverrides, error) {
	if log == nil {
		log = slog.Default()
	}
	l := &LockOverrides{locks: map[string]string{}, filePath: filePath, log: log}
	l.reload()

	if filePath == "" {
		return l, nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("lock override watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(filePath)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filePath, err)
	}
	l.watcher = w
	go l.watch(ctx)
	return l, nil
}

func (l *LockOverrides) reload() {
	merged := map[string]string{}

	if raw := os.Getenv(EnvLockedVersions); raw != "" {
		var m map[string]string
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			l.log.Error("parse LBATTR_locked_asset_versions", "err", err)
		} else {
			for k, v := range m {
				merged[k] = v
			}
		}
	}

	if l.filePath != "" {
		if data, err := os.ReadFile(l.filePath); err == nil {
			var m map[string]string
			if err := json.Unmarshal(data, &m); err != nil {
				l.log.Error("parse lock overrides file", "path", l.filePath, "err", err)
			} else {
				for k, v := range m {
					merged[k] = v
				}
			}
		}
	}

	l.mu.Lock()
	l.locks = merged
	l.mu.Unlock()
}

func (l *LockOverrides) watch(ctx context.Context) {
	defer l.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(l.filePath) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			l.log.Info("reloading lock overrides", "path", l.filePath)
			l.reload()
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.log.Error("lock overrides watcher", "err", err)
		}
	}
}

// Close stops the watcher goroutine, if one was started.
func (l *LockOverrides) Close() error {
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}

func (l *LockOverrides) snapshot() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]string, len(l.locks))
	for k, v := range l.locks {
		out[k] = v
	}
	return out
}

// Locks satisfies registry.LockLookup.
func (l *LockOverrides) Locks() (map[string]string, error) { return l.snapshot(), nil }

// LocksByURI satisfies resolve.URILockLookup. Both interfaces read the same
// underlying map; the caller's key format (bare asset_path_id vs. full URI
// string) determines which entries are actually found.
func (l *LockOverrides) LocksByURI() (map[string]string, error) { return l.snapshot(), nil }
