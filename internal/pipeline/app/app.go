// Package app wires the registry core (Store, Scheduler, Registry,
// asset-type registry, URI resolver) into the single App object the CLI
// commands operate against.
package app

import (
	"context"
	"log/slog"
	"path/filepath"

	"go.opentelemetry.io/otel/metric"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/assettype"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/config"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/registry"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/resolve"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/scheduler"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/store"
)

// App bundles the wired-up registry core, shared by every pipelinectl
// subcommand.
type App struct {
	Settings config.Settings
	Store    store.Store
	Registry *registry.Registry
	Types    *assettype.Registry
	Resolver *resolve.Resolver
	Locks    *config.LockOverrides

	log *slog.Logger
}

// Compute is injected by main; a real deployment would point this at the
// external compute backend instead of the zero-value no-op below.
type Compute = scheduler.Compute

// Open loads Settings, starts the lock-override watcher, opens the Store
// against a fresh in-process Scheduler running compute, and registers the
// built-in "asset"/"assetver" URI handlers. compute may be nil, in which
// case scheduled jobs complete immediately with an empty payload.
func Open(ctx context.Context, log *slog.Logger, meter metric.Meter, compute Compute) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	if compute == nil {
		compute = func(ctx context.Context, vd pipelinepb.AssetVersionData, params pipelinepb.GenerationTaskParameters) (map[string]any, error) {
			return map[string]any{}, nil
		}
	}

	settings, err := config.Load()
	if err != nil {
		return nil, err
	}

	locks, err := config.NewLockOverrides(ctx, filepath.Join(settings.Root, "locks.json"), log)
	if err != nil {
		return nil, err
	}

	sched := scheduler.New(compute, log, meter)

	st, err := store.Open(ctx, settings.DBPath(), sched, log, meter)
	if err != nil {
		locks.Close()
		return nil, err
	}

	reg := registry.New(st, locks)
	types := assettype.New()

	resolver := resolve.New()
	resolver.Register(resolve.AssetVerHandler{Registry: reg, Locks: locks})
	resolver.Register(resolve.AssetHandler{Registry: reg})

	return &App{
		Settings: settings,
		Store:    st,
		Registry: reg,
		Types:    types,
		Resolver: resolver,
		Locks:    locks,
		log:      log,
	}, nil
}

// Close releases the Store connection and stops the lock-override watcher.
func (a *App) Close() error {
	a.Locks.Close()
	return a.Store.Close()
}

func (a *App) Log() *slog.Logger { return a.log }
