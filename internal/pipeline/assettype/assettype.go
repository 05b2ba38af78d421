// Package assettype implements the polymorphic asset-type registry (C9): a
// type_name -> factory(path_id) -> Asset mapping, dispatched by reading
// type_name back from the Store.
package assettype

import (
	"context"
	"fmt"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/registry"
)

// Factory builds the typed Asset handle for pathID. It lives in this
// package (not registry) so that registry never needs to import assettype:
// the dependency only runs one way, factory -> registry.Asset.
type Factory func(reg *registry.Registry, pathID string) registry.Asset

// Registry is the startup-registered type_name -> Factory mapping. The
// reference implementation's specialized asset subtypes (CacheAsset,
// HipSourcedAssetCommon, ...) are exactly what a non-generic Factory would
// construct; this package ships the registry and the generic fallback, and
// documents the extension point rather than reimplementing source-file
// staging, which is out of scope.
type Registry struct {
	factories map[string]Factory
}

// New returns a Registry with the generic asset type pre-registered under
// "generic".
func New() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("generic", func(reg *registry.Registry, pathID string) registry.Asset {
		return reg.Asset(pathID)
	})
	return r
}

// Register adds (or replaces) the factory for typeName.
func (r *Registry) Register(typeName string, factory Factory) {
	r.factories[typeName] = factory
}

// NewAsset creates a new asset of typeName via the Store and returns the
// typed handle the registered factory produces.
func (r *Registry) NewAsset(ctx context.Context, reg *registry.Registry, typeName string, data pipelinepb.AssetData) (registry.Asset, error) {
	factory, ok := r.factories[typeName]
	if !ok {
		return nil, fmt.Errorf("asset type %q: %w", typeName, pipelinepb.ErrNotFound)
	}
	assetData, err := reg.Store().CreateNewAsset(ctx, typeName, data)
	if err != nil {
		return nil, err
	}
	return factory(reg, assetData.PathID), nil
}

// GetAsset reads type_name from the Store and dispatches to the matching
// factory. An unregistered type_name fails with pipelinepb.ErrNotFound.
func (r *Registry) GetAsset(ctx context.Context, reg *registry.Registry, pathID string) (registry.Asset, error) {
	typeName, err := reg.Store().GetAssetTypeName(ctx, pathID)
	if err != nil {
		return nil, err
	}
	factory, ok := r.factories[typeName]
	if !ok {
		return nil, fmt.Errorf("asset type %q: %w", typeName, pipelinepb.ErrNotFound)
	}
	return factory(reg, pathID), nil
}
