// Package registry implements the façade (C6) and template cascade (C7)
// over the Store: Asset/AssetVersion handles that fetch fresh records on
// each access, and the worklist that fires AssetTemplates on publish.
package registry

import (
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/store"
)

// LockLookup resolves the LBATTR_locked_asset_versions override: a mapping
// from asset_path_id to version_path_id (for Asset.GetDefaultVersion) and
// from URI string to version_path_id (for the resolver, §4.8). Registry
// only needs the asset-keyed form.
type LockLookup interface {
	Locks() (map[string]string, error)
}

// Registry is the explicit, process-lifetime façade object the design notes
// prefer over a global "director" singleton.
type Registry struct {
	store store.Store
	locks LockLookup
}

// New builds a Registry over st. locks may be nil, in which case
// GetDefaultVersion always returns the latest version.
func New(st store.Store, locks LockLookup) *Registry {
	return &Registry{store: st, locks: locks}
}

// Store exposes the underlying Store, primarily for the asset-type registry
// (C9), which needs to read type_name directly to dispatch.
func (r *Registry) Store() store.Store { return r.store }

// Asset returns a generic handle for pathID without touching the Store;
// handles are cheap, fetch-on-read references to an identity, per the
// design notes.
func (r *Registry) Asset(pathID string) GenericAsset {
	return GenericAsset{reg: r, pathID: pathID}
}

// AssetVersion returns a handle for pathID without touching the Store.
func (r *Registry) AssetVersion(pathID string) AssetVersion {
	return AssetVersion{reg: r, pathID: pathID}
}
