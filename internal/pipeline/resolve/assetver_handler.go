package resolve

import (
	"context"
	"fmt"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/registry"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/uri"
)

// URILockLookup resolves the LBATTR_locked_asset_versions override keyed by
// the URI's own string form, per §4.8's lock-override clause. This is a
// distinct keying scheme from registry.LockLookup (which is keyed by
// asset_path_id) even though both typically read the same env var.
type URILockLookup interface {
	LocksByURI() (map[string]string, error)
}

// AssetVerHandler implements the built-in "assetver" protocol.
type AssetVerHandler struct {
	Registry *registry.Registry
	Locks    URILockLookup // optional
}

func (h AssetVerHandler) Accepts(u uri.URI) bool { return u.Protocol() == "assetver" }

// resolveVersion implements the two-step resolution: try uri.Path() as a
// version_path_id first; on NotFound, treat it as an asset_path_id and
// resolve the default (possibly lock-overridden) version.
func (h AssetVerHandler) resolveVersion(ctx context.Context, u uri.URI) (registry.AssetVersion, error) {
	datas, err := h.Registry.Store().GetAssetVersionDatasFromPathIDs(ctx, []string{u.Path()})
	if err != nil {
		return registry.AssetVersion{}, err
	}
	if len(datas) == 1 {
		return h.Registry.AssetVersion(datas[0].PathID), nil
	}

	// Not a concrete version path_id: treat as an asset_path_id. A
	// currently-locked dynamic URI still reports is_dynamic == true, so
	// resolving it here must not cache or otherwise hide that.
	if h.Locks != nil {
		byURI, err := h.Locks.LocksByURI()
		if err == nil {
			if lockedVerPathID, ok := byURI[u.String()]; ok {
				locked, err := h.Registry.Store().GetAssetVersionDatasFromPathIDs(ctx, []string{lockedVerPathID})
				if err != nil {
					return registry.AssetVersion{}, err
				}
				if len(locked) == 0 {
					// Do NOT fall back to latest: propagate the error.
					return registry.AssetVersion{}, fmt.Errorf("locked version %s for %s: %w", lockedVerPathID, u.String(), pipelinepb.ErrNotFound)
				}
				return h.Registry.AssetVersion(locked[0].PathID), nil
			}
		}
	}

	return h.Registry.Asset(u.Path()).GetDefaultVersion(ctx)
}

func (h AssetVerHandler) Fetch(ctx context.Context, u uri.URI) (any, error) {
	ver, err := h.resolveVersion(ctx, u)
	if err != nil {
		return nil, err
	}
	if query, ok := u.Query(); ok {
		data, err := ver.Data(ctx)
		if err != nil {
			return nil, err
		}
		return assetVersionAttribute(data, query), nil
	}
	return ver, nil
}

// IsDynamic returns true iff uri.path names an asset (not a concrete
// version): a currently-locked dynamic URI is still reported as dynamic so
// subsequent publishers know to record a lock.
func (h AssetVerHandler) IsDynamic(ctx context.Context, u uri.URI) (bool, error) {
	datas, err := h.Registry.Store().GetAssetVersionDatasFromPathIDs(ctx, []string{u.Path()})
	if err != nil {
		return false, err
	}
	if len(datas) == 1 {
		return false, nil
	}
	if _, err := h.Registry.Store().GetAssetTypeName(ctx, u.Path()); err != nil {
		return false, err
	}
	return true, nil
}

var _ Handler = AssetVerHandler{}
