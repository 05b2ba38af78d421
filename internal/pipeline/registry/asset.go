package registry

import (
	"context"
	"fmt"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/store"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/version"
)

// Asset is the façade contract every asset variant (see package assettype)
// satisfies; GenericAsset is the default, untyped implementation.
type Asset interface {
	PathID() string
	Data(ctx context.Context) (pipelinepb.AssetData, error)
	GetVersion(ctx context.Context, ver *version.Triple) (AssetVersion, error)
	GetLatestVersion(ctx context.Context) (AssetVersion, error)
	GetDefaultVersion(ctx context.Context) (AssetVersion, error)
	CreateNewGenericVersion(ctx context.Context, explicitVersion *version.Triple, params *pipelinepb.GenerationTaskParameters, deps []AssetVersion, createTemplateFromLocks bool) (AssetVersion, []AssetVersion, error)
}

// GenericAsset is a cheap, value-typed reference to an asset identity plus
// a shared, non-owning Registry reference. It revalidates by fetching a
// fresh Store record on every property access.
type GenericAsset struct {
	reg    *Registry
	pathID string
}

func (a GenericAsset) PathID() string { return a.pathID }

func (a GenericAsset) Data(ctx context.Context) (pipelinepb.AssetData, error) {
	return a.reg.store.GetAssetData(ctx, a.pathID)
}

// GetVersion returns the handle for an explicit version triple, or the
// asset's current maximum if ver is nil.
func (a GenericAsset) GetVersion(ctx context.Context, ver *version.Triple) (AssetVersion, error) {
	datas, err := a.reg.store.GetAssetVersionDatas(ctx, []store.AssetVersionPair{{AssetPathID: a.pathID, Version: ver}})
	if err != nil {
		return AssetVersion{}, err
	}
	if len(datas) == 0 {
		return AssetVersion{}, fmt.Errorf("asset %s: %w", a.pathID, pipelinepb.ErrNotFound)
	}
	return a.reg.AssetVersion(datas[0].PathID), nil
}

func (a GenericAsset) GetLatestVersion(ctx context.Context) (AssetVersion, error) {
	return a.GetVersion(ctx, nil)
}

// GetDefaultVersion consults the LBATTR_locked_asset_versions override; if
// it maps this asset to an existing version, that version wins, otherwise
// the latest version is returned.
func (a GenericAsset) GetDefaultVersion(ctx context.Context) (AssetVersion, error) {
	if a.reg.locks != nil {
		locks, err := a.reg.locks.Locks()
		if err == nil {
			if verPathID, ok := locks[a.pathID]; ok {
				datas, err := a.reg.store.GetAssetVersionDatasFromPathIDs(ctx, []string{verPathID})
				if err == nil && len(datas) == 1 && datas[0].AssetPathID == a.pathID {
					return a.reg.AssetVersion(verPathID), nil
				}
			}
		}
	}
	return a.GetLatestVersion(ctx)
}

// CreateNewGenericVersion implements §4.6: publish, cascade templates, and
// optionally derive a new template from the params' lock mapping.
func (a GenericAsset) CreateNewGenericVersion(
	ctx context.Context,
	explicitVersion *version.Triple,
	params *pipelinepb.GenerationTaskParameters,
	deps []AssetVersion,
	createTemplateFromLocks bool,
) (AssetVersion, []AssetVersion, error) {
	p := pipelinepb.NewGenerationTaskParameters()
	if params != nil {
		p = *params
	}
	depIDs := make([]string, len(deps))
	for i, d := range deps {
		depIDs[i] = d.pathID
	}

	verData, err := a.reg.store.PublishNewAssetVersion(ctx, a.pathID, explicitVersion, "", p, depIDs)
	if err != nil {
		return AssetVersion{}, nil, err
	}
	newVersion := a.reg.AssetVersion(verData.PathID)

	triggered, err := triggerRelevantAssetTemplates(ctx, a.reg, newVersion)
	if err != nil {
		return newVersion, triggered, err
	}

	if createTemplateFromLocks && len(p.VersionLockMapping) > 0 {
		lockedValues := make(map[string]struct{}, len(p.VersionLockMapping))
		triggerInputs := make([]string, 0, len(p.VersionLockMapping))
		for assetPathID, verPathID := range p.VersionLockMapping {
			triggerInputs = append(triggerInputs, assetPathID)
			lockedValues[verPathID] = struct{}{}
		}
		var fixed []string
		for _, d := range deps {
			if _, locked := lockedValues[d.pathID]; !locked {
				fixed = append(fixed, d.pathID)
			}
		}
		if _, err := a.reg.store.CreateAssetTemplate(ctx, pipelinepb.AssetTemplateData{
			AssetPathID:        a.pathID,
			DataProducerParams: p,
			TriggerInputs:      triggerInputs,
			FixedDependencies:  fixed,
		}); err != nil {
			return newVersion, triggered, err
		}
	}

	return newVersion, triggered, nil
}

var _ Asset = GenericAsset{}
