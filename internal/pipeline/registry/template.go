package registry

import (
	"context"
)

// triggerRelevantAssetTemplates implements §4.7: a worklist, not a
// recursive call stack, so the cascade depth is bounded by templates
// actually firing rather than by Go call-stack depth. Each iteration
// re-reads the template row, since a sibling trigger earlier in the same
// cascade may have already updated its lock mapping. The design assumes a
// tree-shaped trigger graph: diamond triggers are not deduplicated, per the
// open question in the design notes.
func triggerRelevantAssetTemplates(ctx context.Context, reg *Registry, newVersion AssetVersion) ([]AssetVersion, error) {
	var created []AssetVersion

	type work struct {
		triggeringAssetPathID string
		newVersion            AssetVersion
	}

	data, err := newVersion.Data(ctx)
	if err != nil {
		return nil, err
	}
	worklist := []work{{triggeringAssetPathID: data.AssetPathID, newVersion: newVersion}}

	for len(worklist) > 0 {
		item := worklist[0]
		worklist = worklist[1:]

		triggered, err := reg.store.GetAssetTemplatesTriggeredBy(ctx, item.triggeringAssetPathID)
		if err != nil {
			return created, err
		}

		for _, tmpl := range triggered {
			// Re-read: a sibling trigger in this same cascade may have
			// updated this template's lock mapping already.
			fresh, err := reg.store.GetAssetTemplate(ctx, tmpl.AssetPathID)
			if err != nil {
				return created, err
			}
			if fresh.DataProducerParams.VersionLockMapping == nil {
				fresh.DataProducerParams.VersionLockMapping = map[string]string{}
			}
			fresh.DataProducerParams.VersionLockMapping[item.triggeringAssetPathID] = item.newVersion.pathID

			fixed, err := reg.store.GetTemplateFixedDependencies(ctx, tmpl.AssetPathID)
			if err != nil {
				return created, err
			}
			depSet := make(map[string]struct{}, len(fixed)+len(fresh.DataProducerParams.VersionLockMapping))
			for _, d := range fixed {
				depSet[d] = struct{}{}
			}
			for _, d := range fresh.DataProducerParams.VersionLockMapping {
				depSet[d] = struct{}{}
			}
			deps := make([]AssetVersion, 0, len(depSet))
			for d := range depSet {
				deps = append(deps, reg.AssetVersion(d))
			}

			if err := reg.store.UpdateAssetTemplateData(ctx, tmpl.AssetPathID, fresh.DataProducerParams); err != nil {
				return created, err
			}

			depIDs := make([]string, len(deps))
			for i, d := range deps {
				depIDs[i] = d.pathID
			}
			// Published directly against the Store, not through
			// Asset.CreateNewGenericVersion: that method calls back into
			// this cascade, which would turn the worklist back into native
			// recursion. Firing further templates for this derived version
			// happens on a later worklist iteration instead.
			derivedData, err := reg.store.PublishNewAssetVersion(ctx, tmpl.AssetPathID, nil, "", fresh.DataProducerParams, depIDs)
			if err != nil {
				return created, err
			}
			derived := reg.AssetVersion(derivedData.PathID)
			created = append(created, derived)

			worklist = append(worklist, work{triggeringAssetPathID: derivedData.AssetPathID, newVersion: derived})
		}
	}

	return created, nil
}
