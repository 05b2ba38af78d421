package resolve

import (
	"context"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/registry"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/uri"
)

// assetAttribute resolves a query string naming an attribute on an
// AssetData record; a missing attribute returns "", per §4.8.
func assetAttribute(data pipelinepb.AssetData, attr string) string {
	switch attr {
	case "name":
		return data.Name
	case "description":
		return data.Description
	case "type_name":
		return data.TypeName
	case "path_id":
		return data.PathID
	default:
		return ""
	}
}

// assetVersionAttribute resolves a query string naming an attribute on an
// AssetVersionData record.
func assetVersionAttribute(data pipelinepb.AssetVersionData, attr string) string {
	switch attr {
	case "path_id":
		return data.PathID
	case "asset_path_id":
		return data.AssetPathID
	case "version":
		return data.VersionID.String()
	case "data_availability":
		return data.DataAvailability.String()
	case "data_calculator_id":
		return data.DataCalculatorID
	default:
		return ""
	}
}

// AssetHandler implements the built-in "asset" protocol: fetch returns the
// typed Asset at uri.path, or a named attribute when uri.query is present.
type AssetHandler struct {
	Registry *registry.Registry
}

func (h AssetHandler) Accepts(u uri.URI) bool { return u.Protocol() == "asset" }

func (h AssetHandler) Fetch(ctx context.Context, u uri.URI) (any, error) {
	asset := h.Registry.Asset(u.Path())
	if query, ok := u.Query(); ok {
		data, err := asset.Data(ctx)
		if err != nil {
			return nil, err
		}
		return assetAttribute(data, query), nil
	}
	// Touch the Store so an unknown asset fails NotFound rather than
	// silently returning a dangling handle.
	if _, err := asset.Data(ctx); err != nil {
		return nil, err
	}
	return asset, nil
}

func (h AssetHandler) IsDynamic(ctx context.Context, u uri.URI) (bool, error) {
	return false, nil
}

var _ Handler = AssetHandler{}
