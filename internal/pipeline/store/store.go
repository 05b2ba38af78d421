// Package store implements the transactional registry (C4): the center of
// gravity of the asset-version pipeline, backed by a single embedded SQLite
// file.
package store

import (
	"context"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/future"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/version"
)

// AssetVersionPair selects a version of an asset: either an explicit
// version.Triple, or the asset's current maximum if Version is nil.
type AssetVersionPair struct {
	AssetPathID string
	Version     *version.Triple
}

// Store is the transactional registry contract described in §4.4. Every
// public mutator commits or rolls back as a single immediate transaction.
type Store interface {
	GetAssetTypeName(ctx context.Context, pathID string) (string, error)
	GetAssetData(ctx context.Context, pathID string) (pipelinepb.AssetData, error)
	GetAssetDatas(ctx context.Context, pathIDs []string) ([]pipelinepb.AssetData, error)

	GetAssetVersionDatas(ctx context.Context, pairs []AssetVersionPair) ([]pipelinepb.AssetVersionData, error)
	GetAssetVersionDatasFromPathIDs(ctx context.Context, pathIDs []string) ([]pipelinepb.AssetVersionData, error)
	GetLeafAssetVersionPathIDs(ctx context.Context) ([]string, error)

	CreateNewAsset(ctx context.Context, typeName string, asset pipelinepb.AssetData) (pipelinepb.AssetData, error)

	// PublishNewAssetVersion atomically allocates (or validates) a version
	// id, computes a path id when pathID is empty, inserts dependency
	// edges, and initializes the data-computation state to NOT_COMPUTED.
	// explicitVersion is nil to request auto-allocation per §4.1.
	PublishNewAssetVersion(ctx context.Context, assetPathID string, explicitVersion *version.Triple, pathID string, params pipelinepb.GenerationTaskParameters, deps []string) (pipelinepb.AssetVersionData, error)

	AddDependencies(ctx context.Context, dependantPathID string, dependsOn []string) error
	RemoveDependencies(ctx context.Context, dependantPathID string, dependsOn []string) error
	GetDependencies(ctx context.Context, pathID string) ([]string, error)
	GetDependants(ctx context.Context, pathID string) ([]string, error)

	ScheduleDataComputation(ctx context.Context, pathID string) (future.Future, error)
	OnDataComputationCompleted(ctx context.Context, pathID string, data map[string]any) error

	CreateAssetTemplate(ctx context.Context, tmpl pipelinepb.AssetTemplateData) (pipelinepb.AssetTemplateData, error)
	UpdateAssetTemplateData(ctx context.Context, assetPathID string, params pipelinepb.GenerationTaskParameters) error
	GetAssetTemplate(ctx context.Context, assetPathID string) (pipelinepb.AssetTemplateData, error)
	GetAssetTemplatesTriggeredBy(ctx context.Context, assetPathID string) ([]pipelinepb.AssetTemplateData, error)
	GetTemplateFixedDependencies(ctx context.Context, assetPathID string) ([]string, error)

	Close() error
}
