package pipelinepb

import "github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/version"

// DataAvailability is the three-state data-computation state machine.
type DataAvailability int

const (
	NotComputed DataAvailability = iota
	IsComputing
	Available
)

func (d DataAvailability) String() string {
	switch d {
	case NotComputed:
		return "NOT_COMPUTED"
	case IsComputing:
		return "IS_COMPUTING"
	case Available:
		return "AVAILABLE"
	default:
		return "UNKNOWN"
	}
}

// AssetData is the persisted Asset record.
type AssetData struct {
	PathID      string
	Name        string
	Description string
	TypeName    string
}

// AssetVersionData is the persisted AssetVersion record.
type AssetVersionData struct {
	PathID             string
	AssetPathID        string
	VersionID          version.Triple
	DataProducerParams GenerationTaskParameters
	DataAvailability   DataAvailability
	DataCalculatorID   string // empty when not IS_COMPUTING
	Data               map[string]any
}

// AssetTemplateData is the persisted AssetTemplate record.
type AssetTemplateData struct {
	AssetPathID        string
	DataProducerParams GenerationTaskParameters
	TriggerInputs      []string // asset_path_ids
	FixedDependencies  []string // version_path_ids
}
