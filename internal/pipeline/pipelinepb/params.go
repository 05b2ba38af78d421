// Package pipelinepb holds the domain structs shared across every registry
// package: the wire format for generation-task parameters and the core
// record shapes Store hands back.
package pipelinepb

import "encoding/json"

// EnvironmentArguments is the opaque environment-resolver record attached
// to a GenerationTaskParameters: a resolver name plus an opaque attribute
// bag.
type EnvironmentArguments struct {
	Name    string         `json:"name"`
	Attribs map[string]any `json:"attribs"`
}

// GenerationTaskParameters is the structured record carried by every
// AssetVersion and AssetTemplate: a version-lock mapping, an opaque
// attribute bag, and an opaque environment-resolver record. It serializes
// to the wire form {"lock": {...}, "attrib": {...}, "env": {...}}.
type GenerationTaskParameters struct {
	// VersionLockMapping maps asset_path_id -> version_path_id.
	VersionLockMapping map[string]string    `json:"-"`
	Attributes         map[string]any       `json:"-"`
	Environment        EnvironmentArguments `json:"-"`
}

type wireParams struct {
	Lock   map[string]string    `json:"lock"`
	Attrib map[string]any       `json:"attrib"`
	Env    EnvironmentArguments `json:"env"`
}

// NewGenerationTaskParameters returns an empty-but-valid params value, the
// same shape create_new_generic_version defaults to when params is omitted.
func NewGenerationTaskParameters() GenerationTaskParameters {
	return GenerationTaskParameters{
		VersionLockMapping: map[string]string{},
		Attributes:         map[string]any{},
		Environment:        EnvironmentArguments{Attribs: map[string]any{}},
	}
}

// MarshalJSON implements the {"lock","attrib","env"} wire form.
func (p GenerationTaskParameters) MarshalJSON() ([]byte, error) {
	w := wireParams{
		Lock:   p.VersionLockMapping,
		Attrib: p.Attributes,
		Env:    p.Environment,
	}
	if w.Lock == nil {
		w.Lock = map[string]string{}
	}
	if w.Attrib == nil {
		w.Attrib = map[string]any{}
	}
	if w.Env.Attribs == nil {
		w.Env.Attribs = map[string]any{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses the {"lock","attrib","env"} wire form, defaulting
// missing keys to empty objects.
func (p *GenerationTaskParameters) UnmarshalJSON(data []byte) error {
	var w wireParams
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Lock == nil {
		w.Lock = map[string]string{}
	}
	if w.Attrib == nil {
		w.Attrib = map[string]any{}
	}
	if w.Env.Attribs == nil {
		w.Env.Attribs = map[string]any{}
	}
	p.VersionLockMapping = w.Lock
	p.Attributes = w.Attrib
	p.Environment = w.Env
	return nil
}

// Clone returns a deep-enough copy safe for a caller to keep mutating
// independently of the original. Callers of Scheduler.ScheduleDataGenerationTask
// must not reuse a params object afterward, per §4.5; callers that need to
// reuse one should Clone first.
func (p GenerationTaskParameters) Clone() GenerationTaskParameters {
	out := GenerationTaskParameters{
		VersionLockMapping: make(map[string]string, len(p.VersionLockMapping)),
		Attributes:         make(map[string]any, len(p.Attributes)),
		Environment: EnvironmentArguments{
			Name:    p.Environment.Name,
			Attribs: make(map[string]any, len(p.Environment.Attribs)),
		},
	}
	for k, v := range p.VersionLockMapping {
		out.VersionLockMapping[k] = v
	}
	for k, v := range p.Attributes {
		out.Attributes[k] = v
	}
	for k, v := range p.Environment.Attribs {
		out.Environment.Attribs[k] = v
	}
	return out
}
