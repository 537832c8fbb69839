package models

// LayerKind is the backing store of a config layer.
type LayerKind string

const (
	LAYER_KIND_CONFIGMAP LayerKind = "configmap"
	LAYER_KIND_SECRET    LayerKind = "secret"
)

// LayerScope describes which keys of a source a layer takes.
type LayerScope string

const (
	LAYER_SCOPE_ALL_KEYS LayerScope = "all"
	LAYER_SCOPE_KEYS     LayerScope = "keys"
)

// ConfigLayer is one named source of key/value configuration data.
type ConfigLayer struct {
	SourceName string     `json:"sourceName"`
	Kind       LayerKind  `json:"kind"`
	Scope      LayerScope `json:"scope"`

	// Keys is the specific key subset when Scope is LAYER_SCOPE_KEYS.
	Keys []string `json:"keys,omitempty"`
}

// ConfigLayerPlan is an ordered list of layers in increasing precedence:
// when the plan is applied, later layers clobber earlier ones on key
// collision (last-write-wins).
type ConfigLayerPlan []ConfigLayer
