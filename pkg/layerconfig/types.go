// Package layerconfig implements rote's layered configuration model
// (spec component A): discovery of project/user/system config files,
// parsing (TOML primary, YAML and JSON5 kept as secondary formats the way
// the teacher's pkg/config supported YAML project files and a hand-rolled
// JSON5 preprocessor for its global config), and merging them into one
// EffectiveConfig the rest of rote consumes.
package layerconfig

// ToolSpec is one `[tools]` entry: a backend-qualified tool name mapped to
// a raw, not-yet-resolved version request string (see pkg/version.Request).
type ToolSpec struct {
	Backend string            `toml:"-"`
	Name    string            `toml:"-"`
	Version string            `toml:"version"`
	Options map[string]string `toml:"options,omitempty"`
}

// TaskSpec is one `[tasks.<name>]` entry.
type TaskSpec struct {
	Name         string            `toml:"-"`
	Run          string            `toml:"run,omitempty"`
	RunWindows   string            `toml:"run_windows,omitempty"`
	Description  string            `toml:"description,omitempty"`
	Depends      []string          `toml:"depends,omitempty"`
	DependsPost  []string          `toml:"depends_post,omitempty"`
	Dir          string            `toml:"dir,omitempty"`
	Env          map[string]string `toml:"env,omitempty"`
	Hide         bool              `toml:"hide,omitempty"`
	Sources      []string          `toml:"sources,omitempty"` // fingerprinted cache inputs
	Outputs      []string          `toml:"outputs,omitempty"`
}

// Layer is one parsed config file at a known precedence tier.
type Layer struct {
	Path     string
	Tier     Tier
	Tools    map[string]ToolSpec // "backend:name" -> spec
	Tasks    map[string]TaskSpec
	Aliases  map[string]map[string]string // tool -> alias -> target request
	Env      map[string]string
	Settings map[string]string
	URLReplacements map[string]string
}

// Tier orders layers from lowest to highest precedence, matching spec
// component A: system defaults, then user, then project, then an explicit
// local override file (".rote.local.toml", analogous to the teacher's
// project-local .mvx overrides) that is never committed.
type Tier int

const (
	TierSystem Tier = iota
	TierUser
	TierProject
	TierLocal
)

func newLayer(path string, tier Tier) *Layer {
	return &Layer{
		Path:            path,
		Tier:            tier,
		Tools:           make(map[string]ToolSpec),
		Tasks:           make(map[string]TaskSpec),
		Aliases:         make(map[string]map[string]string),
		Env:             make(map[string]string),
		Settings:        make(map[string]string),
		URLReplacements: make(map[string]string),
	}
}

// EffectiveConfig is the merged result of every discovered layer, in the
// precedence order spec component A defines: later (higher-tier) layers
// win per-key, but list-valued fields such as URLReplacements and task
// `depends` are never silently dropped by a lower layer -- only overridden
// key-for-key.
type EffectiveConfig struct {
	Tools           map[string]ToolSpec
	Tasks           map[string]TaskSpec
	Aliases         map[string]map[string]string
	Env             map[string]string
	Settings        map[string]string
	URLReplacements map[string]string
	Layers          []*Layer // contributing layers, lowest precedence first
}
