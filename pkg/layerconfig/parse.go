package layerconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// fileDoc is the on-disk shape of a single layer file. TOML is the primary
// format (spec.md's literal examples are all `[tasks.a] run = '...'`
// style), with YAML kept as a secondary format because the teacher's
// pkg/config.LoadConfig natively read YAML project files and some existing
// trees will carry ".rote.yaml" layers forward.
type fileDoc struct {
	Tools           map[string]ToolSpec          `toml:"tools" yaml:"tools"`
	Tasks           map[string]TaskSpec           `toml:"tasks" yaml:"tasks"`
	Alias           map[string]map[string]string `toml:"alias" yaml:"alias"`
	Env             map[string]string             `toml:"env" yaml:"env"`
	Settings        map[string]string             `toml:"settings" yaml:"settings"`
	URLReplacements map[string]string             `toml:"url_replacements" yaml:"url_replacements"`
}

// knownFilenames lists the layer filenames recognized at each directory,
// tried in this order; the first that exists wins for that directory,
// mirroring the teacher's single-file-per-directory convention in
// config.LoadConfig rather than mise's many-alternate-names scheme.
var knownFilenames = []string{".rote.toml", ".rote.yaml", ".rote.yml", ".rote.json5"}

// ParseFile loads and parses one layer file, dispatching on extension.
// JSON5 files are preprocessed with the teacher's hand-rolled
// comment/trailing-comma stripper (see json5.go) before standard
// encoding/json unmarshal, since no example repo in the corpus imports a
// real JSON5 library and the teacher's own declared json5 dependency is
// unused dead weight -- see DESIGN.md.
func ParseFile(path string, tier Tier) (*Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc fileDoc
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse TOML %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse YAML %s: %w", path, err)
		}
	case ".json5", ".json":
		if err := ParseJSON5(data, &doc); err != nil {
			return nil, fmt.Errorf("parse JSON5 %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unrecognized config format: %s", path)
	}

	layer := newLayer(path, tier)
	for key, spec := range doc.Tools {
		backend, name := splitBackendName(key)
		spec.Backend = backend
		spec.Name = name
		layer.Tools[key] = spec
	}
	for name, t := range doc.Tasks {
		t.Name = name
		layer.Tasks[name] = t
	}
	for tool, aliases := range doc.Alias {
		layer.Aliases[tool] = aliases
	}
	for k, v := range doc.Env {
		layer.Env[k] = v
	}
	for k, v := range doc.Settings {
		layer.Settings[k] = v
	}
	for k, v := range doc.URLReplacements {
		layer.URLReplacements[k] = v
	}
	return layer, nil
}

// splitBackendName splits a "[tools]" key like "core:java" into its backend
// and tool name, defaulting to the "core" backend (spec component C) when
// no prefix is given, so `[tools] java = { version = "21" }` keeps working
// without requiring every config author to spell out "core:java".
func splitBackendName(key string) (backend, name string) {
	if idx := strings.Index(key, ":"); idx >= 0 {
		return key[:idx], key[idx+1:]
	}
	return "core", key
}

// FindLayerFile looks for any of knownFilenames in dir, returning the first
// match or "" if none exist.
func FindLayerFile(dir string) string {
	for _, name := range knownFilenames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
