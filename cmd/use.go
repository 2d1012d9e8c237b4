package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/rotehq/rote/pkg/layerconfig"
)

var useCmd = &cobra.Command{
	Use:   "use <tool>@<version> [tool@version...]",
	Short: "Pin tool versions in the local config layer (.rote.local.toml)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return useTools(projectDir(), args)
	},
}

// localLayerDoc is a minimal reflection of fileDoc for the one section
// `use` ever writes; the rest of the file is carried through a generic
// map, so re-saving it never clobbers a hand-authored local layer's other
// sections.
type localLayerDoc struct {
	Tools map[string]layerconfig.ToolSpec `toml:"tools"`
}

func useTools(dir string, specs []string) error {
	path := filepath.Join(dir, ".rote.local.toml")

	var doc localLayerDoc
	raw := make(map[string]interface{})
	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse existing %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parse existing %s: %w", path, err)
		}
	}
	if doc.Tools == nil {
		doc.Tools = make(map[string]layerconfig.ToolSpec)
	}

	for _, spec := range specs {
		at := strings.LastIndex(spec, "@")
		if at <= 0 {
			return fmt.Errorf("expected tool@version, got %q", spec)
		}
		key, version := spec[:at], spec[at+1:]
		existing := doc.Tools[key]
		existing.Version = version
		doc.Tools[key] = existing
		fmt.Printf("pinned %s = %q in %s\n", key, version, path)
	}

	raw["tools"] = doc.Tools
	data, err := toml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
